package speakerid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultRemoteTimeout is the default request timeout.
	DefaultRemoteTimeout = 30 * time.Second

	// DefaultRemoteRetries is the default maximum number of retries.
	DefaultRemoteRetries = 2

	remoteDefaultDim = 256
)

// APIError is an error response from the remote scoring service.
type APIError struct {
	// HTTPStatus is the HTTP status code.
	HTTPStatus int `json:"-"`

	// Code is the service error code.
	Code string `json:"code"`

	// Message is the error message.
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("speakerid: remote: %s (code=%s, status=%d)", e.Message, e.Code, e.HTTPStatus)
}

// Retryable returns true if the request can be retried.
func (e *APIError) Retryable() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.HTTPStatus >= 500
}

// RemoteBackend implements [Backend] against a remote scoring service.
//
// Raw PCM is base64-encoded and all signal processing happens remotely.
// The service holds the reference set between Train and Recognize calls.
// Requests are retried with exponential backoff on transient failures.
type RemoteBackend struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	dim        int
}

var _ Backend = (*RemoteBackend)(nil)

// RemoteOption configures a RemoteBackend.
type RemoteOption func(*RemoteBackend)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(b *RemoteBackend) { b.httpClient = client }
}

// WithRetry sets the maximum number of retries for transient errors.
func WithRetry(maxRetries int) RemoteOption {
	return func(b *RemoteBackend) { b.maxRetries = maxRetries }
}

// WithDimension sets the expected embedding dimensionality (default 256).
func WithDimension(dim int) RemoteOption {
	return func(b *RemoteBackend) {
		if dim > 0 {
			b.dim = dim
		}
	}
}

// NewRemote creates a RemoteBackend talking to the scoring service at
// baseURL (e.g. "http://127.0.0.1:8090").
func NewRemote(baseURL string, opts ...RemoteOption) *RemoteBackend {
	b := &RemoteBackend{
		baseURL:    baseURL,
		maxRetries: DefaultRemoteRetries,
		dim:        remoteDefaultDim,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.httpClient == nil {
		b.httpClient = &http.Client{Timeout: DefaultRemoteTimeout}
	}
	return b
}

type embedRequest struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension"`
}

type trainReference struct {
	OwnerID   string    `json:"owner_id"`
	Embedding []float32 `json:"embedding"`
}

type trainRequest struct {
	References []trainReference `json:"references"`
}

type trainResponse struct {
	Trained int `json:"trained"`
}

type recognizeResponse struct {
	OwnerID    string             `json:"owner_id"`
	Confidence float32            `json:"confidence"`
	Scores     map[string]float32 `json:"scores"`
}

// Embed implements [Backend].
func (b *RemoteBackend) Embed(ctx context.Context, audio []byte, sampleRate int) ([]float32, error) {
	if len(audio) == 0 {
		return nil, backendErr("embed", fmt.Errorf("empty audio"))
	}
	req := embedRequest{
		Audio:      base64.StdEncoding.EncodeToString(audio),
		SampleRate: sampleRate,
	}
	var resp embedResponse
	if err := b.request(ctx, "/v1/embed", req, &resp); err != nil {
		return nil, backendErr("embed", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, backendErr("embed", fmt.Errorf("service returned no embedding"))
	}
	return resp.Embedding, nil
}

// Train implements [Backend]. The reference embeddings are uploaded so the
// service can score recognition requests server-side.
func (b *RemoteBackend) Train(ctx context.Context, refs *ReferenceSet) (int, error) {
	req := trainRequest{References: make([]trainReference, 0, refs.Len())}
	for _, owner := range refs.Owners() {
		vec, _ := refs.Vector(owner)
		req.References = append(req.References, trainReference{OwnerID: owner, Embedding: vec})
	}
	var resp trainResponse
	if err := b.request(ctx, "/v1/train", req, &resp); err != nil {
		return 0, backendErr("train", err)
	}
	return resp.Trained, nil
}

// Recognize implements [Backend]. Scoring happens server-side; the result
// carries the service's full score map.
func (b *RemoteBackend) Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
	if len(audio) == 0 {
		return nil, backendErr("recognize", fmt.Errorf("empty audio"))
	}
	req := embedRequest{
		Audio:      base64.StdEncoding.EncodeToString(audio),
		SampleRate: sampleRate,
	}
	var resp recognizeResponse
	if err := b.request(ctx, "/v1/recognize", req, &resp); err != nil {
		return nil, backendErr("recognize", err)
	}
	if resp.OwnerID == "" {
		return nil, backendErr("recognize", fmt.Errorf("service returned no owner"))
	}
	return &Result{OwnerID: resp.OwnerID, Confidence: resp.Confidence, Scores: resp.Scores}, nil
}

// Dimension implements [Backend].
func (b *RemoteBackend) Dimension() int { return b.dim }

// Close implements [Backend].
func (b *RemoteBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

// request makes a POST request with retry support.
func (b *RemoteBackend) request(ctx context.Context, path string, body, result any) error {
	bodyData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s, ...
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := b.doRequest(ctx, path, bodyData, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return err
		}
	}
	return lastErr
}

// doRequest performs a single HTTP request.
func (b *RemoteBackend) doRequest(ctx context.Context, path string, bodyData []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(bodyData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
