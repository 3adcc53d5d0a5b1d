package speakerid

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/haivivi/voicekit/pkg/audio/pcm"
	"github.com/haivivi/voicekit/pkg/audio/resampler"
)

// Model extracts speaker embedding vectors from raw audio.
//
// The input audio must be PCM16 signed little-endian mono at the model's
// native rate (see [LocalBackend] options). Typical implementations run a
// pre-trained speaker verification model (ECAPA-TDNN, ERes2Net, ...) that
// produces a fixed-length embedding per audio segment.
//
// Implementations must be safe for concurrent use.
type Model interface {
	// Extract computes a speaker embedding from raw PCM16 audio at the
	// model's native sample rate.
	Extract(audio []byte) ([]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// Close releases any resources held by the model.
	Close() error
}

// LocalBackend implements [Backend] with an in-process embedding model.
//
// Raw waveforms are preprocessed on-process before embedding: resampled to
// the model's native rate and stripped of leading/trailing silence.
// Extraction is computationally heavy; callers (the engine) run it on a
// worker pool rather than their own goroutine.
type LocalBackend struct {
	model Model
	refs  atomic.Pointer[ReferenceSet]

	// modelRate is the model's native sample rate. Default: 16000.
	modelRate int

	// silenceThreshold is the amplitude (raw int16 scale) below which
	// leading/trailing samples are trimmed. Default: 300 (≈ -40dB).
	silenceThreshold int16
}

var _ Backend = (*LocalBackend)(nil)

// LocalOption configures a LocalBackend.
type LocalOption func(*LocalBackend)

// WithModelRate sets the model's native sample rate (default 16000).
func WithModelRate(rate int) LocalOption {
	return func(b *LocalBackend) {
		if rate > 0 {
			b.modelRate = rate
		}
	}
}

// WithSilenceThreshold sets the silence trimming amplitude threshold
// (default 300). Zero disables trimming.
func WithSilenceThreshold(threshold int16) LocalOption {
	return func(b *LocalBackend) { b.silenceThreshold = threshold }
}

// NewLocal creates a LocalBackend around the given model.
func NewLocal(model Model, opts ...LocalOption) *LocalBackend {
	b := &LocalBackend{
		model:            model,
		modelRate:        16000,
		silenceThreshold: 300,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Embed implements [Backend]. It resamples audio to the model rate, trims
// silence, and runs the model.
func (b *LocalBackend) Embed(ctx context.Context, audio []byte, sampleRate int) ([]float32, error) {
	prepared, err := b.preprocess(audio, sampleRate)
	if err != nil {
		return nil, err
	}
	vec, err := b.model.Extract(prepared)
	if err != nil {
		return nil, backendErr("extract embedding", err)
	}
	return vec, nil
}

// Train implements [Backend]. The reference set is swapped in atomically;
// concurrent Recognize calls see either the pre- or post-train set.
func (b *LocalBackend) Train(_ context.Context, refs *ReferenceSet) (int, error) {
	b.refs.Store(refs)
	return refs.Len(), nil
}

// Recognize implements [Backend]. It embeds the audio and scores it
// against the trained reference set.
func (b *LocalBackend) Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
	refs := b.refs.Load()
	if refs.Len() == 0 {
		return nil, backendErr("recognize", fmt.Errorf("no references trained"))
	}
	vec, err := b.Embed(ctx, audio, sampleRate)
	if err != nil {
		return nil, err
	}
	return refs.Score(vec), nil
}

// Dimension implements [Backend].
func (b *LocalBackend) Dimension() int { return b.model.Dimension() }

// Close implements [Backend].
func (b *LocalBackend) Close() error { return b.model.Close() }

// preprocess validates, resamples and trims a raw waveform.
func (b *LocalBackend) preprocess(audio []byte, sampleRate int) ([]byte, error) {
	if len(audio) < 2 {
		return nil, backendErr("embed", fmt.Errorf("empty audio"))
	}
	if sampleRate <= 0 {
		return nil, backendErr("embed", fmt.Errorf("invalid sample rate %d", sampleRate))
	}

	out := audio
	if sampleRate != b.modelRate {
		var err error
		out, err = resampler.Resample(out, sampleRate, b.modelRate)
		if err != nil {
			return nil, backendErr("resample audio", err)
		}
	}
	if b.silenceThreshold > 0 {
		out = pcm.TrimSilenceBytes(out, b.silenceThreshold)
	}
	if len(out) == 0 {
		return nil, backendErr("embed", fmt.Errorf("audio is all silence"))
	}
	return out, nil
}
