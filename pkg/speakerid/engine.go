package speakerid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/haivivi/voicekit/pkg/audio/wav"
	"github.com/haivivi/voicekit/pkg/storage"
	"github.com/haivivi/voicekit/pkg/taskpool"
)

// Engine owns the set of enrolled reference embeddings and performs
// recognition against them.
//
// # State Machine
//
// The engine starts untrained. A successful Train with at least one
// usable sample moves it to trained; UpdateSamples moves it back to
// untrained until Train is invoked again. Recognize is a no-op returning
// an absent result while untrained.
//
// Train and UpdateSamples are expected to be invoked from a single
// control path (configuration reload); Recognize may run concurrently
// with both and sees either the pre- or post-train reference set, never
// a torn one.
type Engine struct {
	backend  Backend
	resolver *storage.Resolver
	cache    *Cache
	pool     *taskpool.Pool

	mu      sync.Mutex // serializes Train/UpdateSamples
	samples []VoiceSample
	trained atomic.Bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPool sets the worker pool for embedding extraction and backend I/O.
// Default: a pool sized to the number of CPUs.
func WithPool(pool *taskpool.Pool) EngineOption {
	return func(e *Engine) { e.pool = pool }
}

// WithCache sets the embedding sidecar cache. Default: NewCache().
func WithCache(cache *Cache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// NewEngine creates an Engine in the untrained state.
func NewEngine(backend Backend, resolver *storage.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:  backend,
		resolver: resolver,
		cache:    NewCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = taskpool.New(0)
	}
	return e
}

// Trained reports whether the engine is in the trained state.
func (e *Engine) Trained() bool { return e.trained.Load() }

// Samples returns a copy of the configured voice samples.
func (e *Engine) Samples() []VoiceSample {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]VoiceSample, len(e.samples))
	copy(out, e.samples)
	return out
}

// UpdateSamples replaces the configured sample list and forces the engine
// back to untrained. It does not retrain; callers must invoke Train.
func (e *Engine) UpdateSamples(samples []VoiceSample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.samples = append([]VoiceSample(nil), samples...)
	e.trained.Store(false)
	slog.Info("speakerid: voice samples updated, retraining required", "samples", len(samples))
}

// Train replaces the configured sample list with samples and builds the
// reference set from them. Each sample's embedding is resolved through the
// sidecar cache first, then the backend. Unreadable samples and
// unsupported locators are skipped; partial training succeeds. If no
// sample yields an embedding the engine transitions to untrained.
//
// Train fully replaces the prior reference set and is idempotent.
func (e *Engine) Train(ctx context.Context, samples []VoiceSample) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.samples = append([]VoiceSample(nil), samples...)

	slog.Debug("speakerid: training", "samples", len(samples))

	if len(samples) == 0 {
		slog.Warn("speakerid: no voice samples configured for training")
		e.trained.Store(false)
		return nil
	}

	// Resolve embeddings on the worker pool; ordered insertion afterwards
	// keeps tie-break behavior deterministic.
	vectors := make([][]float32, len(samples))
	err := taskpool.Each(ctx, e.pool, indexes(len(samples)), func(ctx context.Context, i int) error {
		vec, err := e.sampleEmbedding(ctx, samples[i])
		if err != nil {
			slog.Warn("speakerid: skipping voice sample",
				"owner", samples[i].OwnerID,
				"locator", samples[i].AudioLocator,
				"error", err)
			return nil
		}
		vectors[i] = vec
		return nil
	})
	if err != nil {
		return fmt.Errorf("speakerid: train: %w", err)
	}

	refs := NewReferenceSet()
	for i, sample := range samples {
		if vectors[i] != nil {
			refs.Add(sample.OwnerID, vectors[i])
		}
	}

	if refs.Len() == 0 {
		slog.Warn("speakerid: no valid voice samples processed")
		e.trained.Store(false)
		return nil
	}

	count, err := e.backend.Train(ctx, refs)
	if err != nil {
		e.trained.Store(false)
		return fmt.Errorf("speakerid: train backend: %w", err)
	}
	e.trained.Store(true)
	slog.Info("speakerid: training completed", "owners", count)
	return nil
}

// Recognize scores raw PCM16 signed little-endian mono audio against the
// enrolled speakers. It returns (nil, nil) immediately if the engine is
// untrained. Backend failures are returned as KindBackend errors; callers
// treat them as an absent result.
func (e *Engine) Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
	if !e.trained.Load() {
		slog.Debug("speakerid: recognize skipped, engine untrained")
		return nil, nil
	}

	var result *Result
	err := e.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = e.backend.Recognize(ctx, audio, sampleRate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close releases the backend.
func (e *Engine) Close() error { return e.backend.Close() }

// sampleEmbedding resolves one sample's embedding: sidecar cache first,
// then decode-and-embed through the backend.
func (e *Engine) sampleEmbedding(ctx context.Context, sample VoiceSample) ([]float32, error) {
	store, path, err := e.resolver.Resolve(sample.AudioLocator)
	if err != nil {
		return nil, enrollErr("resolve locator", err)
	}

	if vec, ok := e.cache.Get(ctx, store, path); ok {
		slog.Debug("speakerid: using cached embedding", "path", path)
		return vec, nil
	}

	r, err := store.Read(ctx, path)
	if err != nil {
		return nil, enrollErr("read sample", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return nil, enrollErr("read sample", err)
	}

	audio, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, enrollErr("decode sample", err)
	}

	vec, err := e.backend.Embed(ctx, audio.Data, audio.SampleRate)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Put(ctx, store, path, vec); err != nil {
		// Cache failures only cost recomputation on the next train.
		slog.Warn("speakerid: cache embedding", "path", path, "error", err)
	} else {
		slog.Debug("speakerid: embedding cached", "path", path)
	}
	return vec, nil
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
