package bridge

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/haivivi/voicekit/pkg/speakerid"
)

// SpeechBridge decorates a [Transcriber] with speaker recognition.
//
// Audio chunks are teed into an in-memory buffer while they flow to the
// wrapped transcriber. After transcription returns successfully the
// buffered audio is recognized and the result published to the bus.
// Recognition never fails, delays or alters the transcription result: a
// recognition error is logged and the transcription returned as-is.
type SpeechBridge struct {
	inner    Transcriber
	engine   *speakerid.Engine
	bus      *speakerid.Bus
	sourceID string

	available   atomic.Bool
	cancelAvail func()

	mu   sync.Mutex
	caps Capabilities
}

var _ Transcriber = (*SpeechBridge)(nil)

// SpeechOption configures a SpeechBridge.
type SpeechOption func(*SpeechBridge)

// WithSourceID sets the source identifier stamped on published events.
// Default: a random UUID.
func WithSourceID(id string) SpeechOption {
	return func(b *SpeechBridge) { b.sourceID = id }
}

// NewSpeech wraps inner with recognition against engine, publishing
// results to bus. If inner implements [AvailabilityNotifier] the bridge
// subscribes and refreshes its mirrored capabilities on liveness changes.
func NewSpeech(inner Transcriber, engine *speakerid.Engine, bus *speakerid.Bus, opts ...SpeechOption) *SpeechBridge {
	b := &SpeechBridge{
		inner:  inner,
		engine: engine,
		bus:    bus,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.sourceID == "" {
		b.sourceID = uuid.NewString()
	}
	b.caps = inner.Capabilities()
	b.available.Store(true)
	if n, ok := inner.(AvailabilityNotifier); ok {
		b.cancelAvail = n.SubscribeAvailability(b.onAvailability)
	}
	return b
}

func (b *SpeechBridge) onAvailability(available bool) {
	b.available.Store(available)
	if available {
		caps := b.inner.Capabilities()
		b.mu.Lock()
		b.caps = caps
		b.mu.Unlock()
	}
	slog.Info("bridge: speech backend availability changed",
		"source", b.sourceID, "available", available)
}

// Available reports the wrapped backend's last known liveness.
func (b *SpeechBridge) Available() bool { return b.available.Load() }

// Capabilities implements [Transcriber] by mirroring the wrapped backend.
func (b *SpeechBridge) Capabilities() Capabilities {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps
}

// Transcribe implements [Transcriber].
func (b *SpeechBridge) Transcribe(ctx context.Context, meta AudioMetadata, audio iter.Seq[[]byte]) (*Transcription, error) {
	var buf bytes.Buffer
	tee := func(yield func([]byte) bool) {
		for chunk := range audio {
			buf.Write(chunk)
			if !yield(chunk) {
				return
			}
		}
	}

	result, err := b.inner.Transcribe(ctx, meta, tee)
	if err != nil {
		return nil, err
	}

	b.recognize(ctx, buf.Bytes(), meta.Format.SampleRate())
	return result, nil
}

// recognize runs speaker recognition on the buffered utterance. All
// failures are logged and swallowed.
func (b *SpeechBridge) recognize(ctx context.Context, audio []byte, sampleRate int) {
	if len(audio) == 0 {
		slog.Debug("bridge: empty audio buffer, skipping recognition", "source", b.sourceID)
		return
	}
	res, err := b.engine.Recognize(ctx, audio, sampleRate)
	if err != nil {
		slog.Warn("bridge: speaker recognition failed",
			"source", b.sourceID, "error", err)
		return
	}
	if res == nil {
		return
	}
	b.bus.Publish(res, b.sourceID)
}

// Close unsubscribes from the wrapped backend's availability stream.
func (b *SpeechBridge) Close() error {
	if b.cancelAvail != nil {
		b.cancelAvail()
		b.cancelAvail = nil
	}
	return nil
}
