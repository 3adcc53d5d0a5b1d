// Package bridge connects speaker recognition to speech and conversation
// pipelines.
//
// # Architecture
//
// Two decorators share one [speakerid.Bus]:
//
//	audio ──▶ SpeechBridge ──▶ Transcriber
//	              │
//	              ▼ publish
//	             Bus
//	              ▲ peek
//	              │
//	text ───▶ ConversationBridge ──▶ Agent
//
// SpeechBridge tees the audio it forwards to the wrapped transcriber and,
// once transcription returns, runs speaker recognition on the accumulated
// buffer and publishes the result. ConversationBridge peeks at the most
// recent result and, when it is fresh and confident enough, substitutes
// the acting user on the request it forwards to the wrapped agent.
//
// Both bridges mirror their wrapped backend's capabilities and stay out
// of the data path otherwise: transcription and conversation behave
// exactly as without the bridges when recognition is unavailable.
package bridge

import (
	"context"
	"iter"

	"github.com/haivivi/voicekit/pkg/audio/pcm"
)

// AudioMetadata describes an incoming audio stream.
type AudioMetadata struct {
	// Format is the PCM format of the stream.
	Format pcm.Format

	// Language is the expected spoken language, or empty for auto.
	Language string
}

// Transcription is the result of a completed transcription.
type Transcription struct {
	// Text is the transcribed text.
	Text string

	// Language is the detected language, if the backend reports one.
	Language string
}

// Capabilities describes what a wrapped speech backend accepts.
type Capabilities struct {
	// Languages lists supported language tags.
	Languages []string

	// Formats lists supported PCM formats.
	Formats []pcm.Format
}

// Transcriber converts an audio stream to text. The audio sequence yields
// raw PCM chunks in the format declared by the metadata.
type Transcriber interface {
	// Transcribe consumes the audio stream and returns the transcription.
	Transcribe(ctx context.Context, meta AudioMetadata, audio iter.Seq[[]byte]) (*Transcription, error)

	// Capabilities reports the backend's supported languages and formats.
	Capabilities() Capabilities
}

// Agent handles one turn of a conversation.
type Agent interface {
	// Converse processes req and returns the agent's reply.
	Converse(ctx context.Context, req *Request) *Response

	// Languages lists the agent's supported language tags.
	Languages() []string
}

// AvailabilityNotifier is implemented by wrapped backends whose liveness
// can change at runtime. Bridges subscribe to refresh mirrored
// capabilities and unsubscribe on Close.
type AvailabilityNotifier interface {
	// SubscribeAvailability registers fn to be called with the new
	// liveness on every change. The returned cancel removes the
	// subscription.
	SubscribeAvailability(fn func(available bool)) (cancel func())
}
