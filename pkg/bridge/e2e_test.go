package bridge

import (
	"context"
	"testing"

	"github.com/haivivi/voicekit/pkg/audio/pcm"
	"github.com/haivivi/voicekit/pkg/speakerid"
)

// Full pipeline: enrolled alice and bob speak in turn; each utterance
// flows through transcription, recognition, the bus, and ends up
// attributed on the conversation turn that follows it.
func TestPipelineAliceThenBob(t *testing.T) {
	engine := newTrainedEngine(t)
	bus := speakerid.NewBus()

	stt := &fakeTranscriber{result: &Transcription{Text: "what's on my calendar"}}
	speech := NewSpeech(stt, engine, bus, WithSourceID("living-room"))
	defer speech.Close()

	agent := &echoAgent{}
	conv := NewConversation(agent, bus, WithMinConfidence(0.5))
	defer conv.Close()

	ctx := context.Background()
	meta := AudioMetadata{Format: pcm.L16Mono16K}

	// Alice speaks (loud signature).
	if _, err := speech.Transcribe(ctx, meta, chunksOf(tone(8000, 1600), 320)); err != nil {
		t.Fatal(err)
	}
	resp := conv.Process(ctx, &Request{Text: "what's on my calendar"})
	if resp.Err != nil {
		t.Fatal(resp.Err)
	}
	if agent.last.ActingUserID != "alice" {
		t.Fatalf("first turn ActingUserID = %q, want alice", agent.last.ActingUserID)
	}

	// Bob speaks next (quiet signature); the slot is overwritten and the
	// next turn re-attributed.
	if _, err := speech.Transcribe(ctx, meta, chunksOf(tone(400, 1600), 320)); err != nil {
		t.Fatal(err)
	}
	resp = conv.Process(ctx, &Request{Text: "and mine"})
	if resp.Err != nil {
		t.Fatal(resp.Err)
	}
	if agent.last.ActingUserID != "bob" {
		t.Fatalf("second turn ActingUserID = %q, want bob", agent.last.ActingUserID)
	}
}
