package speakerid

import (
	"context"
	"testing"

	"github.com/haivivi/voicekit/pkg/audio/pcm"
)

// fakeModel derives a 2-dim embedding from the first audio sample's
// amplitude: loud audio maps near [1,0], quiet near [0,1].
type fakeModel struct {
	calls int
}

func (m *fakeModel) Extract(audio []byte) ([]float32, error) {
	m.calls++
	samples := pcm.DecodeInt16(audio)
	if samples[0] > 5000 {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (m *fakeModel) Dimension() int { return 2 }
func (m *fakeModel) Close() error   { return nil }

// tone builds PCM16LE audio of constant amplitude.
func tone(amplitude int16, samples int) []byte {
	s := make([]int16, samples)
	for i := range s {
		s[i] = amplitude
	}
	return pcm.EncodeInt16(s)
}

func TestLocalBackendEmbed(t *testing.T) {
	b := NewLocal(&fakeModel{})
	vec, err := b.Embed(context.Background(), tone(8000, 1600), 16000)
	if err != nil {
		t.Fatal(err)
	}
	if vec[0] != 1 || vec[1] != 0 {
		t.Errorf("vec = %v, want [1 0]", vec)
	}
}

func TestLocalBackendEmbedEmptyAudio(t *testing.T) {
	b := NewLocal(&fakeModel{})
	_, err := b.Embed(context.Background(), nil, 16000)
	e, ok := AsError(err)
	if !ok || e.Kind != KindBackend {
		t.Fatalf("err = %v, want KindBackend error", err)
	}
}

func TestLocalBackendEmbedAllSilence(t *testing.T) {
	b := NewLocal(&fakeModel{})
	if _, err := b.Embed(context.Background(), tone(10, 1600), 16000); err == nil {
		t.Error("expected error for all-silence audio")
	}
}

func TestLocalBackendEmbedInvalidRate(t *testing.T) {
	b := NewLocal(&fakeModel{})
	if _, err := b.Embed(context.Background(), tone(8000, 100), 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestLocalBackendTrainRecognize(t *testing.T) {
	b := NewLocal(&fakeModel{})
	ctx := context.Background()

	refs := NewReferenceSet()
	refs.Add("loud", []float32{1, 0})
	refs.Add("quiet", []float32{0, 1})
	n, err := b.Train(ctx, refs)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("Train = %d, want 2", n)
	}

	res, err := b.Recognize(ctx, tone(8000, 1600), 16000)
	if err != nil {
		t.Fatal(err)
	}
	if res.OwnerID != "loud" {
		t.Errorf("OwnerID = %q, want loud", res.OwnerID)
	}
	if res.Scores["loud"] <= res.Scores["quiet"] {
		t.Errorf("loud score %v should beat quiet score %v", res.Scores["loud"], res.Scores["quiet"])
	}
}

func TestLocalBackendRecognizeUntrained(t *testing.T) {
	b := NewLocal(&fakeModel{})
	if _, err := b.Recognize(context.Background(), tone(8000, 100), 16000); err == nil {
		t.Error("expected error when no references are trained")
	}
}
