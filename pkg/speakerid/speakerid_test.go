package speakerid

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("Normalize = %v, want [0.6 0.8]", v)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	for i, x := range v {
		if x != 0 {
			t.Errorf("v[%d] = %v, want 0", i, x)
		}
	}
}

func TestDotMismatchedLengths(t *testing.T) {
	if d := Dot([]float32{1}, []float32{1, 2}); d != 0 {
		t.Errorf("Dot = %v, want 0", d)
	}
}

func TestReferenceSetScoreBestOwner(t *testing.T) {
	refs := NewReferenceSet()
	refs.Add("alice", []float32{1, 0})
	refs.Add("bob", []float32{0, 1})

	res := refs.Score([]float32{0.9, 0.1})
	if res.OwnerID != "alice" {
		t.Errorf("OwnerID = %q, want alice", res.OwnerID)
	}
	if len(res.Scores) != 2 {
		t.Errorf("len(Scores) = %d, want 2", len(res.Scores))
	}
	if res.Scores["alice"] <= res.Scores["bob"] {
		t.Errorf("alice score %v should beat bob score %v", res.Scores["alice"], res.Scores["bob"])
	}
	if res.Confidence != res.Scores["alice"] {
		t.Errorf("Confidence = %v, want %v", res.Confidence, res.Scores["alice"])
	}
}

// Tie-break: among equal maxima the first-inserted owner wins, every time.
func TestReferenceSetScoreTieBreak(t *testing.T) {
	refs := NewReferenceSet()
	refs.Add("u1", []float32{1, 0})
	refs.Add("u2", []float32{1, 0}) // identical vector, identical score

	for range 50 {
		res := refs.Score([]float32{1, 0})
		if res.OwnerID != "u1" {
			t.Fatalf("OwnerID = %q, want u1 (first inserted among equal maxima)", res.OwnerID)
		}
	}
}

func TestReferenceSetReAddKeepsPosition(t *testing.T) {
	refs := NewReferenceSet()
	refs.Add("u1", []float32{0, 1})
	refs.Add("u2", []float32{1, 0})
	refs.Add("u1", []float32{1, 0}) // replace u1's vector

	if refs.Len() != 2 {
		t.Fatalf("Len = %d, want 2", refs.Len())
	}
	// u1 keeps its original (first) position, so it wins the tie.
	res := refs.Score([]float32{1, 0})
	if res.OwnerID != "u1" {
		t.Errorf("OwnerID = %q, want u1", res.OwnerID)
	}
}

func TestReferenceSetScoreEmpty(t *testing.T) {
	if res := NewReferenceSet().Score([]float32{1}); res != nil {
		t.Errorf("Score on empty set = %v, want nil", res)
	}
}
