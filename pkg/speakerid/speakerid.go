// Package speakerid identifies which enrolled speaker produced a chunk of
// audio.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Enrollment: Engine.Train resolves each configured voice sample,
//     computes (or loads from the sidecar cache) a reference embedding,
//     and installs the owner→vector reference set.
//  2. Recognition: Engine.Recognize embeds an audio chunk and scores it
//     against every reference vector (cosine similarity via dot product
//     on unit-normalized vectors), returning the best owner plus the
//     full score map.
//  3. Publication: the most recent result is published to a process-wide
//     [Bus] that downstream consumers peek for freshness-gated identity
//     enrichment.
//
// # Backends
//
// Embedding and scoring are delegated to a [Backend]. Two adapters exist:
// [LocalBackend] runs an in-process embedding model with on-process
// preprocessing (resampling, silence trimming); [RemoteBackend] base64-encodes
// raw PCM and delegates all signal processing to a remote scoring service.
package speakerid

import "math"

// VoiceSample is one enrollment input: the owner it belongs to and a
// locator that resolves to a readable audio file (WAV).
type VoiceSample struct {
	// OwnerID identifies the user the sample belongs to.
	OwnerID string `yaml:"owner_id" json:"owner_id"`

	// AudioLocator resolves to the sample's audio file. Supported forms
	// are plain paths, file://, media-source://media_source/local/ and
	// s3:// locators.
	AudioLocator string `yaml:"audio_locator" json:"audio_locator"`
}

// Result is the outcome of one recognition call.
type Result struct {
	// OwnerID is the best-scoring enrolled owner.
	OwnerID string

	// Confidence is the best similarity score.
	Confidence float32

	// Scores maps every enrolled owner to its similarity score.
	Scores map[string]float32
}

// ReferenceSet holds one reference embedding per enrolled owner, in
// enrollment (insertion) order. Insertion order is significant: scoring
// ties resolve to the first-inserted owner among equal maxima.
//
// A ReferenceSet is built once during training and treated as immutable
// afterwards; the engine swaps whole sets atomically.
type ReferenceSet struct {
	owners  []string
	vectors map[string][]float32
}

// NewReferenceSet creates an empty reference set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{vectors: make(map[string][]float32)}
}

// Add registers a unit-normalized copy of vec for owner. Re-adding an
// owner replaces its vector but keeps its original position.
func (rs *ReferenceSet) Add(owner string, vec []float32) {
	if _, ok := rs.vectors[owner]; !ok {
		rs.owners = append(rs.owners, owner)
	}
	rs.vectors[owner] = Normalize(vec)
}

// Len returns the number of enrolled owners.
func (rs *ReferenceSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.owners)
}

// Owners returns the enrolled owner IDs in insertion order.
// The returned slice must not be modified.
func (rs *ReferenceSet) Owners() []string { return rs.owners }

// Vector returns the reference embedding for owner.
func (rs *ReferenceSet) Vector(owner string) ([]float32, bool) {
	v, ok := rs.vectors[owner]
	return v, ok
}

// Score computes the similarity of query against every reference vector
// and returns the best owner, its score, and the full score map. Among
// equal maxima the first-inserted owner wins. Returns nil for an empty set.
func (rs *ReferenceSet) Score(query []float32) *Result {
	if rs.Len() == 0 {
		return nil
	}
	q := Normalize(query)

	scores := make(map[string]float32, len(rs.owners))
	var (
		best      string
		bestScore float32
		first     = true
	)
	for _, owner := range rs.owners {
		s := Dot(rs.vectors[owner], q)
		scores[owner] = s
		// Strictly-greater comparison: the first owner at the maximum wins.
		if first || s > bestScore {
			best, bestScore, first = owner, s, false
		}
	}
	return &Result{OwnerID: best, Confidence: bestScore, Scores: scores}
}

// Dot returns the dot product of a and b. Mismatched lengths score 0.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

// Normalize returns a unit-length copy of vec. A zero vector is returned
// as a zero-filled copy.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
