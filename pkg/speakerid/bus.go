package speakerid

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Entry is the single-slot last-recognition surface shared across bridges.
type Entry struct {
	// OwnerID is the recognized owner.
	OwnerID string

	// Confidence is the best similarity score of the recognition.
	Confidence float32

	// ObservedAt is the time the result was published. time.Time carries
	// the monotonic clock, so age computations are immune to wall-clock
	// jumps.
	ObservedAt time.Time
}

// Event is the observable domain event emitted on every publication.
type Event struct {
	// OwnerID is the recognized owner.
	OwnerID string

	// Confidence is the best similarity score.
	Confidence float32

	// AllScores maps every enrolled owner to its similarity score.
	AllScores map[string]float32

	// SourceID identifies the speech bridge that produced the result.
	SourceID string
}

// Bus holds the most recent recognition result across all speech sources.
//
// It is a process-wide single slot: every publish overwrites the previous
// entry (last write wins), and concurrent sources race without ordering
// guarantees. Readers peek by value; entries are never consumed, only
// superseded or aged out by the readers' freshness checks. Writes are
// atomic, so readers never observe a torn entry.
type Bus struct {
	slot atomic.Pointer[Entry]
	now  func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithNow overrides the bus clock. For tests.
func WithNow(now func() time.Time) BusOption {
	return func(b *Bus) { b.now = now }
}

// NewBus creates an empty Bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		now:  time.Now,
		subs: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish stamps the current time, overwrites the slot with the result,
// and notifies subscribers with the full score map.
func (b *Bus) Publish(res *Result, sourceID string) {
	b.slot.Store(&Entry{
		OwnerID:    res.OwnerID,
		Confidence: res.Confidence,
		ObservedAt: b.now(),
	})
	slog.Debug("speakerid: recognition published",
		"owner", res.OwnerID, "confidence", res.Confidence, "source", sourceID)

	ev := Event{
		OwnerID:    res.OwnerID,
		Confidence: res.Confidence,
		AllScores:  res.Scores,
		SourceID:   sourceID,
	}
	b.mu.Lock()
	subs := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Peek returns the most recent entry by value. The second return value is
// false if nothing has been published yet.
func (b *Bus) Peek() (Entry, bool) {
	e := b.slot.Load()
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// Subscribe registers fn to be called on every publication. The returned
// cancel function removes the subscription; it is safe to call more than
// once.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Now returns the bus clock's current time. Bridges use the same clock
// for freshness checks so injected test clocks stay consistent.
func (b *Bus) Now() time.Time { return b.now() }
