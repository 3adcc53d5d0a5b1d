package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/haivivi/voicekit/pkg/speakerid"
)

// FreshnessWindow is how long a published recognition result stays usable
// for speaker attribution. Older entries are ignored, never deleted.
const FreshnessWindow = 5 * time.Second

// DefaultMinConfidence is the attribution threshold used when none is
// configured.
const DefaultMinConfidence float32 = 0.6

// Request is one turn of user input heading to the wrapped agent.
type Request struct {
	// Text is the user's utterance.
	Text string

	// ActingUserID is the user the turn is attributed to. Empty means
	// unattributed.
	ActingUserID string

	// ConversationID threads multi-turn exchanges. Assigned when empty.
	ConversationID string

	// DeviceID identifies the device the utterance came from.
	DeviceID string

	// Language is the utterance language tag.
	Language string

	// ExtraSystemPrompt is appended to the agent's system prompt.
	ExtraSystemPrompt string
}

// Response is the agent's reply. Err carries an agent-level failure; the
// bridge reports failures as responses, never as panics.
type Response struct {
	// Text is the agent's reply text.
	Text string

	// ConversationID echoes the request's conversation.
	ConversationID string

	// Err is non-nil when the turn failed.
	Err error
}

// ErrorResponse builds a failed Response for the given conversation.
func ErrorResponse(conversationID string, err error) *Response {
	return &Response{ConversationID: conversationID, Err: err}
}

// ConversationBridge decorates an [Agent] with speaker attribution.
//
// Before forwarding a request it peeks at the bus's most recent
// recognition entry. When the entry is fresh, confident enough, and names
// someone other than the request's current acting user, the request is
// cloned with ActingUserID substituted. In every other case the request
// passes through untouched, so a missing or stale recognition leaves the
// conversation behaving exactly as without the bridge.
type ConversationBridge struct {
	agent         Agent
	bus           *speakerid.Bus
	minConfidence float32

	available   atomic.Bool
	cancelAvail func()

	mu    sync.Mutex
	langs []string
}

// ConversationOption configures a ConversationBridge.
type ConversationOption func(*ConversationBridge)

// WithMinConfidence sets the attribution threshold. Results scoring below
// it are ignored. Default [DefaultMinConfidence].
func WithMinConfidence(min float32) ConversationOption {
	return func(b *ConversationBridge) { b.minConfidence = min }
}

// NewConversation wraps agent with attribution from bus. A nil agent is
// tolerated; Process then returns error responses.
func NewConversation(agent Agent, bus *speakerid.Bus, opts ...ConversationOption) *ConversationBridge {
	b := &ConversationBridge{
		agent:         agent,
		bus:           bus,
		minConfidence: DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.available.Store(agent != nil)
	if agent != nil {
		b.langs = agent.Languages()
		if n, ok := agent.(AvailabilityNotifier); ok {
			b.cancelAvail = n.SubscribeAvailability(b.onAvailability)
		}
	}
	return b
}

func (b *ConversationBridge) onAvailability(available bool) {
	b.available.Store(available)
	if available {
		langs := b.agent.Languages()
		b.mu.Lock()
		b.langs = langs
		b.mu.Unlock()
	}
	slog.Info("bridge: conversation agent availability changed", "available", available)
}

// Languages mirrors the wrapped agent's supported languages.
func (b *ConversationBridge) Languages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.langs
}

// Process attributes req and forwards it to the wrapped agent.
func (b *ConversationBridge) Process(ctx context.Context, req *Request) *Response {
	if req.ConversationID == "" {
		clone := *req
		clone.ConversationID = uuid.NewString()
		req = &clone
	}
	if b.agent == nil || !b.available.Load() {
		return ErrorResponse(req.ConversationID,
			fmt.Errorf("bridge: conversation agent unavailable"))
	}
	return b.agent.Converse(ctx, b.attribute(req))
}

// attribute returns req, or a clone with ActingUserID substituted when the
// bus holds a usable recognition entry.
func (b *ConversationBridge) attribute(req *Request) *Request {
	entry, ok := b.bus.Peek()
	if !ok {
		return req
	}
	age := b.bus.Now().Sub(entry.ObservedAt)
	if age >= FreshnessWindow {
		slog.Debug("bridge: recognition too old for attribution",
			"owner", entry.OwnerID, "age", age)
		return req
	}
	if entry.Confidence < b.minConfidence {
		slog.Debug("bridge: recognition below attribution threshold",
			"owner", entry.OwnerID, "confidence", entry.Confidence, "min", b.minConfidence)
		return req
	}
	if req.ActingUserID == entry.OwnerID {
		return req
	}

	clone := *req
	clone.ActingUserID = entry.OwnerID
	slog.Info("bridge: speaker attributed",
		"owner", entry.OwnerID, "confidence", entry.Confidence,
		"conversation", req.ConversationID)
	return &clone
}

// Close unsubscribes from the wrapped agent's availability stream.
func (b *ConversationBridge) Close() error {
	if b.cancelAvail != nil {
		b.cancelAvail()
		b.cancelAvail = nil
	}
	return nil
}
