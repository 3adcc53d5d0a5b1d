package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAgent is an [Agent] backed by an OpenAI-compatible chat
// completion endpoint. Conversation history is kept in memory per
// conversation ID; the acting user is surfaced to the model through the
// system prompt so attributed turns are answered in that user's context.
type OpenAIAgent struct {
	client openai.Client
	model  string
	prompt string
	langs  []string

	mu      sync.Mutex
	history map[string][]openai.ChatCompletionMessageParamUnion
}

var _ Agent = (*OpenAIAgent)(nil)

// OpenAIAgentOption configures an OpenAIAgent.
type OpenAIAgentOption func(*OpenAIAgent)

// WithBaseURL points the agent at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) OpenAIAgentOption {
	return func(a *OpenAIAgent) {
		a.client = openai.NewClient(option.WithBaseURL(baseURL))
	}
}

// WithSystemPrompt sets the base system prompt.
func WithSystemPrompt(prompt string) OpenAIAgentOption {
	return func(a *OpenAIAgent) { a.prompt = prompt }
}

// WithLanguages sets the language tags the agent reports.
func WithLanguages(langs ...string) OpenAIAgentOption {
	return func(a *OpenAIAgent) { a.langs = langs }
}

// NewOpenAIAgent creates an agent using apiKey and model.
func NewOpenAIAgent(apiKey, model string, opts ...OpenAIAgentOption) *OpenAIAgent {
	a := &OpenAIAgent{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		langs:   []string{"en"},
		history: make(map[string][]openai.ChatCompletionMessageParamUnion),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Languages implements [Agent].
func (a *OpenAIAgent) Languages() []string { return a.langs }

// Converse implements [Agent].
func (a *OpenAIAgent) Converse(ctx context.Context, req *Request) *Response {
	system := a.prompt
	if req.ActingUserID != "" {
		system += fmt.Sprintf("\nYou are speaking with user %q.", req.ActingUserID)
	}
	if req.ExtraSystemPrompt != "" {
		system += "\n" + req.ExtraSystemPrompt
	}

	a.mu.Lock()
	prior := a.history[req.ConversationID]
	a.mu.Unlock()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prior)+2)
	messages = append(messages, openai.SystemMessage(system))
	messages = append(messages, prior...)
	messages = append(messages, openai.UserMessage(req.Text))

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    a.model,
	})
	if err != nil {
		return ErrorResponse(req.ConversationID, fmt.Errorf("bridge: chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return ErrorResponse(req.ConversationID, fmt.Errorf("bridge: chat completion returned no choices"))
	}
	text := resp.Choices[0].Message.Content

	a.mu.Lock()
	a.history[req.ConversationID] = append(prior,
		openai.UserMessage(req.Text),
		openai.AssistantMessage(text))
	a.mu.Unlock()

	return &Response{Text: text, ConversationID: req.ConversationID}
}

// Forget drops the stored history for a conversation.
func (a *OpenAIAgent) Forget(conversationID string) {
	a.mu.Lock()
	delete(a.history, conversationID)
	a.mu.Unlock()
}
