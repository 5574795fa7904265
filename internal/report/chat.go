package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"prison-records/internal/logging"
	"prison-records/internal/models"

	"go.uber.org/zap"
)

const (
	ChatGreeting   = "Hello! How can I help you with the prisoner data today?"
	ChatEmptyReply = "Please ask a question."
	ChatErrorText  = "Sorry, I ran into a problem processing your request."
)

// ErrNotRetryable is returned by Retry for an index that is not an error turn.
var ErrNotRetryable = errors.New("message is not a retryable error")

// Chat is one assistant conversation. Turns are processed one at a time.
type Chat struct {
	composer *Composer

	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewChat starts a conversation with the greeting turn.
func NewChat(c *Composer) *Chat {
	return &Chat{
		composer: c,
		messages: []models.ChatMessage{{Role: models.RoleModel, Text: ChatGreeting}},
	}
}

// Messages returns a copy of the conversation.
func (ch *Chat) Messages() []models.ChatMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.snapshot()
}

func (ch *Chat) snapshot() []models.ChatMessage {
	out := make([]models.ChatMessage, len(ch.messages))
	copy(out, ch.messages)
	return out
}

// Send appends the user's question and the reply, or an error turn that
// carries the question for Retry.
func (ch *Chat) Send(ctx context.Context, question string) []models.ChatMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.messages = append(ch.messages, models.ChatMessage{Role: models.RoleUser, Text: question})
	ch.submit(ctx, question)
	return ch.snapshot()
}

// Retry drops every error turn and resubmits the question kept by error
// turn i.
func (ch *Chat) Retry(ctx context.Context, i int) ([]models.ChatMessage, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if i < 0 || i >= len(ch.messages) {
		return nil, fmt.Errorf("retry message %d: %w", i, ErrNotRetryable)
	}
	msg := ch.messages[i]
	if msg.Role != models.RoleError || msg.OriginalUserMessage == "" {
		return nil, fmt.Errorf("retry message %d: %w", i, ErrNotRetryable)
	}

	kept := ch.messages[:0]
	for _, m := range ch.messages {
		if m.Role != models.RoleError {
			kept = append(kept, m)
		}
	}
	ch.messages = kept
	ch.submit(ctx, msg.OriginalUserMessage)
	return ch.snapshot(), nil
}

func (ch *Chat) submit(ctx context.Context, question string) {
	if strings.TrimSpace(question) == "" {
		ch.messages = append(ch.messages, models.ChatMessage{Role: models.RoleModel, Text: ChatEmptyReply})
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant for the %s Management System.\n", ch.composer.facility())
	b.WriteString("Answer the user's question concisely.\n")
	fmt.Fprintf(&b, "The user's question is: %q\n", question)

	text, err := ch.composer.generate(ctx, b.String())
	if err != nil {
		logging.OrNop(ch.composer.Logger).Warn("chat reply failed", zap.Error(err))
		ch.messages = append(ch.messages, models.ChatMessage{
			Role:                models.RoleError,
			Text:                ChatErrorText,
			OriginalUserMessage: question,
		})
		return
	}
	ch.messages = append(ch.messages, models.ChatMessage{Role: models.RoleModel, Text: text})
}
