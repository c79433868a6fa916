// Package chat forwards user messages to an external completion API, enriched
// with a server-built system prompt. The provider credential lives in server
// config only and is never exposed to clients.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"zenspend/pkg/ai"
	"zenspend/pkg/domain"
)

// FallbackReply is persisted as a normal assistant message whenever the
// completion call fails for any reason.
const FallbackReply = "I'm having trouble connecting right now. Take a moment to breathe."

// DefaultHistoryLimit is how many turns, inclusive of the newly sent message,
// are forwarded to the completion API.
const DefaultHistoryLimit = 12

var (
	ErrBusy         = errors.New("a chat request is already in flight")
	ErrEmptyMessage = errors.New("message is empty")
)

// HistoryStore is the slice of the user-scoped store the forwarder needs.
type HistoryStore interface {
	ListChatMessages(userID string) ([]domain.ChatMessage, error)
	AppendChatMessage(userID string, msg domain.ChatMessage) error
}

// Forwarder brokers chat messages between one user and the completion API,
// allowing a single in-flight request per user.
type Forwarder struct {
	store        HistoryStore
	completer    ai.Completer
	historyLimit int

	mu       sync.Mutex
	inflight map[string]bool
}

// NewForwarder wires the forwarder. historyLimit <= 0 selects the default.
func NewForwarder(store HistoryStore, completer ai.Completer, historyLimit int) *Forwarder {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Forwarder{
		store:        store,
		completer:    completer,
		historyLimit: historyLimit,
		inflight:     make(map[string]bool),
	}
}

// Send persists the user's message, forwards the trailing conversation window
// to the completion API, and persists and returns the reply. A failed call
// degrades to the fixed fallback message rather than an error; the only error
// cases are an empty message and a second send while one is outstanding.
func (f *Forwarder) Send(ctx context.Context, userID string, snapshot FinanceSnapshot, text string) (domain.ChatMessage, error) {
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}
	if !f.acquire(userID) {
		return domain.ChatMessage{}, ErrBusy
	}
	defer f.release(userID)

	userMsg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   text,
		Timestamp: time.Now().UTC(),
	}
	if err := f.store.AppendChatMessage(userID, userMsg); err != nil {
		return domain.ChatMessage{}, err
	}

	history, err := f.store.ListChatMessages(userID)
	if err != nil {
		slog.Warn("chat history load failed", "err", err)
		history = []domain.ChatMessage{userMsg}
	}
	turns := conversationWindow(history, userMsg, f.historyLimit)

	systemPrompt := BuildSystemPrompt(snapshot, text)
	content, err := f.completer.Complete(ctx, systemPrompt, turns)
	if err != nil {
		slog.Warn("chat completion failed", "err", err)
		content = FallbackReply
	}

	reply := domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := f.store.AppendChatMessage(userID, reply); err != nil {
		return domain.ChatMessage{}, err
	}
	return reply, nil
}

func (f *Forwarder) acquire(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inflight[userID] {
		return false
	}
	f.inflight[userID] = true
	return true
}

func (f *Forwarder) release(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inflight, userID)
}

// conversationWindow returns the last limit turns, guaranteeing the freshly
// sent message is included even if the history read raced another writer.
func conversationWindow(history []domain.ChatMessage, latest domain.ChatMessage, limit int) []ai.Message {
	if len(history) == 0 || history[len(history)-1].ID != latest.ID {
		history = append(history, latest)
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	turns := make([]ai.Message, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Message{Role: m.Role, Content: m.Content})
	}
	return turns
}
