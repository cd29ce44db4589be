// Package chat holds the conversation core: the session that owns message
// history and turn-taking, and the failover policy that keeps a turn alive
// across quota-exhausted providers.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// Session drives one interactive conversation. It owns the ordered history
// and exactly one active provider adapter; the adapter is replaced wholesale
// (never mutated) on failover or manual switch.
//
// The turn path is synchronous: Send blocks until the active adapter responds
// or the failover policy gives up. The mutex exists for the persona fan-out
// demo and any other concurrent reader; the chat loop itself is
// single-threaded.
type Session struct {
	mu         sync.Mutex
	id         string
	history    domain.History
	active     ports.Provider
	policy     *Policy
	factory    ports.ProviderFactory
	maxHistory int
	startedAt  time.Time
	turns      int
	logger     ports.Logger
}

// NewSession builds a ready session around an initial adapter.
func NewSession(active ports.Provider, policy *Policy, factory ports.ProviderFactory, maxHistory int, logger ports.Logger) *Session {
	return &Session{
		id:         uuid.NewString(),
		active:     active,
		policy:     policy,
		factory:    factory,
		maxHistory: maxHistory,
		startedAt:  time.Now(),
		logger:     logger,
	}
}

// Turn is the outcome of one completed exchange.
type Turn struct {
	Reply     string
	Provider  string
	Model     string
	Failovers int
}

// Send runs one turn: append the human message, invoke the active adapter
// through the failover policy with the full history, append the reply, then
// truncate from the front past the history cap.
//
// On failure the pending human message stays at the tail with no reply after
// it, so the operator can resume where they left off; the session itself
// remains usable for the next turn.
func (s *Session) Send(ctx context.Context, userText string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Append(domain.NewHumanMessage(userText))

	provider, reply, switches, err := s.policy.Invoke(ctx, s.active, s.history.Messages())
	if provider != nil {
		// Atomic from the caller's point of view: the swap happens under the
		// session lock, never observed half-done.
		s.active = provider
	}
	if err != nil {
		return Turn{}, err
	}

	s.history.Append(reply)
	s.history.TruncateFront(s.maxHistory)
	s.turns++
	return Turn{
		Reply:     reply.Content,
		Provider:  s.active.Descriptor().ID,
		Model:     s.active.ActiveModel(),
		Failovers: switches,
	}, nil
}

// SendStreaming runs one turn over the adapter's streaming interface,
// calling onDelta for each fragment. Failover does not apply mid-stream;
// a stream error aborts the turn and leaves the pending human message at
// the tail, like any other failed turn.
func (s *Session) SendStreaming(ctx context.Context, userText string, onDelta func(string)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Append(domain.NewHumanMessage(userText))

	chunks, err := s.active.Stream(ctx, s.history.Messages())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		sb.WriteString(chunk.Content)
		if onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	content := strings.TrimSpace(sb.String())
	s.history.Append(domain.NewAIMessage(content))
	s.history.TruncateFront(s.maxHistory)
	s.turns++
	return content, nil
}

// SwitchProvider replaces the active adapter on operator request. History is
// not touched; whether to clear it is the interface layer's yes/no question.
func (s *Session) SwitchProvider(id, model string) error {
	settings := s.policy.Settings
	provider, err := s.factory.Create(id, model, settings)
	if err != nil {
		return fmt.Errorf("switch provider: %w", err)
	}

	s.mu.Lock()
	s.active = provider
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("provider switched", map[string]interface{}{"provider": id, "model": provider.ActiveModel()})
	}
	return nil
}

// Clear wipes the conversation history. Explicit user action only.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
	s.turns = 0
}

// Snapshot returns a copy of the ordered history.
func (s *Session) Snapshot() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Messages()
}

// Provider reports the active backend's id and model.
func (s *Session) Provider() (id, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Descriptor().ID, s.active.ActiveModel()
}

// ActiveAdapter exposes the live adapter for capability queries (catalog
// listing, secret validation). Callers must not hold it across turns.
func (s *Session) ActiveAdapter() ports.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Summary is the read-only projection used by /history and the exit screen.
type Summary struct {
	SessionID string
	Provider  string
	Model     string
	StartedAt time.Time
	Duration  time.Duration
	Turns     int
	Total     int
	Human     int
	AI        int
}

// Summarize computes basic counts over the current history.
func (s *Session) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := s.history.CountByRole()
	return Summary{
		SessionID: s.id,
		Provider:  s.active.Descriptor().DisplayName,
		Model:     s.active.ActiveModel(),
		StartedAt: s.startedAt,
		Duration:  time.Since(s.startedAt),
		Turns:     s.turns,
		Total:     s.history.Len(),
		Human:     counts[domain.RoleHuman],
		AI:        counts[domain.RoleAI],
	}
}

// Transcript projects the session into its persisted JSON shape.
func (s *Session) Transcript() domain.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.BuildTranscript(domain.SessionInfo{
		SessionID: s.id,
		StartTime: s.startedAt,
		Provider:  s.active.Descriptor().ID,
		Model:     s.active.ActiveModel(),
	}, s.history.Messages())
}
