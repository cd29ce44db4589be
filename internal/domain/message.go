// Package domain defines core business entities and value objects for omnichat.
//
// The domain layer is independent of infrastructure concerns and represents
// pure data structures: conversation messages, provider catalogs, configuration
// and the error taxonomy shared by the session and failover layers.
package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Message is one immutable conversation entry. Ordering is conversation
// order; Content is opaque text.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// NewHumanMessage builds a human-authored message stamped with the current time.
func NewHumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content, CreatedAt: time.Now()}
}

// NewAIMessage builds an assistant message stamped with the current time.
func NewAIMessage(content string) Message {
	return Message{Role: RoleAI, Content: content, CreatedAt: time.Now()}
}

// History is the ordered conversation log. Append-only during normal
// operation; the only removals are front-truncation at the size cap and an
// explicit user-initiated clear.
type History struct {
	messages []Message
}

// Append adds a message at the tail.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

// TruncateFront drops the oldest entries until at most max remain.
// max <= 0 means unbounded.
func (h *History) TruncateFront(max int) {
	if max <= 0 || len(h.messages) <= max {
		return
	}
	h.messages = append([]Message(nil), h.messages[len(h.messages)-max:]...)
}

// Clear removes every entry.
func (h *History) Clear() {
	h.messages = nil
}

// Len reports the number of stored messages.
func (h *History) Len() int {
	return len(h.messages)
}

// Last returns the tail message, or false when empty.
func (h *History) Last() (Message, bool) {
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Messages returns a copy of the ordered log. Callers may not mutate
// history through the returned slice.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// CountByRole tallies messages per author role.
func (h *History) CountByRole() map[Role]int {
	counts := make(map[Role]int, 2)
	for _, msg := range h.messages {
		counts[msg.Role]++
	}
	return counts
}
