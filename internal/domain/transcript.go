package domain

import "time"

// Transcript is the persisted JSON shape of a chat session.
type Transcript struct {
	SessionInfo SessionInfo       `json:"session_info"`
	Messages    []TranscriptEntry `json:"messages"`
}

// SessionInfo summarizes the session a transcript was taken from.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	StartTime    time.Time `json:"start_time"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
}

// TranscriptEntry is one persisted message.
type TranscriptEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// BuildTranscript projects an ordered history into the persisted shape.
func BuildTranscript(info SessionInfo, messages []Message) Transcript {
	entries := make([]TranscriptEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, TranscriptEntry{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		})
	}
	info.MessageCount = len(entries)
	return Transcript{SessionInfo: info, Messages: entries}
}

// TurnRecord captures one completed turn for the local history database.
type TurnRecord struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Reply     string    `json:"reply"`
	LatencyMS int64     `json:"latency_ms"`
	Failovers int       `json:"failovers"`
}
