package events

import "time"

const (
	TypeChatCompleted = "CHAT_COMPLETED"
	TypeChatFailed    = "CHAT_FAILED"
)

// ChatSummary describes one finished chat stream.
type ChatSummary struct {
	SessionID    string
	UserID       string
	Transport    string // "sse", "websocket" or "blocking"
	Fragments    int
	Items        int
	Degraded     bool
	Disconnected bool
	Error        string
	Duration     time.Duration
}

// NewChatEvent returns CHAT_FAILED when s carries an error, CHAT_COMPLETED otherwise.
func NewChatEvent(s ChatSummary, at time.Time) BaseEvent {
	eventType := TypeChatCompleted
	data := map[string]interface{}{
		"session_id":  s.SessionID,
		"user_id":     s.UserID,
		"transport":   s.Transport,
		"fragments":   s.Fragments,
		"items":       s.Items,
		"degraded":    s.Degraded,
		"duration_ms": s.Duration.Milliseconds(),
	}
	if s.Error != "" {
		eventType = TypeChatFailed
		data["error"] = s.Error
		data["disconnected"] = s.Disconnected
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}
