// Package sse implements the event-stream framing shared by the chat server
// and its clients: `data: <json>` lines separated by a blank line.
package sse

// Event is one frame payload. Exactly one of the three shapes is set:
// {"content": "..."}, {"done": true} or {"error": "..."}.
type Event struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Content(fragment string) Event {
	return Event{Content: fragment}
}

func Done() Event {
	return Event{Done: true}
}

func Failure(message string) Event {
	return Event{Error: message}
}

// Terminal reports whether no event may follow e.
func (e Event) Terminal() bool {
	return e.Done || e.Error != ""
}

const (
	ContentType = "text/event-stream"
	dataPrefix  = "data:"
)
