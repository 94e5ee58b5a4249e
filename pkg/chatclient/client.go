// Package chatclient consumes the chat event stream and maintains the
// assistant message the way a UI would.
package chatclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"food-rag-be/pkg/sse"
	"food-rag-be/pkg/store"

	"github.com/google/uuid"
)

// Apology is appended to the assistant turn when the stream fails.
const Apology = "Sorry, something went wrong while generating a response. Please try again."

// ErrIncomplete is returned when the server closed the stream without a
// terminal frame. The partial content is kept as is.
var ErrIncomplete = errors.New("stream ended without a terminal event")

// Request mirrors the inbound chat payload of POST /api/chat/stream.
type Request struct {
	Message     string             `json:"message"`
	Preferences *store.Preferences `json:"preferences,omitempty"`
	UserID      string             `json:"user_id,omitempty"`
	SessionID   string             `json:"session_id,omitempty"`
	MealType    string             `json:"meal_type,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		now:     time.Now,
	}
}

// UserMessage builds the user's turn for req.
func (c *Client) UserMessage(text string) store.Message {
	return store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleUser,
		Content:   text,
		Timestamp: c.now(),
	}
}

// Reply is the outcome of Stream.
type Reply struct {
	Message store.Message
	// Dropped counts frames that could not be parsed and were skipped.
	Dropped int
}

// Send streams the reply to req and returns the assistant message.
func (c *Client) Send(ctx context.Context, req Request, onUpdate func(store.Message)) (store.Message, error) {
	reply, err := c.Stream(ctx, req, onUpdate)
	return reply.Message, err
}

// Stream is Send with stream diagnostics. onUpdate, when set, observes the
// assistant message after creation, after every fragment and once finished.
// The returned message never has Streaming set.
func (c *Client) Stream(ctx context.Context, req Request, onUpdate func(store.Message)) (Reply, error) {
	notify := func(m store.Message) {
		if onUpdate != nil {
			onUpdate(m)
		}
	}

	msg := store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleAssistant,
		Timestamp: c.now(),
		Streaming: true,
	}
	notify(msg)

	r, err := sse.Open(ctx, c.http, c.baseURL+"/api/chat/stream", req)
	if err != nil {
		msg = failed(msg)
		notify(msg)
		return Reply{Message: msg}, err
	}
	defer r.Close()

	var content strings.Builder
	for r.Next() {
		content.WriteString(r.Text())
		msg.Content = content.String()
		notify(msg)
	}
	msg.Streaming = false

	if err := r.Err(); err != nil {
		msg = failed(msg)
		notify(msg)
		return Reply{Message: msg, Dropped: r.Dropped()}, err
	}
	notify(msg)

	reply := Reply{Message: msg, Dropped: r.Dropped()}
	if _, ok := r.Terminal(); !ok {
		return reply, ErrIncomplete
	}
	return reply, nil
}

// failed keeps partial content and appends the apology.
func failed(m store.Message) store.Message {
	m.Streaming = false
	m.Failed = true
	if m.Content == "" {
		m.Content = Apology
	} else {
		m.Content += "\n\n" + Apology
	}
	return m
}
