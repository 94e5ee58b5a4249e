package llm

import (
	"context"
	"errors"
)

// ErrGeneration is wrapped by providers for transport, auth, quota and
// stream decoding failures.
var ErrGeneration = errors.New("generation failed")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1500
)

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Stream yields generated text fragments in order. Next returns io.EOF once
// the model has finished; any other error is terminal. Empty fragments are
// never returned.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream starts a streaming completion. Cancelling ctx aborts it.
	ChatStream(ctx context.Context, history []Message, options ...Option) (Stream, error)
}
