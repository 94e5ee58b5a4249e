package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"food-rag-be/pkg/llm"
)

const defaultChatTimeout = 120 * time.Second

// Provider talks to any OpenAI-compatible /chat/completions endpoint.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client

	// chatTimeout bounds non-streaming completions only.
	chatTimeout time.Duration
}

var _ llm.Provider = (*Provider)(nil)

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

func NewProvider(apiKey, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},

		chatTimeout: defaultChatTimeout,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.chatTimeout)
	defer cancel()

	resp, err := p.send(ctx, history, false, options...)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", llm.ErrGeneration, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", llm.ErrGeneration, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: api returned error: %s", llm.ErrGeneration, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", llm.ErrGeneration)
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.Stream, error) {
	resp, err := p.send(ctx, history, true, options...)
	if err != nil {
		return nil, err
	}
	return &stream{body: resp.Body, reader: bufio.NewReader(resp.Body)}, nil
}

func (p *Provider) send(ctx context.Context, history []llm.Message, streaming bool, options ...llm.Option) (*http.Response, error) {
	opts := llm.NewOptions(options...)
	if opts.Model == "" {
		opts.Model = p.model
	}

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stream:      streaming,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if streaming {
		req.Header.Set("Accept", "text/event-stream")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", llm.ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		var errResp chatResponse
		if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error != nil {
			return nil, fmt.Errorf("%w: api error (status %d): %s", llm.ErrGeneration, resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: api error (status %d): %s", llm.ErrGeneration, resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

// stream reads `data:` lines of a streaming completion until `data: [DONE]`.
type stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

func (s *stream) Next() (string, error) {
	for !s.done {
		line, err := s.reader.ReadString('\n')
		if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				s.done = true
				break
			}

			var chunk chatChunk
			if jsonErr := json.Unmarshal([]byte(data), &chunk); jsonErr != nil {
				return "", fmt.Errorf("%w: decode chunk: %v", llm.ErrGeneration, jsonErr)
			}
			if chunk.Error != nil {
				return "", fmt.Errorf("%w: %s", llm.ErrGeneration, chunk.Error.Message)
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				return chunk.Choices[0].Delta.Content, nil
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: stream ended before [DONE]", llm.ErrGeneration)
			}
			return "", fmt.Errorf("%w: read stream: %v", llm.ErrGeneration, err)
		}
	}
	return "", io.EOF
}

func (s *stream) Close() error {
	return s.body.Close()
}
