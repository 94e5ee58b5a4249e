package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"food-rag-be/pkg/llm"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements Provider
var _ llm.Provider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		// No client timeout: streams are bounded by the caller's context.
		Client: &http.Client{},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	resp, err := o.send(ctx, history, false, opts...)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", llm.ErrGeneration, err)
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", llm.ErrGeneration, err)
	}
	if ollamaResp.Error != "" {
		return "", fmt.Errorf("%w: %s", llm.ErrGeneration, ollamaResp.Error)
	}

	return ollamaResp.Message.Content, nil
}

func (o *OllamaProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	resp, err := o.send(ctx, history, true, opts...)
	if err != nil {
		return nil, err
	}
	return &stream{body: resp.Body, reader: bufio.NewReader(resp.Body)}, nil
}

func (o *OllamaProvider) send(ctx context.Context, history []llm.Message, streaming bool, opts ...llm.Option) (*http.Response, error) {
	options := llm.NewOptions(opts...)

	ollamaMessages := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		ollamaMessages[i] = ollamaMessage{Role: role, Content: msg.Content}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Stream:   streaming,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama request failed: %v", llm.ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama error: status %d, body: %s", llm.ErrGeneration, resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

// stream decodes the NDJSON chunks of a streaming /api/chat response.
type stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

func (s *stream) Next() (string, error) {
	for !s.done {
		line, err := s.reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var chunk ollamaChatResponse
			if jsonErr := json.Unmarshal(line, &chunk); jsonErr != nil {
				return "", fmt.Errorf("%w: decode chunk: %v", llm.ErrGeneration, jsonErr)
			}
			if chunk.Error != "" {
				return "", fmt.Errorf("%w: %s", llm.ErrGeneration, chunk.Error)
			}
			if chunk.Done {
				s.done = true
			}
			if chunk.Message.Content != "" {
				return chunk.Message.Content, nil
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: stream ended before done", llm.ErrGeneration)
			}
			return "", fmt.Errorf("%w: read stream: %v", llm.ErrGeneration, err)
		}
	}
	return "", io.EOF
}

func (s *stream) Close() error {
	return s.body.Close()
}
