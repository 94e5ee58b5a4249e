package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiEmbeddingModel = "text-embedding-004"

type GeminiProvider struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:  apiKey,
		BaseURL: "https://generativelanguage.googleapis.com/v1",
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbeddingRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []geminiPart `json:"parts"`
	} `json:"content"`
	TaskType string `json:"taskType,omitempty"`
}

type geminiEmbeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	geminiReq := geminiEmbeddingRequest{Model: geminiEmbeddingModel, TaskType: "RETRIEVAL_QUERY"}
	geminiReq.Content.Parts = []geminiPart{{Text: text}}

	payload, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, geminiEmbeddingModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var resEmbedding geminiEmbeddingResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}

	return normalizeVector(resEmbedding.Embedding.Values), nil
}
