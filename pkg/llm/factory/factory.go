package factory

import (
	"fmt"

	"food-rag-be/internal/config"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/llm/ollama"
	"food-rag-be/pkg/llm/openai"
)

func NewLLMProvider(cfg config.AIConfig) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.LLMModel), nil
	case "openai", "":
		return openai.NewProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
