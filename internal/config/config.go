package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	VectorStore VectorStoreConfig
	Ai          AIConfig
	Rag         RAGConfig
	Tracing     TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type VectorStoreConfig struct {
	Provider         string // "chroma" or "pgvector"
	ChromaHost       string
	ChromaPort       int
	ChromaCollection string
	ChromaTenant     string
	ChromaDatabase   string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "gemini"
	OllamaBaseURL     string
	OllamaModel       string // embedding model
	GeminiAPIKey      string
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	Temperature       float64
	MaxTokens         int
}

type RAGConfig struct {
	DefaultLimit     int
	OverFetchFactor  int
	RetrievalTimeout time.Duration
	FragmentTimeout  time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IngestTopic:        getEnv("INGEST_TOPIC_NAME", "INGEST_FOOD_ITEM"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		VectorStore: VectorStoreConfig{
			Provider:         getEnv("VECTOR_STORE_PROVIDER", "chroma"),
			ChromaHost:       getEnv("CHROMA_HOST", "localhost"),
			ChromaPort:       getEnvAsInt("CHROMA_PORT", 8000),
			ChromaCollection: getEnv("CHROMA_COLLECTION", "foods"),
			ChromaTenant:     getEnv("CHROMA_TENANT", "default_tenant"),
			ChromaDatabase:   getEnv("CHROMA_DATABASE", "default_database"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 1500),
		},
		Rag: RAGConfig{
			DefaultLimit:     getEnvAsInt("RAG_DEFAULT_LIMIT", 5),
			OverFetchFactor:  getEnvAsInt("RAG_OVERFETCH_FACTOR", 3),
			RetrievalTimeout: getEnvAsDuration("RAG_RETRIEVAL_TIMEOUT", 10*time.Second),
			FragmentTimeout:  getEnvAsDuration("RAG_FRAGMENT_TIMEOUT", 30*time.Second),
		},
		Tracing: TracingConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
