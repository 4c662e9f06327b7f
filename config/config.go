// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"rag/chunk"
)

// Backend names accepted by EMBED_BACKEND.
const (
	EmbedBackendLocal  = "local"
	EmbedBackendRemote = "remote"
	EmbedBackendMock   = "mock"
)

// Backend names accepted by VECTOR_BACKEND.
const (
	VectorBackendSqlite   = "sqlite"
	VectorBackendPostgres = "postgres"
)

// Config is the full recognized configuration surface. Values come from the
// environment (godotenv is loaded by the entrypoints before reading).
type Config struct {
	ServerAddr string `validate:"required"`

	EmbedBackend  string `validate:"oneof=local remote mock"`
	EmbedModel    string `validate:"required"`
	OllamaURL     string `validate:"required"`
	OnnxModelPath string
	EmbedDim      int `validate:"gt=0"`

	LLMModel    string  `validate:"required"`
	MaxTokens   int     `validate:"gt=0"`
	Temperature float64 `validate:"gte=0"`

	SourceDir string `validate:"required"`
	IndexDir  string `validate:"required"`

	// Header/footer bands stripped from PDF pages before extraction, in
	// points. Zero disables cropping.
	PDFCropTop    float64 `validate:"gte=0"`
	PDFCropBottom float64 `validate:"gte=0"`

	VectorBackend string `validate:"oneof=sqlite postgres"`
	PostgresDSN   string

	ChunkSize    int `validate:"gt=0"`
	ChunkOverlap int `validate:"gte=0"`
	TopK         int `validate:"gt=0"`

	EmbedBatchSize  int           `validate:"gt=0"`
	EmbedThrottle   time.Duration `validate:"gte=0"`
	IngestThrottle  time.Duration `validate:"gte=0"`
	ContextMaxChars int           `validate:"gt=0"`

	EmbedTimeout    time.Duration `validate:"gt=0"`
	GenerateTimeout time.Duration `validate:"gt=0"`
}

// Load reads, defaults and validates the configuration. Chunk parameters are
// cross-checked here so a bad overlap/size pair fails at startup, not mid-run.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getString("SERVER_ADDR", ":8000"),

		EmbedBackend:  getString("EMBED_BACKEND", EmbedBackendRemote),
		EmbedModel:    getString("EMBED_MODEL", "nomic-embed-text"),
		OllamaURL:     getString("OLLAMA_URL", "http://localhost:11434"),
		OnnxModelPath: getString("ONNX_MODEL_PATH", "./models/all-MiniLM-L6-v2.onnx"),
		EmbedDim:      getInt("EMBED_DIM", 384),

		LLMModel:    getString("LLM_MODEL", "llama3.2:3b"),
		MaxTokens:   getInt("MAX_TOKENS", 600),
		Temperature: getFloat("TEMPERATURE", 0.1),

		SourceDir: getString("SOURCE_DIR", "./data/kb"),
		IndexDir:  getString("INDEX_DIR", "./data/index"),

		PDFCropTop:    getFloat("PDF_CROP_TOP", 0),
		PDFCropBottom: getFloat("PDF_CROP_BOTTOM", 0),

		VectorBackend: getString("VECTOR_BACKEND", VectorBackendSqlite),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),

		ChunkSize:    getInt("CHUNK_SIZE", 800),
		ChunkOverlap: getInt("CHUNK_OVERLAP", 150),
		TopK:         getInt("TOP_K", 3),

		EmbedBatchSize:  getInt("EMBED_BATCH_SIZE", 128),
		EmbedThrottle:   getSeconds("EMBED_THROTTLE_SEC", 0),
		IngestThrottle:  getSeconds("INGEST_THROTTLE_SEC", 0),
		ContextMaxChars: getInt("CONTEXT_MAX_CHARS", 8000),

		EmbedTimeout:    getSeconds("EMBED_TIMEOUT_SEC", 60),
		GenerateTimeout: getSeconds("GENERATE_TIMEOUT_SEC", 600),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := chunk.Split("", cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
		return nil, err
	}
	if cfg.VectorBackend == VectorBackendPostgres && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("VECTOR_BACKEND=postgres requires POSTGRES_DSN")
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getSeconds(key string, fallback float64) time.Duration {
	return time.Duration(getFloat(key, fallback) * float64(time.Second))
}
