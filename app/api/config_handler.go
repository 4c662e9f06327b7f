package api

import (
	"github.com/gofiber/fiber/v2"

	"rag/config"
)

// ConfigHandler exposes the sanitized active configuration for operators.
type ConfigHandler struct {
	cfg *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

func (h *ConfigHandler) HandleGetConfig(c *fiber.Ctx) error {
	// Connection strings stay out of the response.
	return c.JSON(fiber.Map{
		"embed_backend":     h.cfg.EmbedBackend,
		"embed_model":       h.cfg.EmbedModel,
		"llm_model":         h.cfg.LLMModel,
		"vector_backend":    h.cfg.VectorBackend,
		"source_dir":        h.cfg.SourceDir,
		"chunk_size":        h.cfg.ChunkSize,
		"chunk_overlap":     h.cfg.ChunkOverlap,
		"top_k":             h.cfg.TopK,
		"max_tokens":        h.cfg.MaxTokens,
		"temperature":       h.cfg.Temperature,
		"embed_batch_size":  h.cfg.EmbedBatchSize,
		"context_max_chars": h.cfg.ContextMaxChars,
	})
}
