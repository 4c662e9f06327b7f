package api

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"rag/loader/service"
)

// IngestHandler triggers a full collection rebuild. Runs are serialized:
// the collection has no versioning, so two interleaved rebuilds would race
// each other's clear-then-add sequence.
type IngestHandler struct {
	ingester *service.Service
	mu       sync.Mutex
}

func NewIngestHandler(ingester *service.Service) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	if !h.mu.TryLock() {
		return NewError(fiber.StatusConflict, "an ingestion run is already in progress")
	}
	defer h.mu.Unlock()

	stats, err := h.ingester.Run(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
