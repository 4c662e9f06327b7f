package api

import (
	"log/slog"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"rag/config"
)

// FileHandler accepts document uploads into the source directory. Uploaded
// files become part of the collection on the next ingestion run.
type FileHandler struct {
	cfg *config.Config
}

func NewFileHandler(cfg *config.Config) *FileHandler {
	return &FileHandler{cfg: cfg}
}

func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	path := filepath.Join(h.cfg.SourceDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, path); err != nil {
		return err
	}
	slog.Default().Info("file uploaded", "path", path)

	return c.JSON(fiber.Map{"saved": path})
}
