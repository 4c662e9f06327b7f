// Package service rebuilds the chunk collection from the source directory.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rag/chunk"
	"rag/config"
	"rag/loader/internal"
	"rag/model"
	"rag/store"
	"rag/types"
)

// Service is the ingestion pipeline: discover -> extract -> chunk -> embed
// in batches -> clear + bulk add. One Run replaces the collection wholesale.
type Service struct {
	logger   *slog.Logger
	cfg      *config.Config
	embedder model.Embedder
	store    store.VectorStorer
}

func New(cfg *config.Config, embedder model.Embedder, storer store.VectorStorer) *Service {
	return &Service{
		logger:   slog.Default(),
		cfg:      cfg,
		embedder: embedder,
		store:    storer,
	}
}

// Run rebuilds the collection from the current contents of the source
// directory. Per-file problems are skipped and counted; an embedding failure
// aborts the run before Clear, leaving the previous collection untouched.
func (s *Service) Run(ctx context.Context) (types.IngestStats, error) {
	stats := types.IngestStats{StartedAt: time.Now()}
	runID := uuid.New()
	log := s.logger.With("run_id", runID.String())

	if err := internal.CreateDirectories(s.cfg.SourceDir); err != nil {
		return stats, fmt.Errorf("create source directory: %w", err)
	}

	files, err := internal.Discover(s.cfg.SourceDir)
	if err != nil {
		return stats, fmt.Errorf("discover source files: %w", err)
	}
	log.Info("ingestion started", "source_dir", s.cfg.SourceDir, "files", len(files))

	var chunks []types.Chunk
	for _, path := range files {
		text, err := s.extract(path)
		if err != nil {
			log.Warn("file skipped, extraction failed", "file", path, "error", err)
			stats.FilesSkipped++
			continue
		}

		parts, err := chunk.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
		if err != nil {
			// Chunk params are validated at startup; reaching this is a bug.
			return stats, err
		}
		if len(parts) == 0 {
			log.Warn("file skipped, no text", "file", path)
			stats.FilesSkipped++
			continue
		}

		source := filepath.Base(path)
		for i, part := range parts {
			chunks = append(chunks, types.Chunk{Source: source, Index: i, Text: part})
		}
		stats.FilesProcessed++
	}

	if len(chunks) == 0 {
		log.Info("nothing to index, collection left untouched")
		stats.Duration = time.Since(stats.StartedAt).String()
		return stats, nil
	}

	vectors, err := s.embedAll(ctx, chunks, log)
	if err != nil {
		// Abort before Clear: the previous collection stays readable.
		return stats, fmt.Errorf("embedding failed, collection left untouched: %w", err)
	}

	records := make([]types.IndexRecord, len(chunks))
	for i, c := range chunks {
		records[i] = types.IndexRecord{
			ID:         c.ID(),
			Text:       c.Text,
			Source:     c.Source,
			ChunkIndex: c.Index,
			Embedding:  vectors[i],
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		return stats, fmt.Errorf("clear collection: %w", err)
	}
	if err := s.store.Add(ctx, records); err != nil {
		return stats, fmt.Errorf("load collection: %w", err)
	}

	stats.ChunksIndexed = len(records)
	stats.Duration = time.Since(stats.StartedAt).String()
	log.Info("ingestion complete",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"chunks_indexed", stats.ChunksIndexed,
		"duration", stats.Duration)
	return stats, nil
}

// extract runs the extraction collaborator, cropping PDF header/footer
// bands first when margins are configured. The crop works on a scratch copy
// so source files stay untouched.
func (s *Service) extract(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") && (s.cfg.PDFCropTop > 0 || s.cfg.PDFCropBottom > 0) {
		cropped := filepath.Join(os.TempDir(), "crop-"+filepath.Base(path))
		if err := internal.CropHeaderFooter(path, cropped, s.cfg.PDFCropTop, s.cfg.PDFCropBottom); err != nil {
			return "", err
		}
		defer os.Remove(cropped)
		return internal.ExtractText(cropped)
	}
	return internal.ExtractText(path)
}

// embedAll embeds every chunk text in fixed-size batches, preserving order
// so vector j belongs to chunk j. An optional inter-batch delay throttles
// load on shared inference hardware.
func (s *Service) embedAll(ctx context.Context, chunks []types.Chunk, log *slog.Logger) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.cfg.EmbedBatchSize {
		end := start + s.cfg.EmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
		log.Info("embedding progress", "done", len(vectors), "total", len(texts))

		if s.cfg.IngestThrottle > 0 && end < len(texts) {
			select {
			case <-time.After(s.cfg.IngestThrottle):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return vectors, nil
}
