// Package store persists the single chunk collection and answers
// nearest-neighbour queries over it.
package store

import (
	"context"
	"fmt"

	"rag/config"
	"rag/types"
)

// VectorStorer is the vector index capability. One logical collection exists
// at a time; re-ingestion replaces it wholesale via Clear followed by Add.
type VectorStorer interface {
	// Add appends records in bulk. Every record needs a collection-unique id
	// and a vector of the collection's dimension; duplicates are an error,
	// never a silent overwrite. The write is durable before Add returns.
	Add(ctx context.Context, records []types.IndexRecord) error

	// Clear destroys the collection and recreates it empty. Idempotent and
	// safe to call when no collection exists yet.
	Clear(ctx context.Context) error

	// Query returns the k records nearest to vector by cosine distance,
	// nearest-first. Fewer than k records means all of them; an empty
	// collection yields an empty result, not an error.
	Query(ctx context.Context, vector []float32, k int) ([]types.Match, error)

	Close() error
}

// New builds the vector store selected by VECTOR_BACKEND.
func New(ctx context.Context, cfg *config.Config) (VectorStorer, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendSqlite:
		return NewSqliteStore(cfg.IndexDir)
	case config.VectorBackendPostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}

// DuplicateIDError reports an id collision inside one collection.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate record id %q in collection %s", e.ID, types.Collection)
}

// validateRecords checks the Add preconditions shared by all backends: no
// empty ids, no empty vectors, and a dimension uniform across the batch and
// matching the collection's existing dimension (when it already has one).
func validateRecords(records []types.IndexRecord, existingDim int) error {
	dim := existingDim
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			return fmt.Errorf("record %d has an empty id", i)
		}
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %q has an empty embedding", r.ID)
		}
		if dim == 0 {
			dim = len(r.Embedding)
		}
		if len(r.Embedding) != dim {
			return fmt.Errorf("record %q has dimension %d, collection expects %d", r.ID, len(r.Embedding), dim)
		}
	}
	return nil
}
