package types

import (
	"fmt"
	"time"
)

// Collection is the fixed logical name of the single persisted collection.
const Collection = "kb_main"

// Chunk is one overlapping text window cut from a source document.
type Chunk struct {
	Source string
	Index  int
	Text   string
}

// ID returns the collection-unique chunk identifier: "<source>-<index>".
func (c Chunk) ID() string {
	return fmt.Sprintf("%s-%d", c.Source, c.Index)
}

// IndexRecord is the persisted tuple the vector store owns.
type IndexRecord struct {
	ID         string
	Text       string
	Source     string
	ChunkIndex int
	Embedding  []float32
}

// Match is one query result. Nearest-first ordering is the store's contract.
type Match struct {
	ID         string
	Text       string
	Source     string
	ChunkIndex int
	Distance   float64
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	FilesProcessed int       `json:"files_processed"`
	ChunksIndexed  int       `json:"chunks_indexed"`
	FilesSkipped   int       `json:"files_skipped"`
	StartedAt      time.Time `json:"started_at"`
	Duration       string    `json:"duration"`
}
