// Package chunk splits document text into overlapping fixed-size windows.
package chunk

import (
	"fmt"
	"strings"
)

// ErrChunkParams is returned for parameter combinations that could never
// terminate or make no sense (size <= 0, overlap < 0, overlap >= size).
type ErrChunkParams struct {
	Size    int
	Overlap int
}

func (e ErrChunkParams) Error() string {
	return fmt.Sprintf("invalid chunk params: size=%d overlap=%d (need size > 0 and 0 <= overlap < size)", e.Size, e.Overlap)
}

// Split cuts text into windows of at most size runes, each consecutive pair
// sharing overlap runes. The window always advances by at least size-overlap,
// the final window ends exactly at the end of the text, and identical input
// always yields an identical sequence. Empty or whitespace-only text yields
// no chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrChunkParams{Size: size, Overlap: overlap}
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	length := len(runes)

	var chunks []string
	start := 0
	for start < length {
		end := start + size
		if end > length {
			end = length
		}
		chunks = append(chunks, string(runes[start:end]))
		if end >= length {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks, nil
}
