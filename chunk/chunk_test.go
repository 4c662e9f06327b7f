package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCoversWholeText(t *testing.T) {
	text := strings.Repeat("abcdefghij", 25)

	chunks, err := Split(text, 80, 20)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Chunks reassemble the text exactly: the first whole, then each
	// follower minus its overlapping prefix.
	var b strings.Builder
	b.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		b.WriteString(c[20:])
	}
	assert.Equal(t, text, b.String())

	// The final chunk ends exactly at the end of the text.
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestSplitDeterministic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("pack my box. ", 40)

	first, err := Split(text, 64, 16)
	require.NoError(t, err)
	second, err := Split(text, 64, 16)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitOverlappingTails(t *testing.T) {
	// Ingestion scenario: one small document, size 20, overlap 5.
	text := "The sky is blue. Grass is green."

	chunks, err := Split(text, 20, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "The sky is blue. Gra", chunks[0])
	assert.Equal(t, "e. Grass is green.", chunks[1])
	// Consecutive chunks share a 5-character window.
	assert.Equal(t, chunks[0][len(chunks[0])-5:], chunks[1][:5])
}

func TestSplitShortText(t *testing.T) {
	chunks, err := Split("tiny", 100, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, chunks)
}

func TestSplitEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t \n"} {
		chunks, err := Split(text, 10, 2)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestSplitInvalidParams(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 10, 10},
		{"overlap above size", 10, 15},
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split("some text", tc.size, tc.overlap)
			require.Error(t, err)
			assert.ErrorAs(t, err, &ErrChunkParams{})
		})
	}
}

func TestSplitMultibyteText(t *testing.T) {
	text := strings.Repeat("приклад тексту українською мовою ", 10)

	chunks, err := Split(text, 50, 10)
	require.NoError(t, err)
	for _, c := range chunks {
		// Windows are cut on rune boundaries, never mid-character.
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len([]rune(c)), 50)
	}
}
