package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag/config"
	"rag/model"
	"rag/store"
	"rag/types"
)

type fakeGenerator struct {
	gotSystem string
	gotPrompt string
	gotOpts   model.GenerateOptions
	answer    string
	err       error
}

func (f *fakeGenerator) Generate(ctx context.Context, system, prompt string, opts model.GenerateOptions) (string, error) {
	f.gotSystem = system
	f.gotPrompt = prompt
	f.gotOpts = opts
	return f.answer, f.err
}

func agentConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		IndexDir:        t.TempDir(),
		TopK:            3,
		ContextMaxChars: 8000,
		Temperature:     0.1,
		MaxTokens:       600,
	}
}

func seededStore(t *testing.T, cfg *config.Config, embedder model.Embedder, texts ...string) *store.SqliteStore {
	t.Helper()
	s, err := store.NewSqliteStore(cfg.IndexDir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	if len(texts) == 0 {
		return s
	}
	vecs, err := embedder.Embed(context.Background(), texts)
	require.NoError(t, err)
	records := make([]types.IndexRecord, len(texts))
	for i, text := range texts {
		records[i] = types.IndexRecord{
			ID:         types.Chunk{Source: "doc.txt", Index: i}.ID(),
			Text:       text,
			Source:     "doc.txt",
			ChunkIndex: i,
			Embedding:  vecs[i],
		}
	}
	require.NoError(t, s.Add(context.Background(), records))
	return s
}

func TestAskRetrievesAndGenerates(t *testing.T) {
	cfg := agentConfig(t)
	embedder := model.NewMockEmbedder(16)
	s := seededStore(t, cfg, embedder,
		"The sky is blue because of Rayleigh scattering.",
		"Grass is green because of chlorophyll.")

	gen := &fakeGenerator{answer: "  Because of Rayleigh scattering.\n"}
	a := New(cfg, embedder, s, gen)

	// The question matching a chunk verbatim retrieves that chunk first.
	resp, err := a.Ask(context.Background(), "The sky is blue because of Rayleigh scattering.", 0)
	require.NoError(t, err)

	assert.Equal(t, "Because of Rayleigh scattering.", resp.Answer)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "doc.txt-0", resp.Sources[0].ID)
	assert.InDelta(t, 0, resp.Sources[0].Distance, 1e-6)

	// The rendered prompt carries the question and the retrieved chunk
	// verbatim, tagged with its origin.
	assert.Contains(t, gen.gotPrompt, "The sky is blue because of Rayleigh scattering.")
	assert.Contains(t, gen.gotPrompt, "[doc.txt #0] The sky is blue because of Rayleigh scattering.")
	assert.NotEmpty(t, gen.gotSystem)
	assert.Equal(t, 0.1, gen.gotOpts.Temperature)
	assert.Equal(t, 600, gen.gotOpts.MaxTokens)
}

func TestAskEmptyCollection(t *testing.T) {
	cfg := agentConfig(t)
	embedder := model.NewMockEmbedder(16)
	s := seededStore(t, cfg, embedder)

	gen := &fakeGenerator{answer: "I have no information about that."}
	a := New(cfg, embedder, s, gen)

	resp, err := a.Ask(context.Background(), "anything at all?", 0)
	require.NoError(t, err)

	// No matches is not an error; the sentinel reaches the generator.
	assert.Contains(t, gen.gotPrompt, NoContextSentinel)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "I have no information about that.", resp.Answer)
}

func TestAskGenerateFailure(t *testing.T) {
	cfg := agentConfig(t)
	embedder := model.NewMockEmbedder(16)
	s := seededStore(t, cfg, embedder, "some indexed chunk")

	cause := errors.New("generation backend down")
	a := New(cfg, embedder, s, &fakeGenerator{err: cause})

	_, err := a.Ask(context.Background(), "question", 0)
	require.Error(t, err)

	var step *StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, StepGenerate, step.Step)
	assert.ErrorIs(t, err, cause)
}

func TestAskEmbedFailure(t *testing.T) {
	cfg := agentConfig(t)
	s := seededStore(t, cfg, model.NewMockEmbedder(16))

	a := New(cfg, brokenEmbedder{}, s, &fakeGenerator{})
	_, err := a.Ask(context.Background(), "question", 0)
	require.Error(t, err)

	var step *StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, StepEmbedQuery, step.Step)
}

type brokenEmbedder struct{}

func (brokenEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("no embedder")
}

func TestAskHonorsTopK(t *testing.T) {
	cfg := agentConfig(t)
	embedder := model.NewMockEmbedder(16)
	s := seededStore(t, cfg, embedder, "one", "two", "three", "four", "five")

	a := New(cfg, embedder, s, &fakeGenerator{answer: "ok"})

	resp, err := a.Ask(context.Background(), "one", 2)
	require.NoError(t, err)
	assert.Len(t, resp.Sources, 2)

	resp, err = a.Ask(context.Background(), "one", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Sources, cfg.TopK)
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, NoContextSentinel, FormatContext(nil))

	out := FormatContext([]types.Match{
		{Source: "a.txt", ChunkIndex: 0, Text: "first"},
		{Source: "b.md", ChunkIndex: 3, Text: "second"},
	})
	assert.Equal(t, "[a.txt #0] first\n\n[b.md #3] second", out)
}

func TestTruncate(t *testing.T) {
	short := "fits fine"
	assert.Equal(t, short, Truncate(short, 100))
	assert.Equal(t, short, Truncate(short, len(short)))

	long := strings.Repeat("x", 50)
	got := Truncate(long, 20)
	assert.Equal(t, long[:20]+TruncationMarker, got)
	assert.True(t, strings.HasSuffix(got, TruncationMarker))
}

func TestTruncateMultibyteText(t *testing.T) {
	long := strings.Repeat("п", 100)

	// The budget counts characters, not bytes: 80 two-byte runes survive a
	// budget of 80, and the cut never lands mid-rune.
	got := Truncate(long, 80)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("п", 80)+TruncationMarker, got)
	assert.Equal(t, 80, len([]rune(strings.TrimSuffix(got, TruncationMarker))))

	// Text within the character budget passes through untouched even though
	// its byte length exceeds it.
	assert.Equal(t, long, Truncate(long, 100))
}

func TestTruncateBoundsContextBlock(t *testing.T) {
	cfg := agentConfig(t)
	cfg.ContextMaxChars = 64
	embedder := model.NewMockEmbedder(16)
	s := seededStore(t, cfg, embedder, strings.Repeat("very long chunk text. ", 20))

	gen := &fakeGenerator{answer: "ok"}
	a := New(cfg, embedder, s, gen)

	_, err := a.Ask(context.Background(), "question", 0)
	require.NoError(t, err)
	assert.Contains(t, gen.gotPrompt, TruncationMarker)
}
