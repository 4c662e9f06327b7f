// Package agent answers a question from the indexed knowledge base:
// embed the question, retrieve the nearest chunks, build a bounded context
// block and delegate the final wording to the generation model.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"rag/config"
	"rag/model"
	"rag/store"
	"rag/types"
)

// Pipeline step names carried by StepError.
const (
	StepEmbedQuery = "embed_query"
	StepRetrieve   = "retrieve"
	StepGenerate   = "generate"
)

// StepError names the pipeline step that failed along with the cause. No
// partial answer accompanies it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("answer pipeline failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Agent is stateless across requests; every Ask runs the full
// embed -> retrieve -> format -> generate sequence.
type Agent struct {
	logger    *slog.Logger
	cfg       *config.Config
	embedder  model.Embedder
	store     store.VectorStorer
	generator model.Generator
	encoding  *tiktoken.Tiktoken
}

func New(cfg *config.Config, embedder model.Embedder, storer store.VectorStorer, generator model.Generator) *Agent {
	// The encoding is an estimate for capacity logging only; when it cannot
	// be resolved (offline) token counts are simply not logged.
	encoding, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		encoding = nil
	}
	return &Agent{
		logger:    slog.Default(),
		cfg:       cfg,
		embedder:  embedder,
		store:     storer,
		generator: generator,
		encoding:  encoding,
	}
}

// Ask answers the question from the collection. topK <= 0 falls back to the
// configured default.
func (a *Agent) Ask(ctx context.Context, question string, topK int) (*types.AskResponse, error) {
	if topK <= 0 {
		topK = a.cfg.TopK
	}

	queryVec, err := model.EmbedOne(ctx, a.embedder, question)
	if err != nil {
		return nil, &StepError{Step: StepEmbedQuery, Err: err}
	}

	matches, err := a.store.Query(ctx, queryVec, topK)
	if err != nil {
		return nil, &StepError{Step: StepRetrieve, Err: err}
	}

	contextBlock := Truncate(FormatContext(matches), a.cfg.ContextMaxChars)
	prompt := fmt.Sprintf(userPromptTemplate, question, contextBlock)

	if a.encoding != nil {
		count := len(a.encoding.Encode(systemPrompt+prompt, nil, nil))
		a.logger.Info("prompt rendered", "matches", len(matches), "context_chars", len(contextBlock), "prompt_tokens", count)
	}

	answer, err := a.generator.Generate(ctx, systemPrompt, prompt, model.GenerateOptions{
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, &StepError{Step: StepGenerate, Err: err}
	}

	sources := make([]types.Source, len(matches))
	for i, m := range matches {
		sources[i] = types.Source{
			ID:         m.ID,
			Source:     m.Source,
			ChunkIndex: m.ChunkIndex,
			Distance:   m.Distance,
		}
	}
	return &types.AskResponse{Answer: strings.TrimSpace(answer), Sources: sources}, nil
}

// FormatContext renders matches nearest-first as "[source #index] text"
// lines separated by blank lines. No matches yields the sentinel literal,
// never an empty string.
func FormatContext(matches []types.Match) string {
	if len(matches) == 0 {
		return NoContextSentinel
	}
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("[%s #%d] %s", m.Source, m.ChunkIndex, m.Text)
	}
	return strings.Join(lines, "\n\n")
}

// Truncate cuts text to at most maxChars characters, appending the
// truncation marker when anything was lost. The budget counts runes, not
// bytes, so multibyte context is never cut mid-character.
func Truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + TruncationMarker
}
