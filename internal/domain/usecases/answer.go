// Package usecases - answer.go handles retrieval, context assembly and
// response generation for a single question.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agriassist/agriassist/internal/domain/entities"
	"github.com/agriassist/agriassist/internal/domain/ports"
)

const promptInstruction = "You are an agricultural assistant. Answer the farmer's question clearly and practically, using only the provided context."

// Answerer orchestrates retrieval, the optional weather fetch, prompt
// assembly and the language model call for one query at a time.
type Answerer struct {
	embedder       ports.Embedder
	store          ports.VectorStore
	llm            ports.LLM
	weather        ports.WeatherProvider
	topK           int
	maxPromptChars int
	logger         *zap.Logger
}

// NewAnswerer creates an Answerer with injected dependencies. The
// embedder must be the same one used at ingestion time.
func NewAnswerer(
	embedder ports.Embedder,
	store ports.VectorStore,
	llm ports.LLM,
	weather ports.WeatherProvider,
	topK, maxPromptChars int,
	logger *zap.Logger,
) *Answerer {
	if topK <= 0 {
		topK = 4
	}
	if maxPromptChars <= 0 {
		maxPromptChars = 6000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{
		embedder:       embedder,
		store:          store,
		llm:            llm,
		weather:        weather,
		topK:           topK,
		maxPromptChars: maxPromptChars,
		logger:         logger,
	}
}

// Retrieve embeds the question and returns the topK nearest chunks,
// best-first. An empty store yields an empty result.
func (a *Answerer) Retrieve(ctx context.Context, question string) ([]entities.ScoredChunk, error) {
	embedding, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := a.store.Search(ctx, embedding, a.topK)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	return results, nil
}

// Ask answers a single query. Retrieval and the weather call run
// concurrently; weather failure degrades the result, it never fails the
// query. A language model failure fails this query only.
func (a *Answerer) Ask(ctx context.Context, q entities.Query) entities.AskResult {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return entities.AskResult{Status: entities.StatusFailed, Reason: "question must not be empty"}
	}

	var (
		results  []entities.ScoredChunk
		snapshot *entities.WeatherSnapshot
		notice   string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = a.Retrieve(gctx, question)
		return err
	})
	if q.IncludeWeather {
		g.Go(func() error {
			snap, err := a.weather.Current(gctx, q.Location)
			if err != nil {
				// Degrade, don't abort: the answer proceeds without weather.
				a.logger.Warn("weather unavailable",
					zap.String("location", q.Location),
					zap.Error(err),
				)
				notice = fmt.Sprintf("Weather for %q is unavailable; the answer was generated without it.", q.Location)
				return nil
			}
			snapshot = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Error("retrieval failed", zap.Error(err))
		return entities.AskResult{Status: entities.StatusFailed, Reason: err.Error()}
	}

	prompt, included := a.buildPrompt(question, results, snapshot)

	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("language model call failed", zap.Error(err))
		return entities.AskResult{
			Status: entities.StatusFailed,
			Reason: fmt.Sprintf("language model call failed: %v", err),
		}
	}

	answer := &entities.Answer{
		Text:      text,
		Citations: citationsFor(included),
	}

	status := entities.StatusOK
	if notice != "" {
		status = entities.StatusDegraded
	}
	a.logger.Info("query answered",
		zap.String("status", status.String()),
		zap.Int("retrieved", len(results)),
		zap.Int("included", len(included)),
		zap.Int("prompt_chars", len(prompt)),
	)
	return entities.AskResult{
		Status:  status,
		Answer:  answer,
		Weather: snapshot,
		Reason:  notice,
	}
}

// buildPrompt assembles the bounded prompt. The instruction, question
// scaffold and weather section are always included; retrieved chunks
// are added nearest-first until one would push the prompt past the
// character budget, at which point it and everything ranked after it
// are dropped. The returned slice holds exactly the chunks that made it
// into the prompt, in prompt order.
func (a *Answerer) buildPrompt(question string, results []entities.ScoredChunk, weather *entities.WeatherSnapshot) (string, []entities.ScoredChunk) {
	weatherSection := formatWeather(weather)

	var sb strings.Builder
	sb.WriteString(promptInstruction)
	sb.WriteString("\n")

	fixed := sb.Len() + len(weatherSection) + len("\nQuestion: ") + len(question) + len("\n\nAnswer:")

	var included []entities.ScoredChunk
	budget := a.maxPromptChars - fixed
	for i, r := range results {
		section := fmt.Sprintf("\nContext %d [%s, page %d]:\n%s\n", i+1, r.Chunk.SourceFile, r.Chunk.Page, r.Chunk.Content)
		if len(section) > budget {
			break
		}
		sb.WriteString(section)
		budget -= len(section)
		included = append(included, r)
	}

	sb.WriteString(weatherSection)
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String(), included
}

// formatWeather renders the weather section, or nothing when weather is
// absent so the prompt carries no weather text at all.
func formatWeather(w *entities.WeatherSnapshot) string {
	if w == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nCurrent weather in %s:\n", w.Location)
	fmt.Fprintf(&sb, "Temperature: %.1f°C\n", w.TemperatureC)
	fmt.Fprintf(&sb, "Conditions: %s\n", w.Conditions)
	fmt.Fprintf(&sb, "Precipitation: %.1fmm\n", w.PrecipitationMM)
	return sb.String()
}

// citationsFor derives citations from the chunks included in the
// prompt, in prompt order, collapsing duplicate (file, page) pairs that
// chunk overlap can produce.
func citationsFor(included []entities.ScoredChunk) []entities.Citation {
	seen := make(map[entities.Citation]bool, len(included))
	citations := make([]entities.Citation, 0, len(included))
	for _, r := range included {
		c := entities.Citation{SourceFile: r.Chunk.SourceFile, Page: r.Chunk.Page}
		if seen[c] {
			continue
		}
		seen[c] = true
		citations = append(citations, c)
	}
	return citations
}
