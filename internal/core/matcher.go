package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/agenthands/cardmatch/internal/config"
	"github.com/agenthands/cardmatch/internal/core/index"
	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/core/recognition"
	"github.com/agenthands/cardmatch/internal/dataset"
	"github.com/agenthands/cardmatch/internal/llm"
	"github.com/agenthands/cardmatch/internal/logger"
)

const defaultTopK = 5

var (
	ErrNotWarm     = errors.New("embedding cache not built; call Warm first")
	ErrNoExtractor = errors.New("recognition is not configured")
)

// Matcher ties the dataset, its embedding index and the extraction side
// together. Cards and the cache are read-only once Warm returns, so a warm
// Matcher is safe for concurrent use.
type Matcher struct {
	Index     *index.Index
	Extractor *recognition.Extractor
	Reranker  llm.RerankerClient
	Logger    *logger.Logger

	TopK   int
	Rerank bool

	UUIDGenerator func() string

	cards  []model.Card
	bySlug map[string]*model.Card
	cache  *index.Cache
}

func NewMatcher(cards []model.Card, ix *index.Index, extractor *recognition.Extractor, reranker llm.RerankerClient, cfg config.MatchConfig, log *logger.Logger) *Matcher {
	if log == nil {
		log = logger.Nop()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Matcher{
		Index:         ix,
		Extractor:     extractor,
		Reranker:      reranker,
		Logger:        log,
		TopK:          topK,
		Rerank:        cfg.Rerank,
		UUIDGenerator: uuid.NewString,
		cards:         cards,
		bySlug:        dataset.BySlug(cards),
	}
}

// Warm builds or loads the embedding cache for every card.
func (m *Matcher) Warm(ctx context.Context) error {
	cache, err := m.Index.BuildOrLoad(ctx, m.cards)
	if err != nil {
		return fmt.Errorf("failed to build embedding cache: %w", err)
	}
	m.cache = cache
	m.Logger.Info("matcher ready", "cards", len(m.cards), "embeddings", cache.Len(), "dimension", cache.Dimension())
	return nil
}

// Cache is nil until Warm succeeds.
func (m *Matcher) Cache() *index.Cache {
	return m.cache
}

func (m *Matcher) Cards() []model.Card {
	return m.cards
}

func (m *Matcher) Card(slug string) (*model.Card, bool) {
	c, ok := m.bySlug[slug]
	return c, ok
}

// Match returns the closest card to q and the best TopK candidates. With
// Rerank set the candidates are reordered by the LLM and Best follows.
func (m *Matcher) Match(ctx context.Context, q model.ExtractedQuery) (*model.MatchResult, error) {
	if m.cache == nil {
		return nil, ErrNotWarm
	}

	matches, err := m.Index.TopK(ctx, q, m.cards, m.cache, m.TopK)
	if err != nil {
		return nil, err
	}

	result := &model.MatchResult{
		RequestID:  m.UUIDGenerator(),
		Query:      q,
		Candidates: make([]model.Candidate, len(matches)),
	}
	for i, match := range matches {
		result.Candidates[i] = model.Candidate{Card: match.Card, Similarity: match.Similarity}
	}

	if m.Rerank && m.Reranker != nil && len(result.Candidates) > 1 {
		result.Candidates, result.Reranked = m.rerank(ctx, q, result.Candidates)
	}
	result.Best = result.Candidates[0]

	m.Logger.Debug("matched query",
		"request_id", result.RequestID,
		"slug", result.Best.Card.Slug,
		"similarity", result.Best.Similarity,
		"reranked", result.Reranked)
	return result, nil
}

func (m *Matcher) rerank(ctx context.Context, q model.ExtractedQuery, candidates []model.Candidate) ([]model.Candidate, bool) {
	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = index.CardText(*c.Card)
	}

	order, err := m.Reranker.Rank(ctx, index.QueryText(q), docs)
	if err != nil || len(order) != len(candidates) {
		m.Logger.Warn("rerank skipped", "error", err, "indices", len(order))
		return candidates, false
	}

	reordered := make([]model.Candidate, 0, len(candidates))
	for _, i := range order {
		if i < 0 || i >= len(candidates) {
			m.Logger.Warn("rerank skipped", "invalid_index", i)
			return candidates, false
		}
		reordered = append(reordered, candidates[i])
	}
	return reordered, true
}

// Recognize extracts card fields from an image and matches them. When the
// extraction yields nothing to match on, the Recognition is still returned
// with a nil Result together with index.ErrEmptyQuery, so callers can report
// what was read.
func (m *Matcher) Recognize(ctx context.Context, image []byte, mimeType, mode string) (*model.Recognition, error) {
	if m.Extractor == nil {
		return nil, ErrNoExtractor
	}
	if mode == "" {
		mode = recognition.ModeVision
	}

	extracted, rawText, err := m.Extractor.Extract(ctx, mode, image, mimeType)
	if err != nil {
		return nil, err
	}

	rec := &model.Recognition{
		RequestID: m.UUIDGenerator(),
		Mode:      mode,
		RawText:   rawText,
		Extracted: extracted,
	}

	result, err := m.Match(ctx, extracted.Query())
	if err != nil {
		return rec, err
	}
	result.RequestID = rec.RequestID
	rec.Result = result
	return rec, nil
}
