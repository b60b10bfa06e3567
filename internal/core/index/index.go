// Package index maintains the card embedding cache and answers "which known
// card is closest to this extracted description".
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/dataset"
	"github.com/agenthands/cardmatch/internal/llm"
	"github.com/agenthands/cardmatch/internal/logger"
	"github.com/agenthands/cardmatch/internal/store"
)

var (
	ErrEmptyText         = errors.New("card has no text to embed")
	ErrEmptyQuery        = errors.New("query has no non-empty field")
	ErrEmptyDataset      = errors.New("dataset has no cards")
	ErrMissingEmbedding  = errors.New("card has no cached embedding")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEncode            = errors.New("failed to embed text")
)

// Match pairs a card with its cosine similarity to a query.
type Match struct {
	Card       *model.Card
	Similarity float64
}

type Index struct {
	Embedder llm.EmbedderClient
	Store    store.CacheStore
	Logger   *logger.Logger
}

func New(embedder llm.EmbedderClient, cacheStore store.CacheStore, log *logger.Logger) *Index {
	if log == nil {
		log = logger.Nop()
	}
	return &Index{
		Embedder: embedder,
		Store:    cacheStore,
		Logger:   log,
	}
}

// BuildOrLoad returns a cache holding a vector for every card.
//
// Whatever the store already has is kept as is: entries are never checked
// against the current card content, and entries for cards no longer in the
// dataset are retained. Only cards without an entry are embedded, and the
// store is written only when at least one entry was added, so a complete
// cache is never rewritten.
func (ix *Index) BuildOrLoad(ctx context.Context, cards []model.Card) (*Cache, error) {
	vectors, found, err := ix.Store.Load(ctx)
	if err != nil {
		return nil, err
	}

	cache, err := CacheFrom(vectors)
	if err != nil {
		return nil, err
	}

	added := 0
	for i := range cards {
		card := &cards[i]
		if cache.Has(card.Slug) {
			continue
		}

		vec, err := ix.embedCard(ctx, card)
		if err != nil {
			return nil, err
		}
		if err := cache.Set(card.Slug, vec); err != nil {
			return nil, err
		}
		added++
	}

	if added == 0 && found {
		ix.Logger.Debug("embedding cache complete", "entries", cache.Len())
		return cache, nil
	}

	if err := ix.Store.Save(ctx, cache.Vectors()); err != nil {
		return nil, err
	}
	ix.Logger.Info("embedding cache updated", "added", added, "entries", cache.Len())

	return cache, nil
}

func (ix *Index) embedCard(ctx context.Context, card *model.Card) ([]float32, error) {
	text := CardText(*card)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyText, card.Slug)
	}
	vec, err := ix.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrEncode, card.Slug, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w for %s: empty vector", ErrEncode, card.Slug)
	}
	return vec, nil
}

// EmbedQuery returns the vector for a query's derived text.
func (ix *Index) EmbedQuery(ctx context.Context, q model.ExtractedQuery) ([]float32, error) {
	text := QueryText(q)
	if q.IsEmpty() || text == "" {
		return nil, ErrEmptyQuery
	}
	vec, err := ix.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w for query: %w", ErrEncode, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w for query: empty vector", ErrEncode)
	}
	return vec, nil
}

// FindClosest returns the card most similar to q. Cards are visited in
// dataset order and only a strictly greater similarity replaces the current
// best, so the earliest card wins a tie.
func (ix *Index) FindClosest(ctx context.Context, q model.ExtractedQuery, cards []model.Card, cache *Cache) (Match, error) {
	qv, err := ix.EmbedQuery(ctx, q)
	if err != nil {
		return Match{}, err
	}

	var best Match
	for i := range cards {
		sim, err := score(qv, &cards[i], cache)
		if err != nil {
			return Match{}, err
		}
		if best.Card == nil || sim > best.Similarity {
			best = Match{Card: &cards[i], Similarity: sim}
		}
	}

	if best.Card == nil {
		return Match{}, ErrEmptyDataset
	}
	return best, nil
}

// TopK ranks every card against q and returns the k best, highest first.
// Equal scores keep dataset order. k <= 0 returns all cards.
func (ix *Index) TopK(ctx context.Context, q model.ExtractedQuery, cards []model.Card, cache *Cache, k int) ([]Match, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyDataset
	}

	qv, err := ix.EmbedQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(cards))
	for i := range cards {
		sim, err := score(qv, &cards[i], cache)
		if err != nil {
			return nil, err
		}
		matches[i] = Match{Card: &cards[i], Similarity: sim}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func score(qv []float32, card *model.Card, cache *Cache) (float64, error) {
	cv, ok := cache.Get(card.Slug)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingEmbedding, card.Slug)
	}
	if len(cv) != len(qv) {
		return 0, fmt.Errorf("%w: query has %d values, %s has %d", ErrDimensionMismatch, len(qv), card.Slug, len(cv))
	}
	return CosineSimilarity(qv, cv), nil
}

// BuildOrLoadCache loads the dataset at datasetPath and builds or loads the
// JSON cache file at cachePath with embedder.
func BuildOrLoadCache(ctx context.Context, embedder llm.EmbedderClient, datasetPath, cachePath string) (*Cache, error) {
	cards, err := dataset.Load(datasetPath)
	if err != nil {
		return nil, err
	}
	return New(embedder, store.NewJSONFileStore(cachePath), nil).BuildOrLoad(ctx, cards)
}
