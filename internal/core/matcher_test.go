package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cardmatch/internal/config"
	"github.com/agenthands/cardmatch/internal/core/index"
	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/core/recognition"
	"github.com/agenthands/cardmatch/internal/llm"
)

func testCards() []model.Card {
	return []model.Card{
		{Slug: "A", Name: "Alpha"},
		{Slug: "B", Name: "Beta"},
		{Slug: "C", Name: "Gamma"},
	}
}

func testEmbedder() *MockEmbedder {
	return &MockEmbedder{Vectors: map[string][]float32{
		"Alpha": {1, 0, 0},
		"Beta":  {0.8, 0.6, 0},
		"Gamma": {0, 0, 1},
		"alpha": {1, 0.1, 0},
	}}
}

func newTestMatcher(t *testing.T, extractor *recognition.Extractor, reranker *MockReranker, cfg config.MatchConfig) (*Matcher, *MockStore) {
	t.Helper()
	st := &MockStore{}
	ix := index.New(testEmbedder(), st, nil)

	var m *Matcher
	if reranker != nil {
		m = NewMatcher(testCards(), ix, extractor, reranker, cfg, nil)
	} else {
		m = NewMatcher(testCards(), ix, extractor, nil, cfg, nil)
	}

	counter := 0
	m.UUIDGenerator = func() string {
		counter++
		return fmt.Sprintf("req-%d", counter)
	}
	require.NoError(t, m.Warm(context.Background()))
	return m, st
}

func TestMatcher_Warm(t *testing.T) {
	m, st := newTestMatcher(t, nil, nil, config.MatchConfig{})
	assert.Equal(t, 1, st.Saves)
	assert.Len(t, st.Vectors, 3)
	assert.Equal(t, defaultTopK, m.TopK)

	require.NoError(t, m.Warm(context.Background()))
	assert.Equal(t, 1, st.Saves)
}

func TestMatcher_Match(t *testing.T) {
	m, _ := newTestMatcher(t, nil, nil, config.MatchConfig{TopK: 2})

	res, err := m.Match(context.Background(), model.ExtractedQuery{Name: "alpha"})
	require.NoError(t, err)

	assert.Equal(t, "req-1", res.RequestID)
	assert.Equal(t, "A", res.Best.Card.Slug)
	assert.False(t, res.Reranked)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "B", res.Candidates[1].Card.Slug)
	assert.Greater(t, res.Best.Similarity, res.Candidates[1].Similarity)

	card, ok := m.Card("A")
	require.True(t, ok)
	assert.Same(t, card, res.Best.Card)
}

func TestMatcher_MatchRequiresWarm(t *testing.T) {
	m := NewMatcher(testCards(), index.New(testEmbedder(), &MockStore{}, nil), nil, nil, config.MatchConfig{}, nil)
	_, err := m.Match(context.Background(), model.ExtractedQuery{Name: "alpha"})
	assert.ErrorIs(t, err, ErrNotWarm)
}

func TestMatcher_MatchEmptyQuery(t *testing.T) {
	m, _ := newTestMatcher(t, nil, nil, config.MatchConfig{})
	_, err := m.Match(context.Background(), model.ExtractedQuery{})
	assert.ErrorIs(t, err, index.ErrEmptyQuery)
}

func TestMatcher_Rerank(t *testing.T) {
	reranker := &MockReranker{Order: []int{1, 0, 2}}
	m, _ := newTestMatcher(t, nil, reranker, config.MatchConfig{TopK: 3, Rerank: true})

	res, err := m.Match(context.Background(), model.ExtractedQuery{Name: "alpha"})
	require.NoError(t, err)

	assert.True(t, res.Reranked)
	assert.Equal(t, "B", res.Best.Card.Slug)
	assert.Equal(t, []string{"B", "A", "C"}, slugs(res.Candidates))
	assert.Equal(t, "alpha", reranker.LastQuery)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, reranker.LastDocs)
}

func TestMatcher_RerankFailureKeepsSimilarityOrder(t *testing.T) {
	for name, reranker := range map[string]*MockReranker{
		"error":        {Err: errors.New("timeout")},
		"short":        {Order: []int{1}},
		"out of range": {Order: []int{0, 1, 7}},
	} {
		t.Run(name, func(t *testing.T) {
			m, _ := newTestMatcher(t, nil, reranker, config.MatchConfig{TopK: 3, Rerank: true})
			res, err := m.Match(context.Background(), model.ExtractedQuery{Name: "alpha"})
			require.NoError(t, err)
			assert.False(t, res.Reranked)
			assert.Equal(t, []string{"A", "B", "C"}, slugs(res.Candidates))
		})
	}
}

func TestMatcher_RerankModelErrorNotReportedAsReranked(t *testing.T) {
	st := &MockStore{}
	ix := index.New(testEmbedder(), st, nil)
	reranker := llm.NewSimpleLLMReranker(&recognition.MockLLMClient{Err: errors.New("quota exceeded")})
	m := NewMatcher(testCards(), ix, nil, reranker, config.MatchConfig{TopK: 3, Rerank: true}, nil)
	require.NoError(t, m.Warm(context.Background()))

	res, err := m.Match(context.Background(), model.ExtractedQuery{Name: "alpha"})
	require.NoError(t, err)
	assert.False(t, res.Reranked)
	assert.Equal(t, "A", res.Best.Card.Slug)
	assert.Equal(t, []string{"A", "B", "C"}, slugs(res.Candidates))
}

func TestMatcher_Recognize(t *testing.T) {
	vision := &recognition.MockVisionClient{Response: `{"name": "alpha", "cost": "3"}`}
	extractor := recognition.NewExtractor(nil, vision, nil, config.RecognitionPrompts{})
	m, _ := newTestMatcher(t, extractor, nil, config.MatchConfig{})

	rec, err := m.Recognize(context.Background(), []byte{1, 2, 3}, "image/png", "")
	require.NoError(t, err)

	assert.Equal(t, recognition.ModeVision, rec.Mode)
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, "alpha", rec.Extracted.Name)
	require.NotNil(t, rec.Extracted.Cost)
	assert.Equal(t, 3, *rec.Extracted.Cost)
	require.NotNil(t, rec.Result)
	assert.Equal(t, "req-1", rec.Result.RequestID)
	assert.Equal(t, "A", rec.Result.Best.Card.Slug)
}

func TestMatcher_RecognizeNothingRead(t *testing.T) {
	vision := &recognition.MockVisionClient{Response: `{"name": "", "life": 5000}`}
	extractor := recognition.NewExtractor(nil, vision, nil, config.RecognitionPrompts{})
	m, _ := newTestMatcher(t, extractor, nil, config.MatchConfig{})

	rec, err := m.Recognize(context.Background(), []byte{1}, "image/png", recognition.ModeVision)
	assert.ErrorIs(t, err, index.ErrEmptyQuery)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Result)
	require.NotNil(t, rec.Extracted.Life)
	assert.Equal(t, 5000, *rec.Extracted.Life)
}

func TestMatcher_RecognizeWithoutExtractor(t *testing.T) {
	m, _ := newTestMatcher(t, nil, nil, config.MatchConfig{})
	_, err := m.Recognize(context.Background(), nil, "image/png", "")
	assert.ErrorIs(t, err, ErrNoExtractor)
}

func slugs(cs []model.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Card.Slug
	}
	return out
}
