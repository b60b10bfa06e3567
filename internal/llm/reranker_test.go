package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	mock := &MockLLM{Response: "Ranking: 2, 0, 1"}
	r := NewSimpleLLMReranker(mock)

	order, err := r.Rank(context.Background(), "Nami Straw Hat Crew", []string{"Zoro", "Luffy", "Nami"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)
	assert.Contains(t, mock.LastPrompt, "[2] Nami")
	assert.Contains(t, mock.LastPrompt, "Nami Straw Hat Crew")
}

func TestRank_RepairsModelOutput(t *testing.T) {
	mock := &MockLLM{Response: "3, 3, 7, 1"}
	r := NewSimpleLLMReranker(mock)

	order, err := r.Rank(context.Background(), "q", []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0, 2}, order)
}

func TestRank_ReturnsModelError(t *testing.T) {
	quota := errors.New("quota exceeded")
	r := NewSimpleLLMReranker(&MockLLM{Err: quota})

	order, err := r.Rank(context.Background(), "q", []string{"a", "b", "c"})
	assert.ErrorIs(t, err, quota)
	assert.Nil(t, order)
}

func TestRank_TruncatesOnRuneBoundary(t *testing.T) {
	mock := &MockLLM{Response: "1, 0"}
	r := NewSimpleLLMReranker(mock)

	long := strings.Repeat("ab", 149) + "ゾロ" + "tail"
	_, err := r.Rank(context.Background(), "q", []string{long, "short"})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(mock.LastPrompt))
	assert.Contains(t, mock.LastPrompt, "[0] "+strings.Repeat("ab", 149)+"ゾロ...")
	assert.NotContains(t, mock.LastPrompt, "tail")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ゾロ...", truncate("ゾロ十", 2))
}

func TestRank_Trivial(t *testing.T) {
	r := NewSimpleLLMReranker(&MockLLM{})

	order, err := r.Rank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Nil(t, order)

	order, err = r.Rank(context.Background(), "q", []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, order)
}

func TestParseIndices(t *testing.T) {
	assert.Equal(t, []int{4, 0, 12}, parseIndices("4,0 and then 12"))
	assert.Nil(t, parseIndices("none"))
}
