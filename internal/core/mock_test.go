package core

import (
	"context"
	"fmt"
)

// MockEmbedder maps exact text to a vector; unknown text is an error.
type MockEmbedder struct {
	Vectors map[string][]float32
	Err     error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	v, ok := m.Vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

type MockReranker struct {
	Order     []int
	Err       error
	LastQuery string
	LastDocs  []string
}

func (m *MockReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	m.LastQuery = query
	m.LastDocs = docs
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

type MockStore struct {
	Vectors map[string][]float32
	Saves   int
}

func (m *MockStore) Load(ctx context.Context) (map[string][]float32, bool, error) {
	return m.Vectors, m.Vectors != nil, nil
}

func (m *MockStore) Save(ctx context.Context, vectors map[string][]float32) error {
	m.Vectors = vectors
	m.Saves++
	return nil
}
