package index

import (
	"context"
	"fmt"
)

// MockEmbedder returns fixed vectors by exact text and records every call.
type MockEmbedder struct {
	Vectors map[string][]float32
	Calls   []string
	Err     error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls = append(m.Calls, text)
	if m.Err != nil {
		return nil, m.Err
	}
	v, ok := m.Vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector stubbed for %q", text)
	}
	return v, nil
}

func intPtr(v int) *int {
	return &v
}
