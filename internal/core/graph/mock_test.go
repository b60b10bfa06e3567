package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type executedQuery struct {
	Query  string
	Params map[string]any
}

// MockDriver records every query and answers by the first matching key of
// Results, a substring of the query text.
type MockDriver struct {
	Executed     []executedQuery
	Results      map[string]neo4j.EagerResult
	Err          error
	IndicesBuilt bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	for key, res := range m.Results {
		if strings.Contains(query, key) {
			return res, nil
		}
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.IndicesBuilt = true
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func countResult(n int64) neo4j.EagerResult {
	return neo4j.EagerResult{
		Keys:    []string{"count"},
		Records: []*neo4j.Record{{Keys: []string{"count"}, Values: []any{n}}},
	}
}
