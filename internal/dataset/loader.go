package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/agenthands/cardmatch/internal/core/model"
)

var ErrInvalidDataset = errors.New("invalid card dataset")

// Load reads the card dump at path. The order of the returned slice is the
// order of the file and is what tie-breaking in the index relies on.
func Load(path string) ([]model.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset '%s': %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]model.Card, error) {
	var cards []model.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	seen := make(map[string]int, len(cards))
	for i, c := range cards {
		if c.Slug == "" {
			return nil, fmt.Errorf("%w: card at position %d has no slug", ErrInvalidDataset, i)
		}
		if prev, ok := seen[c.Slug]; ok {
			return nil, fmt.Errorf("%w: slug %q appears at positions %d and %d", ErrInvalidDataset, c.Slug, prev, i)
		}
		seen[c.Slug] = i
	}

	return cards, nil
}

// BySlug indexes cards by slug. Pointers refer into the given slice.
func BySlug(cards []model.Card) map[string]*model.Card {
	m := make(map[string]*model.Card, len(cards))
	for i := range cards {
		m[cards[i].Slug] = &cards[i]
	}
	return m
}
