package llm

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

var (
	ErrEmptyInput = errors.New("cannot embed empty text")
	ErrZeroVector = errors.New("text hashed to a zero vector")
)

// HashingEmbedder is a local, dependency-free embedder: each lower-cased
// token is hashed into one of Dimensions buckets with a hash-derived sign,
// and the result is L2-normalised. It is deterministic for a given
// dimension count, which makes it usable offline and in tests.
type HashingEmbedder struct {
	Dimensions int
}

func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashingEmbedder{Dimensions: dimensions}
}

func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}

	acc := make([]float64, h.Dimensions)
	for _, tok := range tokens {
		hasher := fnv.New64a()
		hasher.Write([]byte(tok))
		sum := hasher.Sum64()

		idx := int(sum % uint64(h.Dimensions))
		if sum>>63 == 1 {
			acc[idx]--
		} else {
			acc[idx]++
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	if norm == 0 {
		// every token cancelled out
		return nil, ErrZeroVector
	}
	vec := make([]float32, h.Dimensions)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
