package index

import (
	"fmt"
	"sort"
)

// Cache maps card slugs to embedding vectors. All vectors share one length,
// fixed by the first vector stored.
type Cache struct {
	vectors   map[string][]float32
	dimension int
}

func NewCache() *Cache {
	return &Cache{vectors: make(map[string][]float32)}
}

// CacheFrom wraps vectors loaded from a store, checking they agree on length.
func CacheFrom(vectors map[string][]float32) (*Cache, error) {
	c := NewCache()
	for _, slug := range sortedKeys(vectors) {
		if err := c.Set(slug, vectors[slug]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Set stores vec for slug. An empty vector is rejected, and so is any
// vector whose length differs from the first one stored.
func (c *Cache) Set(slug string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: %s has an empty vector", ErrDimensionMismatch, slug)
	}
	if c.dimension == 0 {
		c.dimension = len(vec)
	} else if len(vec) != c.dimension {
		return fmt.Errorf("%w: %s has %d values, cache holds %d", ErrDimensionMismatch, slug, len(vec), c.dimension)
	}
	c.vectors[slug] = vec
	return nil
}

func (c *Cache) Get(slug string) ([]float32, bool) {
	v, ok := c.vectors[slug]
	return v, ok
}

func (c *Cache) Has(slug string) bool {
	_, ok := c.vectors[slug]
	return ok
}

func (c *Cache) Len() int {
	return len(c.vectors)
}

// Dimension is 0 until the first vector is stored.
func (c *Cache) Dimension() int {
	return c.dimension
}

func (c *Cache) Slugs() []string {
	return sortedKeys(c.vectors)
}

// Vectors returns a shallow copy of the mapping for persistence.
func (c *Cache) Vectors() map[string][]float32 {
	out := make(map[string][]float32, len(c.vectors))
	for k, v := range c.vectors {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string][]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
