package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONFileStore keeps the cache as a single JSON object of slug -> vector.
// encoding/json writes map keys in sorted order, so saving the same mapping
// twice gives the same bytes.
type JSONFileStore struct {
	Path string
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{Path: path}
}

func (s *JSONFileStore) Load(ctx context.Context) (map[string][]float32, bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read embedding cache '%s': %w", s.Path, err)
	}

	vectors := make(map[string][]float32)
	if len(bytes.TrimSpace(data)) == 0 {
		return vectors, true, nil
	}
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, false, fmt.Errorf("failed to parse embedding cache '%s': %w", s.Path, err)
	}
	return vectors, true, nil
}

// Save writes to a temporary file next to Path and renames it into place.
func (s *JSONFileStore) Save(ctx context.Context, vectors map[string][]float32) error {
	data, err := json.Marshal(vectors)
	if err != nil {
		return fmt.Errorf("failed to encode embedding cache: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write embedding cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write embedding cache: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to replace embedding cache '%s': %w", s.Path, err)
	}
	return nil
}
