package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"ifcmass/internal/ports"
)

// Ensure Store implements DensityStore
var _ ports.DensityStore = (*Store)(nil)

// Store keeps the density cache in a flat JSON object of name to kg/m³
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole file. A missing file is an empty cache.
func (s *Store) Load() (map[string]int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	entries := make(map[string]int, len(raw))
	for name, d := range raw {
		entries[name] = int(math.Round(d))
	}
	return entries, nil
}

// Save overwrites the file with every entry, indented by four spaces
func (s *Store) Save(entries map[string]int) error {
	if entries == nil {
		entries = map[string]int{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode densities: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
