// Package refstore holds the agronomic crop reference table: tolerance
// ranges and market baselines for every crop the engine may recommend.
// The table is loaded once at startup and never mutated afterwards, so
// concurrent reads are always safe.
package refstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	_ "embed"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
)

//go:embed crops.json
var seedData []byte

// Store is the immutable crop reference lookup.
type Store struct {
	byID    map[int64]domain.CropReference
	ordered []domain.CropReference
}

// Load builds a store from the embedded seed data.
func Load() (*Store, error) {
	return newStore(seedData)
}

// LoadFile builds a store from an operator-supplied reference file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crop reference file: %w", err)
	}
	return newStore(data)
}

func newStore(data []byte) (*Store, error) {
	var crops []domain.CropReference
	if err := json.Unmarshal(data, &crops); err != nil {
		return nil, fmt.Errorf("parse crop reference data: %w", err)
	}

	s := &Store{
		byID:    make(map[int64]domain.CropReference, len(crops)),
		ordered: make([]domain.CropReference, 0, len(crops)),
	}
	for _, c := range crops {
		if _, exists := s.byID[c.ID]; exists {
			return nil, fmt.Errorf("duplicate crop id %d in reference data", c.ID)
		}
		if c.Names["en"] == "" {
			return nil, fmt.Errorf("crop %d missing English name", c.ID)
		}
		s.byID[c.ID] = c
		s.ordered = append(s.ordered, c)
	}

	sort.Slice(s.ordered, func(i, j int) bool { return s.ordered[i].ID < s.ordered[j].ID })
	return s, nil
}

// Lookup returns the reference record for a crop id.
func (s *Store) Lookup(id int64) (domain.CropReference, error) {
	c, ok := s.byID[id]
	if !ok {
		return domain.CropReference{}, fmt.Errorf("crop %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// AllCandidates returns every crop reference in ascending id order. The
// returned slice is a copy; callers may not reach the store's internals.
func (s *Store) AllCandidates() []domain.CropReference {
	out := make([]domain.CropReference, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len reports the number of crops in the table.
func (s *Store) Len() int {
	return len(s.ordered)
}
