package dataset

import (
	"errors"
	"sync"
)

// ErrNoDataset is returned when an analysis is requested before any dataset
// has been loaded.
var ErrNoDataset = errors.New("no dataset loaded")

// Store is a single-slot holder for the current working dataset. Writers
// replace the slot wholesale; readers take a snapshot pointer, so a long
// analysis keeps working against the dataset it started with even if an
// upload replaces the slot mid-flight.
type Store struct {
	mu      sync.RWMutex
	current *Dataset
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs ds as the current dataset. Callers must only pass a fully
// built dataset: a failed ingestion never reaches Replace, so the previous
// dataset survives the failure untouched.
func (s *Store) Replace(ds *Dataset) {
	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()
}

// Snapshot returns the current dataset, or ErrNoDataset if none is loaded.
// The returned dataset is immutable; callers must not modify it.
func (s *Store) Snapshot() (*Dataset, error) {
	s.mu.RLock()
	ds := s.current
	s.mu.RUnlock()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return ds, nil
}
