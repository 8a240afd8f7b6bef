// Package metadata holds the provenance records that parallel index rows.
package metadata

import (
	"fmt"
	"sync"

	"semsearch/internal/domain"
)

// Store is an append-only sequence of records; record i describes index row i.
type Store struct {
	mu      sync.RWMutex
	records []domain.MetadataRecord
}

func New() *Store { return &Store{} }

// FromRecords wraps records loaded from disk.
func FromRecords(records []domain.MetadataRecord) *Store {
	return &Store{records: records}
}

// Append adds rec at position Len().
func (s *Store) Append(rec domain.MetadataRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Get resolves a row id. An id outside the store means the index and the
// metadata have diverged, so it is reported as domain.ErrCorruptIndex.
func (s *Store) Get(rowID int) (domain.MetadataRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rowID < 0 || rowID >= len(s.records) {
		return domain.MetadataRecord{}, fmt.Errorf("row %d outside metadata of %d records: %w", rowID, len(s.records), domain.ErrCorruptIndex)
	}
	return s.records[rowID], nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of all records in row order.
func (s *Store) Records() []domain.MetadataRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MetadataRecord, len(s.records))
	copy(out, s.records)
	return out
}

// CheckAligned reports domain.ErrCorruptIndex unless rows == records.
func CheckAligned(rows, records int) error {
	if rows != records {
		return fmt.Errorf("index has %d rows but metadata has %d records: %w", rows, records, domain.ErrCorruptIndex)
	}
	return nil
}
