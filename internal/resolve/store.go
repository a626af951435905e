package resolve

import (
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// Store owns all participant records for one run. It is built sequentially
// by the resolver; matching rules are order-sensitive, so iteration always
// follows insertion order.
type Store struct {
	records map[string]*models.ParticipantRecord
	order   []string
}

// NewStore creates an empty participant store.
func NewStore() *Store {
	return &Store{records: make(map[string]*models.ParticipantRecord)}
}

// Get returns the record under key.
func (s *Store) Get(key string) (*models.ParticipantRecord, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// Put inserts a record under key. Existing keys are overwritten in place
// without disturbing insertion order.
func (s *Store) Put(key string, rec *models.ParticipantRecord) {
	if _, exists := s.records[key]; !exists {
		s.order = append(s.order, key)
	}
	s.records[key] = rec
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Keys returns all keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Records returns all records in insertion order.
func (s *Store) Records() []*models.ParticipantRecord {
	recs := make([]*models.ParticipantRecord, 0, len(s.order))
	for _, key := range s.order {
		recs = append(recs, s.records[key])
	}
	return recs
}
