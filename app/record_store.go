package app

import (
	"context"
	"sync"
	"time"

	"epidash/domain/cases"
	"epidash/internal"
	"epidash/internal/errors"
	"epidash/internal/metrics"
	"epidash/ports"
)

// RecordStore holds the loaded dataset. It is filled by one bulk load and is
// read-only afterwards.
type RecordStore struct {
	mu       sync.RWMutex
	records  []cases.Record
	loaded   bool
	loadErr  error
	source   string
	loadedAt time.Time

	logger  *internal.Logger
	metrics *metrics.Metrics
}

// NewRecordStore creates an empty store
func NewRecordStore(logger *internal.Logger, m *metrics.Metrics) *RecordStore {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RecordStore{logger: logger.With("RecordStore"), metrics: m}
}

// NewRecordStoreFrom creates a store already holding records
func NewRecordStoreFrom(records []cases.Record) *RecordStore {
	s := NewRecordStore(nil, nil)
	s.records = append([]cases.Record(nil), records...)
	s.loaded = true
	s.loadedAt = time.Now()
	return s
}

// Load fills the store from a source. A failed load is logged and leaves the
// store empty; the empty dataset is still a valid state to render. The error
// is returned so callers can report it, never so they abort.
func (s *RecordStore) Load(ctx context.Context, source ports.RecordSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return errors.New(errors.CodeValidationError, "record store already loaded")
	}
	s.source = source.Describe()
	s.loaded = true
	s.loadedAt = time.Now()

	records, err := source.Load(ctx)
	if err != nil {
		s.records = nil
		s.loadErr = errors.ExternalServiceError("record source "+s.source, err)
		s.logger.Error("Failed to load records from %s: %v", s.source, err)
		if s.metrics != nil {
			s.metrics.LoadFailures.Inc()
			s.metrics.RecordsLoaded.Set(0)
		}
		return s.loadErr
	}

	s.records = records
	s.loadErr = nil
	s.logger.Info("Loaded %d records from %s", len(records), s.source)
	if s.metrics != nil {
		s.metrics.RecordsLoaded.Set(float64(len(records)))
	}
	return nil
}

// Records returns the dataset in input order. The slice is a copy.
func (s *RecordStore) Records() []cases.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]cases.Record(nil), s.records...)
}

// Len returns the number of records
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether a load was attempted
func (s *RecordStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LoadError returns the error of the last load, if it failed
func (s *RecordStore) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Source names where the records came from
func (s *RecordStore) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// LoadedAt returns when the load finished
func (s *RecordStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
