// Package counter persists the global invoice number.
package counter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/crystaltrading/invoice-server/internal/storage"
)

// TrackerFileName is the counter record's file name under the storage root.
const TrackerFileName = "invoice_tracker.json"

// State is the persisted counter record. There is exactly one, global, not
// scoped per customer or per day.
type State struct {
	GlobalInvoiceNumber int `json:"global_invoice_number"`
}

// Store owns the persisted invoice counter. All access is serialized through
// a mutex so concurrent sessions within one process cannot issue the same
// number; concurrent processes sharing the file are still unprotected.
type Store struct {
	mu     sync.Mutex
	files  storage.FileStore
	path   string
	state  State
	loaded bool
	logger *zap.Logger
}

// NewStore creates a counter store persisting under baseDir
func NewStore(files storage.FileStore, baseDir string, logger *zap.Logger) *Store {
	return &Store{
		files:  files,
		path:   filepath.Join(baseDir, TrackerFileName),
		logger: logger,
	}
}

// Load reads the persisted counter. If the backing file does not exist it is
// created with a zero record first, so a fresh installation starts at
// invoice number 1. Idempotent once initialized.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return State{}, err
	}
	return s.state, nil
}

// IncrementAndPersist advances the counter by exactly 1, overwrites the
// persisted record, and returns the newly issued invoice number. The number
// is never reused, even if the caller later discards the invoice.
func (s *Store) IncrementAndPersist() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return 0, err
	}

	next := s.state
	next.GlobalInvoiceNumber++
	if err := s.writeLocked(next); err != nil {
		return 0, err
	}
	s.state = next

	s.logger.Info("Invoice number issued",
		zap.Int("invoice_number", s.state.GlobalInvoiceNumber))

	return s.state.GlobalInvoiceNumber, nil
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}

	if !s.files.Exists(s.path) {
		if err := s.writeLocked(State{}); err != nil {
			return fmt.Errorf("failed to initialize counter file: %w", err)
		}
		s.state = State{}
		s.loaded = true
		s.logger.Info("Counter file created", zap.String("path", s.path))
		return nil
	}

	content, err := s.files.Read(s.path)
	if err != nil {
		return fmt.Errorf("failed to read counter file: %w", err)
	}

	var state State
	if err := json.Unmarshal(content, &state); err != nil {
		return fmt.Errorf("failed to parse counter file: %w", err)
	}
	if state.GlobalInvoiceNumber < 0 {
		return fmt.Errorf("counter file holds negative invoice number: %d", state.GlobalInvoiceNumber)
	}

	s.state = state
	s.loaded = true
	return nil
}

func (s *Store) writeLocked(state State) error {
	content, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode counter state: %w", err)
	}
	if err := s.files.Write(s.path, content); err != nil {
		return fmt.Errorf("failed to persist counter state: %w", err)
	}
	return nil
}
