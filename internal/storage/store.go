// Package storage provides the embedded BadgerHold store for cached series
// windows and completed scan sessions.
package storage

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

// Store wraps a badgerhold database.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// Open opens (or creates) the store at the given path.
func Open(path string, logger *common.Logger) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // badger's own logger is too chatty; zerolog covers us

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Storage opened")

	return &Store{db: db, logger: logger}, nil
}

// GetSeries returns the cached history window for a symbol, or nil when none
// is cached yet.
func (s *Store) GetSeries(ctx context.Context, symbol string) (*models.CachedSeries, error) {
	var series models.CachedSeries
	err := s.db.Get(symbol, &series)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load series %s: %w", symbol, err)
	}
	return &series, nil
}

// PutSeries upserts the cached history window for a symbol.
func (s *Store) PutSeries(ctx context.Context, series *models.CachedSeries) error {
	if err := s.db.Upsert(series.Symbol, series); err != nil {
		return fmt.Errorf("failed to save series %s: %w", series.Symbol, err)
	}
	return nil
}

// GetMetrics returns the cached metrics bag for a symbol, or nil when none
// is cached yet.
func (s *Store) GetMetrics(ctx context.Context, symbol string) (*models.FinancialMetrics, error) {
	var metrics models.FinancialMetrics
	err := s.db.Get(symbol, &metrics)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics %s: %w", symbol, err)
	}
	return &metrics, nil
}

// PutMetrics upserts the cached metrics bag for a symbol.
func (s *Store) PutMetrics(ctx context.Context, metrics *models.FinancialMetrics) error {
	if err := s.db.Upsert(metrics.Symbol, metrics); err != nil {
		return fmt.Errorf("failed to save metrics %s: %w", metrics.Symbol, err)
	}
	return nil
}

// SaveSession persists a completed scan session.
func (s *Store) SaveSession(ctx context.Context, session *models.ScanSession) error {
	if err := s.db.Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save scan session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession loads one scan session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*models.ScanSession, error) {
	var session models.ScanSession
	err := s.db.Get(id, &session)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scan session %s: %w", id, err)
	}
	return &session, nil
}

// ListSessions returns the most recent scan sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*models.ScanSession, error) {
	var sessions []*models.ScanSession
	if err := s.db.Find(&sessions, nil); err != nil {
		return nil, fmt.Errorf("failed to list scan sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements the storage surface
var _ interfaces.Store = (*Store)(nil)
