package interfaces

import (
	"context"

	"github.com/chenruby1109/factor-ai/internal/models"
)

// SeriesCache stores bounded per-instrument history windows between fetches.
type SeriesCache interface {
	GetSeries(ctx context.Context, symbol string) (*models.CachedSeries, error)
	PutSeries(ctx context.Context, series *models.CachedSeries) error
}

// MetricsCache stores mined financial metric bags between scans. Statements
// move slowly, so a cached bag is reusable for days.
type MetricsCache interface {
	GetMetrics(ctx context.Context, symbol string) (*models.FinancialMetrics, error)
	PutMetrics(ctx context.Context, metrics *models.FinancialMetrics) error
}

// SessionStore persists completed scan sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.ScanSession) error
	GetSession(ctx context.Context, id string) (*models.ScanSession, error)
	ListSessions(ctx context.Context, limit int) ([]*models.ScanSession, error)
}

// Store is the full storage surface.
type Store interface {
	SeriesCache
	MetricsCache
	SessionStore
	Close() error
}
