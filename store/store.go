package store

import (
	"context"
	"time"

	"lumenlearn/api/models"
)

// VisitorStore is the remote append/query service for visit records. It is
// optional: the application runs identically with no store configured, in
// which case the history layer operates in no-op mode.
//
// Insert is best-effort by contract — callers are expected to log and drop
// the error rather than surface it.
type VisitorStore interface {
	Insert(ctx context.Context, record models.VisitRecord) error

	// RecentVisits returns up to limit records, newest-first by event
	// timestamp, across all sessions.
	RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error)

	TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPageResult, error)
	VisitCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error)
	UniqueSessionsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error)
}
