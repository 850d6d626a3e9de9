package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/carepartner/internal/model"
)

// ErrNotFound is returned when a cached entry does not exist.
var ErrNotFound = errors.New("not found")

// CachedSummary is a summary payload as last fetched for a query.
type CachedSummary struct {
	Summary   model.Summary
	FetchedAt time.Time
}

// Store defines the local persistence the terminal client keeps between
// runs: the last dashboard selection, the tag exclusions, and the most
// recent summary per query so the dashboard can open offline.
type Store interface {
	// === View state ===

	GetViewState(ctx context.Context) (model.ViewState, error)
	SaveViewState(ctx context.Context, v model.ViewState) error

	// === Tag exclusions ===

	GetExcludedTags(ctx context.Context) ([]string, error)
	SetExcludedTags(ctx context.Context, tags []string) error

	// === Summary cache ===

	PutSummary(ctx context.Context, q model.SummaryQuery, s model.Summary) error
	GetSummary(ctx context.Context, q model.SummaryQuery) (*CachedSummary, error)
	PruneSummaries(ctx context.Context, olderThan time.Duration) (int64, error)

	Close() error
}
