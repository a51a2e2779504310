// Package store is the persistence layer for cached dashboard data.
// It owns durability only; freshness decisions live with the services.
package store

import (
	"context"
	"fmt"
	"time"

	"findash/internal/model"
)

// Error wraps a storage failure with the operation that produced it.
// Services treat any *Error as "store unavailable" and fall back to
// upstream or stale data.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Store is the row-oriented record store consumed by the services.
// Absence is (nil, nil) or an empty slice, never an error.
type Store interface {
	// LatestQuote returns the newest quote row for a ticker by CapturedAt.
	LatestQuote(ctx context.Context, ticker string) (*model.Quote, error)
	// InsertQuote appends a quote row; existing rows are never mutated.
	InsertQuote(ctx context.Context, q *model.Quote) error
	// QuoteRange returns quote rows with CapturedAt >= since, ascending.
	QuoteRange(ctx context.Context, ticker string, since time.Time) ([]model.Quote, error)

	// CompanyInfo returns the single profile row for a ticker.
	CompanyInfo(ctx context.Context, ticker string) (*model.CompanyInfo, error)
	// UpsertCompanyInfo replaces the profile row for info.Ticker.
	UpsertCompanyInfo(ctx context.Context, info *model.CompanyInfo) error

	// RecentNews returns up to limit articles, newest FetchedAt first.
	RecentNews(ctx context.Context, limit int) ([]model.NewsArticle, error)
	// InsertNews appends one article row.
	InsertNews(ctx context.Context, a *model.NewsArticle) error
	// PurgeNews deletes articles with FetchedAt before cutoff and
	// returns the number removed.
	PurgeNews(ctx context.Context, cutoff time.Time) (int64, error)

	// InsertInsight appends a generated insight row.
	InsertInsight(ctx context.Context, ins *model.AIInsight) error
	// LatestInsight returns the newest insight for (ticker, insightType).
	LatestInsight(ctx context.Context, ticker, insightType string) (*model.AIInsight, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
