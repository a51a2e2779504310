// Package upstream defines the adapter contracts for external market-data
// and news providers, the shared error taxonomy, and the raw payload
// shapes handed to the normalizer. Concrete providers live in
// subpackages and are selected at construction time.
package upstream

import "context"

// MarketData is the capability set of a market-data provider.
type MarketData interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) (RawQuote, error)
	FetchHistory(ctx context.Context, ticker, period string) ([]RawBar, error)
	FetchProfile(ctx context.Context, ticker string) (RawProfile, error)
}

// News is the capability set of a news provider.
type News interface {
	Name() string
	FetchBatch(ctx context.Context, category string, limit int) ([]RawArticle, error)
}

// RawQuote is a provider quote payload before normalization. Numeric
// fields stay as the provider delivered them; the normalizer parses,
// rounds, and defaults.
type RawQuote struct {
	Provider      string
	Ticker        string
	Price         string
	PreviousClose string
	DayHigh       string
	DayLow        string
	Volume        string
}

// RawBar is one unparsed bar of a historical series.
type RawBar struct {
	Date   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// RawProfile is a provider company-profile payload before normalization.
type RawProfile struct {
	Provider    string
	Ticker      string
	Name        string
	Sector      string
	Industry    string
	MarketCap   string
	PERatio     string
	Description string
	Website     string
}

// RawArticle is a provider news item before normalization. PublishedAt
// keeps the provider-native stamp (RFC3339, naive, or epoch seconds).
type RawArticle struct {
	Provider    string
	Title       string
	Summary     string
	URL         string
	Source      string
	PublishedAt string
}
