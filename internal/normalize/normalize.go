// Package normalize maps raw provider payloads into canonical records.
// All functions are pure aside from ID generation. Missing required
// fields are a skip signal (ValidationError), not a failure; missing
// numeric fields default to zero with the record's Complete flag
// cleared, since partial data beats no data on a dashboard.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"findash/internal/freshness"
	"findash/internal/model"
	"findash/internal/upstream"
)

// ValidationError marks a raw record that lacks a required field.
// Batch callers drop the record; single-record callers surface it.
type ValidationError struct {
	Kind  string
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("normalize %s: missing required field %q", e.Kind, e.Field)
}

// Round2 rounds a price to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ChangePercent computes the day change, guarding division by zero.
func ChangePercent(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return Round2((current - previous) / previous * 100)
}

// Quote builds a canonical quote from a raw provider payload. A price is
// required; the remaining numeric fields default to the price (high/low)
// or zero (volume) with Complete cleared.
func Quote(raw upstream.RawQuote, now time.Time) (*model.Quote, error) {
	price, ok := parseFloat(raw.Price)
	if !ok {
		return nil, &ValidationError{Kind: "quote", Field: "price"}
	}
	price = Round2(price)

	complete := true
	high, ok := parseFloat(raw.DayHigh)
	if !ok {
		high, complete = price, false
	}
	low, ok := parseFloat(raw.DayLow)
	if !ok {
		low, complete = price, false
	}
	volume, ok := parseInt(raw.Volume)
	if !ok {
		volume, complete = 0, false
	}
	previous, ok := parseFloat(raw.PreviousClose)
	if !ok {
		previous, complete = 0, false
	}

	return &model.Quote{
		ID:            uuid.NewString(),
		Ticker:        strings.ToUpper(strings.TrimSpace(raw.Ticker)),
		Price:         price,
		ChangePercent: ChangePercent(price, previous),
		DayHigh:       Round2(high),
		DayLow:        Round2(low),
		Volume:        volume,
		Complete:      complete,
		CapturedAt:    now.UTC(),
	}, nil
}

// History converts raw bars, dropping any without a parsable close.
func History(ticker string, bars []upstream.RawBar) []model.HistoryPoint {
	out := make([]model.HistoryPoint, 0, len(bars))
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, b := range bars {
		closePrice, ok := parseFloat(b.Close)
		if !ok {
			continue
		}
		open, _ := parseFloat(b.Open)
		high, _ := parseFloat(b.High)
		low, _ := parseFloat(b.Low)
		volume, _ := parseInt(b.Volume)
		out = append(out, model.HistoryPoint{
			Ticker: ticker,
			Date:   b.Date,
			Open:   Round2(open),
			High:   Round2(high),
			Low:    Round2(low),
			Close:  Round2(closePrice),
			Volume: volume,
		})
	}
	return out
}

// Company builds the canonical profile row. String fields default to
// "N/A" and numerics to zero, with Complete cleared on any default.
func Company(raw upstream.RawProfile, now time.Time) (*model.CompanyInfo, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw.Ticker))
	if ticker == "" {
		return nil, &ValidationError{Kind: "company", Field: "ticker"}
	}

	complete := true
	marketCap, ok := parseInt(raw.MarketCap)
	if !ok {
		marketCap, complete = 0, false
	}
	peRatio, ok := parseFloat(raw.PERatio)
	if !ok {
		peRatio, complete = 0, false
	}

	return &model.CompanyInfo{
		Ticker:      ticker,
		CompanyName: defaultNA(raw.Name, &complete),
		Sector:      defaultNA(raw.Sector, &complete),
		Industry:    defaultNA(raw.Industry, &complete),
		MarketCap:   marketCap,
		PERatio:     peRatio,
		Description: defaultNA(raw.Description, &complete),
		Website:     defaultNA(raw.Website, &complete),
		Complete:    complete,
		LastUpdated: now.UTC(),
	}, nil
}

// Article builds a canonical article. Title and URL are required; a
// missing summary is defaulted and an unparsable publish stamp falls
// back to the ingestion time.
func Article(raw upstream.RawArticle, now time.Time) (*model.NewsArticle, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, &ValidationError{Kind: "article", Field: "title"}
	}
	if strings.TrimSpace(raw.URL) == "" {
		return nil, &ValidationError{Kind: "article", Field: "url"}
	}

	summary := strings.TrimSpace(raw.Summary)
	if summary == "" {
		summary = "No summary available"
	}
	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = raw.Provider
	}

	published, err := freshness.ParseStamp(raw.PublishedAt)
	if err != nil {
		published = now.UTC()
	}

	return &model.NewsArticle{
		ID:          uuid.NewString(),
		Title:       title,
		Summary:     summary,
		URL:         raw.URL,
		Source:      source,
		PublishedAt: published,
		FetchedAt:   now.UTC(),
	}, nil
}

// Articles normalizes a batch, silently dropping invalid entries and
// reporting how many were skipped.
func Articles(batch []upstream.RawArticle, now time.Time) (out []model.NewsArticle, skipped int) {
	out = make([]model.NewsArticle, 0, len(batch))
	for _, raw := range batch {
		a, err := Article(raw, now)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, *a)
	}
	return out, skipped
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") || s == "-" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	// some providers send integers with a decimal part
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func defaultNA(s string, complete *bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		*complete = false
		return "N/A"
	}
	return s
}
