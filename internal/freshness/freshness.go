// Package freshness decides whether a cached record is still usable.
// The policy is a pure age-against-TTL check with two sentinel modes:
// ForceFresh always refetches, ForceCache always trusts the store.
package freshness

import (
	"fmt"
	"strconv"
	"time"
)

// TTL sentinels. Services compare against these explicitly.
const (
	// ForceFresh treats any stored record as stale.
	ForceFresh time.Duration = 0
	// ForceCache treats any stored record as fresh regardless of age.
	ForceCache time.Duration = -1
)

// Default TTLs per data kind.
const (
	QuoteTTL   = 5 * time.Minute
	CompanyTTL = 24 * time.Hour
	NewsTTL    = time.Hour
	InsightTTL = 24 * time.Hour
)

// IsFresh reports whether a record stamped at ts is still fresh at now
// under ttl. Comparison is done in UTC so offset-qualified and naive
// stamps representing the same instant agree.
func IsFresh(ts, now time.Time, ttl time.Duration) bool {
	if ttl == ForceFresh {
		return false
	}
	if ttl < 0 {
		return true
	}
	return now.UTC().Sub(ts.UTC()) <= ttl
}

// Age returns how old a stamp is at now, never negative.
func Age(ts, now time.Time) time.Duration {
	d := now.UTC().Sub(ts.UTC())
	if d < 0 {
		return 0
	}
	return d
}

var stampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102T150405", // Alpha Vantage time_published
}

// ParseStamp parses a provider or store timestamp. Offset-qualified
// stamps keep their instant; naive stamps are interpreted as UTC.
// Plain integers are taken as epoch seconds.
func ParseStamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
