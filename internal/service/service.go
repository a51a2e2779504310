// Package service holds the cache-aside orchestrators, one per data
// kind. Each follows the same protocol: read the store, test freshness
// against the kind's TTL, refetch upstream on miss, persist, and fall
// back to stale stored data when the provider fails. Orchestrators never
// let a raw store or upstream error escape; every failure resolves into
// either a result marked stale or an UnavailableError.
package service

import (
	"errors"
	"fmt"

	"findash/internal/upstream"
)

// UnavailableError is returned when a kind has neither fresh upstream
// data nor any stored fallback. It wraps the upstream failure so callers
// can inspect the kind via errors.As / upstream.IsKind.
type UnavailableError struct {
	Kind string // data kind: quote, history, company, news
	Key  string // ticker or category
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %q unavailable: %v", e.Kind, e.Key, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsNotFound reports whether err stems from the upstream not knowing the
// requested key, as opposed to being unreachable.
func IsNotFound(err error) bool {
	return upstream.IsKind(err, upstream.KindNotFound)
}
