package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrorKind classifies an upstream failure.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindRateLimited
	KindNotFound
	KindTimeout
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	default:
		return "network"
	}
}

// Error is a classified upstream failure. Adapters return it for every
// failure mode so services never see raw transport errors.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an upstream Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == kind
}

// Classify maps a transport-level error to an upstream Error.
func Classify(provider string, err error) *Error {
	kind := KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// ClassifyStatus maps a non-2xx HTTP status to an upstream Error.
func ClassifyStatus(provider string, status int) *Error {
	kind := KindNetwork
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusGatewayTimeout:
		kind = KindTimeout
	}
	return &Error{Kind: kind, Provider: provider, Err: fmt.Errorf("status %d", status)}
}

// WithBackoff runs fn up to attempts times, sleeping between tries only
// when the failure is rate limiting. The delay starts at base and doubles
// per attempt. The retry loop is local to the adapter; callers only see
// the final error.
func WithBackoff(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsKind(err, KindRateLimited) || i == attempts-1 {
			return err
		}
		delay := base << uint(i)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return &Error{Kind: KindTimeout, Provider: "backoff", Err: ctx.Err()}
		case <-t.C:
		}
	}
	return err
}
