package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"findash/internal/freshness"
	"findash/internal/model"
	"findash/internal/normalize"
	"findash/internal/store"
	"findash/internal/upstream"
)

// QuoteService serves quotes through the quotes cache table.
type QuoteService struct {
	store  store.Store
	market upstream.MarketData
	ttl    time.Duration
	log    zerolog.Logger
	sf     singleflight.Group
	now    func() time.Time
}

// QuoteResult is a quote plus its freshness provenance. Stale is set
// when the quote was served from the store past its TTL because the
// upstream call failed.
type QuoteResult struct {
	Quote *model.Quote `json:"quote"`
	Stale bool         `json:"stale"`
}

func NewQuoteService(st store.Store, market upstream.MarketData, ttl time.Duration, log zerolog.Logger) *QuoteService {
	if ttl == 0 {
		ttl = freshness.QuoteTTL
	}
	return &QuoteService{
		store:  st,
		market: market,
		ttl:    ttl,
		log:    log.With().Str("service", "quote").Logger(),
		now:    time.Now,
	}
}

// Get serves a quote under the service's configured TTL.
func (s *QuoteService) Get(ctx context.Context, ticker string) (QuoteResult, error) {
	return s.GetTTL(ctx, ticker, s.ttl)
}

// GetTTL serves a quote under an explicit TTL. freshness.ForceFresh
// always refetches; freshness.ForceCache never hits the upstream when
// any stored row exists. Concurrent callers for the same (ticker, ttl)
// share one flight.
func (s *QuoteService) GetTTL(ctx context.Context, ticker string, ttl time.Duration) (QuoteResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return QuoteResult{}, &UnavailableError{Kind: "quote", Key: ticker, Err: errors.New("empty ticker")}
	}
	key := fmt.Sprintf("quote:%s:%d", ticker, ttl)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.get(ctx, ticker, ttl)
	})
	if err != nil {
		return QuoteResult{}, err
	}
	return v.(QuoteResult), nil
}

func (s *QuoteService) get(ctx context.Context, ticker string, ttl time.Duration) (QuoteResult, error) {
	now := s.now()

	cached, err := s.store.LatestQuote(ctx, ticker)
	if err != nil {
		// A broken store degrades to a plain upstream fetch.
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("store read failed")
		cached = nil
	}
	if cached != nil && freshness.IsFresh(cached.CapturedAt, now, ttl) {
		s.log.Debug().Str("ticker", ticker).
			Dur("age", freshness.Age(cached.CapturedAt, now)).
			Msg("cache hit")
		return QuoteResult{Quote: cached}, nil
	}

	raw, err := s.market.FetchQuote(ctx, ticker)
	if err == nil {
		var q *model.Quote
		if q, err = normalize.Quote(raw, now); err == nil {
			if werr := s.store.InsertQuote(ctx, q); werr != nil {
				// A failed cache write must not fail the read path.
				s.log.Warn().Err(werr).Str("ticker", ticker).Msg("cache write failed")
			}
			return QuoteResult{Quote: q}, nil
		}
	}

	if cached != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).
			Dur("age", freshness.Age(cached.CapturedAt, now)).
			Msg("upstream failed, serving stale quote")
		return QuoteResult{Quote: cached, Stale: true}, nil
	}
	return QuoteResult{}, &UnavailableError{Kind: "quote", Key: ticker, Err: err}
}
