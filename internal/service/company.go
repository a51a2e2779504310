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

// CompanyService serves company profiles through the single-row-per-
// ticker company_info table. Freshness keys off LastUpdated of the one
// upserted row.
type CompanyService struct {
	store  store.Store
	market upstream.MarketData
	ttl    time.Duration
	log    zerolog.Logger
	sf     singleflight.Group
	now    func() time.Time
}

type CompanyResult struct {
	Info  *model.CompanyInfo `json:"info"`
	Stale bool               `json:"stale"`
}

func NewCompanyService(st store.Store, market upstream.MarketData, ttl time.Duration, log zerolog.Logger) *CompanyService {
	if ttl == 0 {
		ttl = freshness.CompanyTTL
	}
	return &CompanyService{
		store:  st,
		market: market,
		ttl:    ttl,
		log:    log.With().Str("service", "company").Logger(),
		now:    time.Now,
	}
}

func (s *CompanyService) Get(ctx context.Context, ticker string) (CompanyResult, error) {
	return s.GetTTL(ctx, ticker, s.ttl)
}

func (s *CompanyService) GetTTL(ctx context.Context, ticker string, ttl time.Duration) (CompanyResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return CompanyResult{}, &UnavailableError{Kind: "company", Key: ticker, Err: errors.New("empty ticker")}
	}
	key := fmt.Sprintf("company:%s:%d", ticker, ttl)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.get(ctx, ticker, ttl)
	})
	if err != nil {
		return CompanyResult{}, err
	}
	return v.(CompanyResult), nil
}

func (s *CompanyService) get(ctx context.Context, ticker string, ttl time.Duration) (CompanyResult, error) {
	now := s.now()

	cached, err := s.store.CompanyInfo(ctx, ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("store read failed")
		cached = nil
	}
	if cached != nil && freshness.IsFresh(cached.LastUpdated, now, ttl) {
		s.log.Debug().Str("ticker", ticker).Msg("cache hit")
		return CompanyResult{Info: cached}, nil
	}

	raw, err := s.market.FetchProfile(ctx, ticker)
	if err == nil {
		var info *model.CompanyInfo
		if info, err = normalize.Company(raw, now); err == nil {
			if werr := s.store.UpsertCompanyInfo(ctx, info); werr != nil {
				s.log.Warn().Err(werr).Str("ticker", ticker).Msg("cache write failed")
			}
			return CompanyResult{Info: info}, nil
		}
	}

	if cached != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("upstream failed, serving stale profile")
		return CompanyResult{Info: cached, Stale: true}, nil
	}
	return CompanyResult{}, &UnavailableError{Kind: "company", Key: ticker, Err: err}
}
