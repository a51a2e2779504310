package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"findash/internal/model"
	"findash/internal/normalize"
	"findash/internal/store"
	"findash/internal/upstream"
)

// HistoryService serves historical price series. Series are pass-through
// from the provider and never persisted; when the provider fails, the
// stored quote snapshots stand in as a degraded series.
type HistoryService struct {
	store  store.Store
	market upstream.MarketData
	log    zerolog.Logger
	now    func() time.Time
}

type HistoryResult struct {
	Points []model.HistoryPoint `json:"points"`
	Stale  bool                 `json:"stale"`
}

func NewHistoryService(st store.Store, market upstream.MarketData, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		store:  st,
		market: market,
		log:    log.With().Str("service", "history").Logger(),
		now:    time.Now,
	}
}

func (s *HistoryService) Get(ctx context.Context, ticker, period string) (HistoryResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return HistoryResult{}, &UnavailableError{Kind: "history", Key: ticker, Err: errors.New("empty ticker")}
	}

	bars, err := s.market.FetchHistory(ctx, ticker, period)
	if err == nil {
		points := normalize.History(ticker, bars)
		if len(points) > 0 {
			return HistoryResult{Points: points}, nil
		}
		err = &upstream.Error{
			Kind: upstream.KindMalformed, Provider: s.market.Name(),
			Err: errors.New("series normalized to nothing"),
		}
	}

	// Fall back to the quote snapshots we cached along the way.
	since := s.now().Add(-time.Duration(periodDays(period)) * 24 * time.Hour)
	quotes, serr := s.store.QuoteRange(ctx, ticker, since)
	if serr != nil {
		s.log.Warn().Err(serr).Str("ticker", ticker).Msg("store read failed")
	}
	if len(quotes) > 0 {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("upstream failed, serving stored snapshots")
		points := make([]model.HistoryPoint, 0, len(quotes))
		for _, q := range quotes {
			points = append(points, model.HistoryPoint{
				Ticker: q.Ticker,
				Date:   q.CapturedAt.UTC().Format("2006-01-02"),
				Open:   q.Price,
				High:   q.DayHigh,
				Low:    q.DayLow,
				Close:  q.Price,
				Volume: q.Volume,
			})
		}
		return HistoryResult{Points: points, Stale: true}, nil
	}
	return HistoryResult{}, &UnavailableError{Kind: "history", Key: ticker, Err: err}
}

func periodDays(period string) int {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "1d":
		return 1
	case "5d":
		return 5
	case "", "7d":
		return 7
	case "1mo":
		return 30
	case "3mo":
		return 90
	case "1y":
		return 365
	default:
		return 7
	}
}
