package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"findash/internal/upstream"
)

func newHistoryService(st *fakeStore, market *fakeMarket) *HistoryService {
	s := NewHistoryService(st, market, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s
}

func TestHistoryGet_PassThrough(t *testing.T) {
	market := &fakeMarket{bars: []upstream.RawBar{
		{Date: "2025-02-27", Open: "148.00", High: "151.00", Low: "147.50", Close: "150.25", Volume: "52000000"},
		{Date: "2025-02-28", Open: "150.30", High: "152.10", Low: "149.80", Close: "151.90", Volume: "48000000"},
	}}
	s := newHistoryService(newFakeStore(), market)

	res, err := s.Get(context.Background(), "aapl", "5d")
	require.NoError(t, err)
	require.False(t, res.Stale)
	require.Len(t, res.Points, 2)
	require.Equal(t, "AAPL", res.Points[0].Ticker)
	require.Equal(t, 150.25, res.Points[0].Close)
}

func TestHistoryGet_UpstreamFailureFallsBackToSnapshots(t *testing.T) {
	st := newFakeStore()
	st.quotes = append(st.quotes,
		storedQuote("AAPL", 3*24*time.Hour, 147.00),
		storedQuote("AAPL", 24*time.Hour, 149.50),
		storedQuote("AAPL", 30*24*time.Hour, 120.00), // outside the 7d window
	)
	market := &fakeMarket{barsErr: networkErr()}
	s := newHistoryService(st, market)

	res, err := s.Get(context.Background(), "AAPL", "7d")
	require.NoError(t, err)
	require.True(t, res.Stale)
	require.Len(t, res.Points, 2, "window excludes the month-old snapshot")
	require.Equal(t, 147.00, res.Points[0].Close, "oldest snapshot first")
	require.Equal(t, 149.50, res.Points[1].Close)
}

func TestHistoryGet_EmptySeriesTreatedAsFailure(t *testing.T) {
	st := newFakeStore()
	st.quotes = append(st.quotes, storedQuote("AAPL", 24*time.Hour, 149.50))
	market := &fakeMarket{bars: []upstream.RawBar{{Date: "2025-02-28"}}} // no close
	s := newHistoryService(st, market)

	res, err := s.Get(context.Background(), "AAPL", "7d")
	require.NoError(t, err)
	require.True(t, res.Stale, "an unusable series falls back like a failure")
}

func TestHistoryGet_FailureNoSnapshotsIsUnavailable(t *testing.T) {
	market := &fakeMarket{barsErr: networkErr()}
	s := newHistoryService(newFakeStore(), market)

	_, err := s.Get(context.Background(), "AAPL", "1mo")
	require.True(t, IsUnavailable(err))
	require.True(t, upstream.IsKind(err, upstream.KindNetwork))
}

func TestHistoryGet_EmptyTickerRejected(t *testing.T) {
	s := newHistoryService(newFakeStore(), &fakeMarket{})
	_, err := s.Get(context.Background(), "", "7d")
	require.True(t, IsUnavailable(err))
}

func TestPeriodDays(t *testing.T) {
	cases := map[string]int{
		"1d": 1, "5d": 5, "7d": 7, "1mo": 30, "3mo": 90, "1y": 365,
		"": 7, "bogus": 7, " 1Y ": 365,
	}
	for period, want := range cases {
		require.Equal(t, want, periodDays(period), "period %q", period)
	}
}
