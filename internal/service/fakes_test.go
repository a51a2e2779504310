package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"findash/internal/model"
	"findash/internal/store"
	"findash/internal/upstream"
)

// fakeStore is an in-memory store.Store with per-operation error
// injection and write counters.
type fakeStore struct {
	quotes   []model.Quote
	company  map[string]model.CompanyInfo
	news     []model.NewsArticle
	insights []model.AIInsight

	readErr  error
	writeErr error

	quoteInserts   int
	companyUpserts int
	newsInserts    int
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{company: map[string]model.CompanyInfo{}}
}

func (f *fakeStore) LatestQuote(_ context.Context, ticker string) (*model.Quote, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var latest *model.Quote
	for i := range f.quotes {
		q := &f.quotes[i]
		if q.Ticker != strings.ToUpper(ticker) {
			continue
		}
		if latest == nil || q.CapturedAt.After(latest.CapturedAt) {
			latest = q
		}
	}
	return latest, nil
}

func (f *fakeStore) InsertQuote(_ context.Context, q *model.Quote) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.quoteInserts++
	f.quotes = append(f.quotes, *q)
	return nil
}

func (f *fakeStore) QuoteRange(_ context.Context, ticker string, since time.Time) ([]model.Quote, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []model.Quote
	for _, q := range f.quotes {
		if q.Ticker == strings.ToUpper(ticker) && !q.CapturedAt.Before(since) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}

func (f *fakeStore) CompanyInfo(_ context.Context, ticker string) (*model.CompanyInfo, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	info, ok := f.company[strings.ToUpper(ticker)]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (f *fakeStore) UpsertCompanyInfo(_ context.Context, info *model.CompanyInfo) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.companyUpserts++
	f.company[info.Ticker] = *info
	return nil
}

func (f *fakeStore) RecentNews(_ context.Context, limit int) ([]model.NewsArticle, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := append([]model.NewsArticle(nil), f.news...)
	sort.Slice(out, func(i, j int) bool { return out[i].FetchedAt.After(out[j].FetchedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) InsertNews(_ context.Context, a *model.NewsArticle) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.newsInserts++
	f.news = append(f.news, *a)
	return nil
}

func (f *fakeStore) PurgeNews(_ context.Context, cutoff time.Time) (int64, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	var kept []model.NewsArticle
	var removed int64
	for _, a := range f.news {
		if a.FetchedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.news = kept
	return removed, nil
}

func (f *fakeStore) InsertInsight(_ context.Context, ins *model.AIInsight) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.insights = append(f.insights, *ins)
	return nil
}

func (f *fakeStore) LatestInsight(_ context.Context, ticker, insightType string) (*model.AIInsight, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var latest *model.AIInsight
	for i := range f.insights {
		ins := &f.insights[i]
		if ticker != "" && ins.Ticker != strings.ToUpper(ticker) {
			continue
		}
		if insightType != "" && ins.InsightType != insightType {
			continue
		}
		if latest == nil || ins.GeneratedAt.After(latest.GeneratedAt) {
			latest = ins
		}
	}
	return latest, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.readErr }

// fakeMarket is an upstream.MarketData stub with call counters.
type fakeMarket struct {
	quote      upstream.RawQuote
	quoteErr   error
	bars       []upstream.RawBar
	barsErr    error
	profile    upstream.RawProfile
	profileErr error

	quoteCalls   int
	historyCalls int
	profileCalls int
}

var _ upstream.MarketData = (*fakeMarket)(nil)

func (f *fakeMarket) Name() string { return "fake" }

func (f *fakeMarket) FetchQuote(context.Context, string) (upstream.RawQuote, error) {
	f.quoteCalls++
	return f.quote, f.quoteErr
}

func (f *fakeMarket) FetchHistory(context.Context, string, string) ([]upstream.RawBar, error) {
	f.historyCalls++
	return f.bars, f.barsErr
}

func (f *fakeMarket) FetchProfile(context.Context, string) (upstream.RawProfile, error) {
	f.profileCalls++
	return f.profile, f.profileErr
}

// fakeNews is an upstream.News stub with a call counter.
type fakeNews struct {
	batch []upstream.RawArticle
	err   error
	calls int
}

var _ upstream.News = (*fakeNews)(nil)

func (f *fakeNews) Name() string { return "fake" }

func (f *fakeNews) FetchBatch(context.Context, string, int) ([]upstream.RawArticle, error) {
	f.calls++
	return f.batch, f.err
}

func networkErr() error {
	return &upstream.Error{Kind: upstream.KindNetwork, Provider: "fake", Err: errors.New("connection refused")}
}

func notFoundErr() error {
	return &upstream.Error{Kind: upstream.KindNotFound, Provider: "fake", Err: errors.New("unknown ticker")}
}
