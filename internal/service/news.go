package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"findash/internal/freshness"
	"findash/internal/model"
	"findash/internal/normalize"
	"findash/internal/store"
	"findash/internal/upstream"
)

// NewsService serves category news batches through the append-only news
// table. A cached batch is one freshness unit: its age is the FetchedAt
// of the newest stored article, and it is either served whole or
// refetched whole. A cached batch smaller than the requested limit is
// treated as a miss, except under force-cache, which serves whatever is
// stored.
type NewsService struct {
	store store.Store
	news  upstream.News
	ttl   time.Duration
	log   zerolog.Logger
	sf    singleflight.Group
	now   func() time.Time
}

type NewsResult struct {
	Articles []model.NewsArticle `json:"articles"`
	Stale    bool                `json:"stale"`
}

func NewNewsService(st store.Store, news upstream.News, ttl time.Duration, log zerolog.Logger) *NewsService {
	if ttl == 0 {
		ttl = freshness.NewsTTL
	}
	return &NewsService{
		store: st,
		news:  news,
		ttl:   ttl,
		log:   log.With().Str("service", "news").Logger(),
		now:   time.Now,
	}
}

func (s *NewsService) Get(ctx context.Context, category string, limit int) (NewsResult, error) {
	return s.GetTTL(ctx, category, limit, s.ttl)
}

func (s *NewsService) GetTTL(ctx context.Context, category string, limit int, ttl time.Duration) (NewsResult, error) {
	if category == "" {
		category = "business"
	}
	if limit <= 0 {
		limit = 10
	}
	key := fmt.Sprintf("news:%s:%d:%d", category, limit, ttl)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.get(ctx, category, limit, ttl)
	})
	if err != nil {
		return NewsResult{}, err
	}
	return v.(NewsResult), nil
}

func (s *NewsService) get(ctx context.Context, category string, limit int, ttl time.Duration) (NewsResult, error) {
	now := s.now()

	cached, err := s.store.RecentNews(ctx, limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("store read failed")
		cached = nil
	}
	// Force-cache never touches the upstream while anything is stored,
	// so the short-batch-is-a-miss rule yields to it.
	enough := len(cached) >= limit || ttl < 0
	if len(cached) > 0 && enough && freshness.IsFresh(cached[0].FetchedAt, now, ttl) {
		s.log.Debug().Int("articles", len(cached)).
			Dur("age", freshness.Age(cached[0].FetchedAt, now)).
			Msg("cache hit")
		return NewsResult{Articles: cached}, nil
	}

	raws, err := s.news.FetchBatch(ctx, category, limit)
	if err == nil {
		articles, skipped := normalize.Articles(raws, now)
		if skipped > 0 {
			s.log.Debug().Int("skipped", skipped).Msg("dropped unparsable articles")
		}
		if len(articles) > 0 {
			for i := range articles {
				if werr := s.store.InsertNews(ctx, &articles[i]); werr != nil {
					// One failed insert must not lose the batch.
					s.log.Warn().Err(werr).Str("url", articles[i].URL).Msg("cache write failed")
				}
			}
			return NewsResult{Articles: articles}, nil
		}
		s.log.Warn().Str("category", category).Msg("upstream returned no usable articles")
	}

	if len(cached) > 0 {
		s.log.Warn().Err(err).
			Dur("age", freshness.Age(cached[0].FetchedAt, now)).
			Msg("upstream failed, serving stale batch")
		return NewsResult{Articles: cached, Stale: true}, nil
	}
	if err != nil {
		return NewsResult{}, &UnavailableError{Kind: "news", Key: category, Err: err}
	}
	// upstream healthy but empty and nothing cached: an empty page beats
	// an error banner
	return NewsResult{Articles: []model.NewsArticle{}}, nil
}

// Trim deletes articles fetched more than keepFor ago. Maintenance path
// only; the read path never deletes.
func (s *NewsService) Trim(ctx context.Context, keepFor time.Duration) (int64, error) {
	removed, err := s.store.PurgeNews(ctx, s.now().Add(-keepFor))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("trimmed old news")
	}
	return removed, nil
}
