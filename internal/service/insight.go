package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"findash/internal/model"
	"findash/internal/store"
)

// InsightService records and serves AI-generated commentary and
// assembles the combined stock+news context handed to the generator.
// Insights have no upstream adapter; generation happens outside this
// process and lands here through Record.
type InsightService struct {
	store  store.Store
	quotes *QuoteService
	news   *NewsService
	log    zerolog.Logger
	now    func() time.Time
}

// AIContext is the combined record handed to the AI generator: current
// stock data, recent headlines, and a ready-to-send prompt embedding
// both.
type AIContext struct {
	Ticker         string              `json:"ticker"`
	Timestamp      time.Time           `json:"timestamp"`
	Stock          *model.Quote        `json:"stock"`
	StockStale     bool                `json:"stock_stale"`
	News           []model.NewsArticle `json:"news"`
	NewsStale      bool                `json:"news_stale"`
	PromptTemplate string              `json:"prompt_template"`
}

func NewInsightService(st store.Store, quotes *QuoteService, news *NewsService, log zerolog.Logger) *InsightService {
	return &InsightService{
		store:  st,
		quotes: quotes,
		news:   news,
		log:    log.With().Str("service", "insight").Logger(),
		now:    time.Now,
	}
}

// Latest returns the newest stored insight for (ticker, insightType),
// or nil when none exists. Insights are served as-is; their age is shown
// to the reader rather than gating a refetch.
func (s *InsightService) Latest(ctx context.Context, ticker, insightType string) (*model.AIInsight, error) {
	return s.store.LatestInsight(ctx, ticker, insightType)
}

// ErrInvalidInsight marks a rejected insight payload, as opposed to a
// store failure while recording a valid one.
var ErrInvalidInsight = errors.New("insight content is required")

// Record appends a generated insight to the history.
func (s *InsightService) Record(ctx context.Context, ins model.AIInsight) (*model.AIInsight, error) {
	if strings.TrimSpace(ins.Content) == "" {
		return nil, ErrInvalidInsight
	}
	ins.ID = uuid.NewString()
	ins.Ticker = strings.ToUpper(strings.TrimSpace(ins.Ticker))
	if ins.InsightType == "" {
		ins.InsightType = "daily"
	}
	ins.GeneratedAt = s.now().UTC()
	if err := s.store.InsertInsight(ctx, &ins); err != nil {
		return nil, err
	}
	return &ins, nil
}

// BuildContext assembles the AI context for a ticker. The quote is
// required; news failures degrade to an empty headline list rather than
// failing the assembly.
func (s *InsightService) BuildContext(ctx context.Context, ticker string, newsLimit int) (*AIContext, error) {
	qr, err := s.quotes.Get(ctx, ticker)
	if err != nil {
		return nil, err
	}

	nr, err := s.news.Get(ctx, "business", newsLimit)
	if err != nil {
		s.log.Warn().Err(err).Msg("news unavailable for context, continuing without")
		nr = NewsResult{}
	}

	return &AIContext{
		Ticker:         qr.Quote.Ticker,
		Timestamp:      s.now().UTC(),
		Stock:          qr.Quote,
		StockStale:     qr.Stale,
		News:           nr.Articles,
		NewsStale:      nr.Stale,
		PromptTemplate: buildPrompt(qr.Quote, nr.Articles),
	}, nil
}

func buildPrompt(q *model.Quote, news []model.NewsArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Analyze this stock and the current market news, then provide professional investment commentary:

Ticker: %s
Price: %.2f
Change: %.2f%%
Day Range: %.2f - %.2f
Volume: %d

Recent headlines:
`, q.Ticker, q.Price, q.ChangePercent, q.DayLow, q.DayHigh, q.Volume)
	if len(news) == 0 {
		b.WriteString("(none available)\n")
	}
	for _, a := range news {
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.Source)
	}
	b.WriteString(`
Provide:
1. Market Impact Assessment (100-150 words)
2. Risk Factors (100-150 words)
3. Outlook with sentiment (bullish/bearish/neutral) and risk level (low/medium/high)

Format as professional analyst commentary.`)
	return b.String()
}
