package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"findash/internal/model"
)

// tickerCard is one dashboard tile. A kind that could not be served
// renders as a placeholder instead of failing the page.
type tickerCard struct {
	Ticker      string
	Quote       *model.Quote
	Stale       bool
	CompanyName string
}

type dashboardView struct {
	Generated time.Time
	Cards     []tickerCard
	News      []model.NewsArticle
	NewsStale bool
	Insight   *model.AIInsight
}

func (h *Handlers) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	view := dashboardView{Generated: time.Now().UTC()}

	for _, ticker := range h.tickers {
		card := tickerCard{Ticker: ticker}
		if qr, err := h.quotes.Get(ctx, ticker); err == nil {
			card.Quote = qr.Quote
			card.Stale = qr.Stale
		} else {
			h.log.Warn().Err(err).Str("ticker", ticker).Msg("dashboard quote unavailable")
		}
		if cr, err := h.company.Get(ctx, ticker); err == nil {
			card.CompanyName = cr.Info.CompanyName
		}
		view.Cards = append(view.Cards, card)
	}

	if nr, err := h.news.Get(ctx, "business", 5); err == nil {
		view.News = nr.Articles
		view.NewsStale = nr.Stale
	} else {
		h.log.Warn().Err(err).Msg("dashboard news unavailable")
	}

	if ins, err := h.insights.Latest(ctx, "", ""); err == nil {
		view.Insight = ins
	}

	c.HTML(http.StatusOK, "dashboard.html", view)
}
