// Package web exposes the dashboard page and the JSON API over gin.
// Handlers translate service results into responses and never leak raw
// store or provider errors to clients.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"findash/internal/freshness"
	"findash/internal/model"
	"findash/internal/service"
	"findash/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handlers carries the orchestrators behind the HTTP surface.
type Handlers struct {
	quotes   *service.QuoteService
	history  *service.HistoryService
	company  *service.CompanyService
	news     *service.NewsService
	insights *service.InsightService
	store    store.Store
	tickers  []string
	log      zerolog.Logger
}

func NewHandlers(
	quotes *service.QuoteService,
	history *service.HistoryService,
	company *service.CompanyService,
	news *service.NewsService,
	insights *service.InsightService,
	st store.Store,
	tickers []string,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		quotes:   quotes,
		history:  history,
		company:  company,
		news:     news,
		insights: insights,
		store:    st,
		tickers:  tickers,
		log:      log.With().Str("component", "web").Logger(),
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handlers) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(h.log))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/dashboard", h.dashboard)
	r.GET("/healthz", h.healthz)

	api := r.Group("/api")
	api.GET("/stocks", h.getStock)
	api.GET("/history", h.getHistory)
	api.GET("/company", h.getCompany)
	api.GET("/news", h.getNews)
	api.GET("/context", h.getContext)
	api.GET("/insights", h.getInsight)
	api.POST("/insights", h.postInsight)
	return r
}

func requestLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (h *Handlers) getStock(c *gin.Context) {
	ticker := c.Query("ticker")
	if strings.TrimSpace(ticker) == "" {
		badRequest(c, "ticker is required")
		return
	}
	var res service.QuoteResult
	var err error
	if refresh := c.Query("refresh"); refresh == "1" || strings.EqualFold(refresh, "true") {
		res, err = h.quotes.GetTTL(c.Request.Context(), ticker, freshness.ForceFresh)
	} else {
		res, err = h.quotes.Get(c.Request.Context(), ticker)
	}
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) getHistory(c *gin.Context) {
	ticker := c.Query("ticker")
	if strings.TrimSpace(ticker) == "" {
		badRequest(c, "ticker is required")
		return
	}
	res, err := h.history.Get(c.Request.Context(), ticker, c.Query("period"))
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) getCompany(c *gin.Context) {
	ticker := c.Query("ticker")
	if strings.TrimSpace(ticker) == "" {
		badRequest(c, "ticker is required")
		return
	}
	res, err := h.company.Get(c.Request.Context(), ticker)
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) getNews(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			badRequest(c, "limit must be a positive integer up to 100")
			return
		}
		limit = n
	}
	res, err := h.news.Get(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) getContext(c *gin.Context) {
	ticker := c.Query("ticker")
	if strings.TrimSpace(ticker) == "" {
		badRequest(c, "ticker is required")
		return
	}
	limit := 5
	if v := c.Query("news_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 50 {
			badRequest(c, "news_limit must be a positive integer up to 50")
			return
		}
		limit = n
	}
	res, err := h.insights.BuildContext(c.Request.Context(), ticker, limit)
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) getInsight(c *gin.Context) {
	ins, err := h.insights.Latest(c.Request.Context(), c.Query("ticker"), c.Query("type"))
	if err != nil {
		h.replyError(c, err)
		return
	}
	if ins == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no insight recorded"})
		return
	}
	c.JSON(http.StatusOK, ins)
}

func (h *Handlers) postInsight(c *gin.Context) {
	var body model.AIInsight
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid insight body")
		return
	}
	ins, err := h.insights.Record(c.Request.Context(), body)
	if errors.Is(err, service.ErrInvalidInsight) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ins)
}

func (h *Handlers) healthz(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("store ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *Handlers) replyError(c *gin.Context, err error) {
	switch {
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown ticker"})
	case service.IsUnavailable(err):
		h.log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("data unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "data temporarily unavailable"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("handler failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
