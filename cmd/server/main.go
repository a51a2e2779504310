package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"findash/internal/config"
	"findash/internal/httpx"
	"findash/internal/service"
	"findash/internal/store"
	"findash/internal/upstream"
	"findash/internal/upstream/alphavantage"
	"findash/internal/upstream/finnhub"
	"findash/internal/upstream/newsapi"
	"findash/internal/web"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if os.Getenv("LOG_PRETTY") != "" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if !cfg.AlphaVantage.Enabled() {
		log.Warn().Msg("ALPHAVANTAGE_API_KEY not set, market data endpoints will fail")
	}
	if !cfg.News.Enabled() {
		log.Warn().Msg("NEWS_API_KEY not set, news endpoints will fail")
	}

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("open store")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	httpClient := httpx.New(timeout)

	market := alphavantage.New(cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
		alphavantage.WithHTTPClient(httpClient.HTTP),
		alphavantage.WithRetry(cfg.AlphaVantage.Attempts, time.Duration(cfg.AlphaVantage.BackoffMs)*time.Millisecond),
	)

	var newsAdapter upstream.News
	switch cfg.News.Source {
	case "finnhub":
		newsAdapter = finnhub.New(finnhub.Config{
			APIKey:   cfg.News.APIKey,
			BaseURL:  cfg.News.Endpoint,
			Attempts: cfg.News.Attempts,
			Backoff:  time.Duration(cfg.News.BackoffMs) * time.Millisecond,
		}, httpClient)
	default:
		newsAdapter = newsapi.New(newsapi.Config{
			APIKey:   cfg.News.APIKey,
			BaseURL:  cfg.News.Endpoint,
			Country:  cfg.News.Country,
			Attempts: cfg.News.Attempts,
			Backoff:  time.Duration(cfg.News.BackoffMs) * time.Millisecond,
		}, httpClient)
	}

	quotes := service.NewQuoteService(st, market, cfg.Cache.QuoteTTL(), log)
	history := service.NewHistoryService(st, market, log)
	company := service.NewCompanyService(st, market, cfg.Cache.CompanyTTL(), log)
	news := service.NewNewsService(st, newsAdapter, cfg.Cache.NewsTTL(), log)
	insights := service.NewInsightService(st, quotes, news, log)

	gin.SetMode(gin.ReleaseMode)
	handlers := web.NewHandlers(quotes, history, company, news, insights, st, cfg.Dashboard.Tickers, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("news_source", newsAdapter.Name()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
