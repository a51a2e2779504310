package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"findash/internal/config"
	"findash/internal/service"
	"findash/internal/store"
)

// trim deletes news articles past the retention window. Meant to run
// from cron; the server's read path never deletes.
func main() {
	var dbPath string
	var days int
	var configPath string

	flag.StringVar(&dbPath, "db", "", "sqlite database path (defaults to config)")
	flag.IntVar(&days, "days", 0, "retention window in days (defaults to config)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if dbPath == "" {
		dbPath = cfg.Storage.Path
	}
	if days <= 0 {
		days = cfg.News.RetentionDays
	}

	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("open store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	news := service.NewNewsService(st, nil, 0, log)
	removed, err := news.Trim(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("trim")
	}
	log.Info().Int64("removed", removed).Int("days", days).Msg("done")
}
