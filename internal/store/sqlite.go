package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"findash/internal/model"
)

// SQLite is the GORM-backed Store implementation.
type SQLite struct {
	db *gorm.DB
}

var _ Store = (*SQLite)(nil)

// Open opens (creating if needed) the SQLite database at path and
// migrates the four cache tables.
func Open(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	if err := db.AutoMigrate(
		&model.Quote{},
		&model.CompanyInfo{},
		&model.NewsArticle{},
		&model.AIInsight{},
	); err != nil {
		return nil, &Error{Op: "migrate", Err: err}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) LatestQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	var q model.Quote
	err := s.db.WithContext(ctx).
		Where("ticker = ?", strings.ToUpper(ticker)).
		Order("captured_at DESC").
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "latest quote", Err: err}
	}
	return &q, nil
}

func (s *SQLite) InsertQuote(ctx context.Context, q *model.Quote) error {
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return &Error{Op: "insert quote", Err: err}
	}
	return nil
}

func (s *SQLite) QuoteRange(ctx context.Context, ticker string, since time.Time) ([]model.Quote, error) {
	var out []model.Quote
	err := s.db.WithContext(ctx).
		Where("ticker = ? AND captured_at >= ?", strings.ToUpper(ticker), since).
		Order("captured_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, &Error{Op: "quote range", Err: err}
	}
	return out, nil
}

func (s *SQLite) CompanyInfo(ctx context.Context, ticker string) (*model.CompanyInfo, error) {
	var info model.CompanyInfo
	err := s.db.WithContext(ctx).
		Where("ticker = ?", strings.ToUpper(ticker)).
		First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "company info", Err: err}
	}
	return &info, nil
}

func (s *SQLite) UpsertCompanyInfo(ctx context.Context, info *model.CompanyInfo) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			UpdateAll: true,
		}).
		Create(info).Error
	if err != nil {
		return &Error{Op: "upsert company info", Err: err}
	}
	return nil
}

func (s *SQLite) RecentNews(ctx context.Context, limit int) ([]model.NewsArticle, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []model.NewsArticle
	err := s.db.WithContext(ctx).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, &Error{Op: "recent news", Err: err}
	}
	return out, nil
}

func (s *SQLite) InsertNews(ctx context.Context, a *model.NewsArticle) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return &Error{Op: "insert news", Err: err}
	}
	return nil
}

func (s *SQLite) PurgeNews(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("fetched_at < ?", cutoff).
		Delete(&model.NewsArticle{})
	if res.Error != nil {
		return 0, &Error{Op: "purge news", Err: res.Error}
	}
	return res.RowsAffected, nil
}

func (s *SQLite) InsertInsight(ctx context.Context, ins *model.AIInsight) error {
	if err := s.db.WithContext(ctx).Create(ins).Error; err != nil {
		return &Error{Op: "insert insight", Err: err}
	}
	return nil
}

func (s *SQLite) LatestInsight(ctx context.Context, ticker, insightType string) (*model.AIInsight, error) {
	var ins model.AIInsight
	q := s.db.WithContext(ctx).Order("generated_at DESC")
	if ticker != "" {
		q = q.Where("ticker = ?", strings.ToUpper(ticker))
	}
	if insightType != "" {
		q = q.Where("insight_type = ?", insightType)
	}
	err := q.First(&ins).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "latest insight", Err: err}
	}
	return &ins, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &Error{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}
