package model

import "time"

// Quote is a point-in-time market snapshot for a ticker. Rows are
// append-only; readers take the newest CapturedAt.
type Quote struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Ticker        string    `json:"ticker" gorm:"index:idx_quotes_ticker_captured,priority:1"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	Volume        int64     `json:"volume"`
	Complete      bool      `json:"complete"`
	CapturedAt    time.Time `json:"captured_at" gorm:"index:idx_quotes_ticker_captured,priority:2,sort:desc"`
}

func (Quote) TableName() string { return "quotes" }

// HistoryPoint is one bar of a historical price series. It is served
// straight from the upstream provider and never persisted.
type HistoryPoint struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// CompanyInfo holds the single profile row per ticker. It is upserted in
// place; LastUpdated always reflects the write time of the values present.
type CompanyInfo struct {
	Ticker      string    `json:"ticker" gorm:"primaryKey"`
	CompanyName string    `json:"company_name"`
	Sector      string    `json:"sector"`
	Industry    string    `json:"industry"`
	MarketCap   int64     `json:"market_cap"`
	PERatio     float64   `json:"pe_ratio"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Complete    bool      `json:"complete"`
	LastUpdated time.Time `json:"last_updated"`
}

func (CompanyInfo) TableName() string { return "company_info" }

// NewsArticle is an ingested article. Rows are append-only and URL
// uniqueness is not enforced; FetchedAt orders recency.
type NewsArticle struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at" gorm:"index:idx_news_fetched,sort:desc"`
}

func (NewsArticle) TableName() string { return "news" }

// AIInsight is a generated commentary record, kept as append-only history
// per (ticker, insight type).
type AIInsight struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Ticker      string    `json:"ticker" gorm:"index"`
	Content     string    `json:"content"`
	Sentiment   string    `json:"sentiment"`
	RiskLevel   string    `json:"risk_level"`
	InsightType string    `json:"insight_type"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (AIInsight) TableName() string { return "ai_insights" }
