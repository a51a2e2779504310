// Package finnhub implements the news adapter against the Finnhub
// market-news endpoint.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"findash/internal/httpx"
	"findash/internal/upstream"
)

type Config struct {
	APIKey   string
	BaseURL  string
	Attempts int
	Backoff  time.Duration
}

type Client struct {
	cfg    Config
	client *httpx.Client
}

var _ upstream.News = (*Client)(nil)

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://finnhub.io/api/v1"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Client{cfg: cfg, client: hc}
}

func (c *Client) Name() string { return "finnhub" }

func (c *Client) FetchBatch(ctx context.Context, category string, limit int) ([]upstream.RawArticle, error) {
	// Finnhub categories: general, forex, crypto, merger. The dashboard's
	// "business" maps onto general market news.
	if category == "" || category == "business" {
		category = "general"
	}
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"category": []string{category},
		"token":    []string{c.cfg.APIKey},
	}
	endpoint := c.cfg.BaseURL + "/news?" + params.Encode()

	var payload []newsItem
	err := upstream.WithBackoff(ctx, c.cfg.Attempts, c.cfg.Backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return &upstream.Error{Kind: upstream.KindMalformed, Provider: c.Name(), Err: err}
		}
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return upstream.Classify(c.Name(), err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return upstream.ClassifyStatus(c.Name(), resp.StatusCode)
		}
		payload = nil
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return &upstream.Error{Kind: upstream.KindMalformed, Provider: c.Name(), Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(payload) > limit {
		payload = payload[:limit]
	}
	out := make([]upstream.RawArticle, 0, len(payload))
	for _, item := range payload {
		out = append(out, upstream.RawArticle{
			Provider:    c.Name(),
			Title:       item.Headline,
			Summary:     item.Summary,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: fmt.Sprint(item.Datetime), // epoch seconds
		})
	}
	return out, nil
}

type newsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
}
