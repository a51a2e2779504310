// Package newsapi implements the news adapter against NewsAPI.org
// top-headlines.
package newsapi

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
	APIKey  string
	BaseURL string
	Country string
	// Attempts and Backoff bound the local rate-limit retry loop.
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
		cfg.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Client{cfg: cfg, client: hc}
}

func (c *Client) Name() string { return "newsapi" }

func (c *Client) FetchBatch(ctx context.Context, category string, limit int) ([]upstream.RawArticle, error) {
	if category == "" {
		category = "business"
	}
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"category": []string{category},
		"country":  []string{c.cfg.Country},
		"pageSize": []string{fmt.Sprint(limit)},
		"apiKey":   []string{c.cfg.APIKey},
	}
	endpoint := c.cfg.BaseURL + "/top-headlines?" + params.Encode()

	var payload headlinesResponse
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
		payload = headlinesResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return &upstream.Error{Kind: upstream.KindMalformed, Provider: c.Name(), Err: err}
		}
		if payload.Status != "ok" {
			kind := upstream.KindNetwork
			if payload.Code == "rateLimited" {
				kind = upstream.KindRateLimited
			}
			return &upstream.Error{
				Kind: kind, Provider: c.Name(),
				Err: fmt.Errorf("%s: %s", payload.Code, payload.Message),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]upstream.RawArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		out = append(out, upstream.RawArticle{
			Provider:    c.Name(),
			Title:       a.Title,
			Summary:     a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return out, nil
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}
