// Package alphavantage implements the market-data adapter against the
// Alpha Vantage HTTP API (GLOBAL_QUOTE, TIME_SERIES_DAILY, OVERVIEW).
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"findash/internal/upstream"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=alphavantage.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Alpha Vantage API. It retries rate-limited requests
// locally with exponential backoff before surfacing failure.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	attempts   int
	backoff    time.Duration
}

var _ upstream.MarketData = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRetry sets the rate-limit retry budget.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.backoff = backoff
	}
}

// New creates an Alpha Vantage client with the given API key.
func New(apiKey string, options ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		attempts:   3,
		backoff:    time.Second,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return "alphavantage" }

func (c *Client) FetchQuote(ctx context.Context, ticker string) (upstream.RawQuote, error) {
	var payload globalQuoteResponse
	err := c.get(ctx, url.Values{
		"function": []string{"GLOBAL_QUOTE"},
		"symbol":   []string{ticker},
	}, &payload)
	if err != nil {
		return upstream.RawQuote{}, err
	}
	g := payload.GlobalQuote
	if g.Symbol == "" && g.Price == "" {
		return upstream.RawQuote{}, &upstream.Error{
			Kind: upstream.KindNotFound, Provider: c.Name(),
			Err: fmt.Errorf("no quote for %q", ticker),
		}
	}
	return upstream.RawQuote{
		Provider:      c.Name(),
		Ticker:        ticker,
		Price:         g.Price,
		PreviousClose: g.PreviousClose,
		DayHigh:       g.High,
		DayLow:        g.Low,
		Volume:        g.Volume,
	}, nil
}

func (c *Client) FetchHistory(ctx context.Context, ticker, period string) ([]upstream.RawBar, error) {
	var payload timeSeriesResponse
	err := c.get(ctx, url.Values{
		"function":   []string{"TIME_SERIES_DAILY"},
		"symbol":     []string{ticker},
		"outputsize": []string{"compact"},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if len(payload.Series) == 0 {
		return nil, &upstream.Error{
			Kind: upstream.KindNotFound, Provider: c.Name(),
			Err: fmt.Errorf("no series for %q", ticker),
		}
	}

	dates := make([]string, 0, len(payload.Series))
	for d := range payload.Series {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if n := PeriodDays(period); len(dates) > n {
		dates = dates[len(dates)-n:]
	}

	out := make([]upstream.RawBar, 0, len(dates))
	for _, d := range dates {
		bar := payload.Series[d]
		out = append(out, upstream.RawBar{
			Date:   d,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}
	return out, nil
}

func (c *Client) FetchProfile(ctx context.Context, ticker string) (upstream.RawProfile, error) {
	var payload overviewResponse
	err := c.get(ctx, url.Values{
		"function": []string{"OVERVIEW"},
		"symbol":   []string{ticker},
	}, &payload)
	if err != nil {
		return upstream.RawProfile{}, err
	}
	if payload.Symbol == "" && payload.Name == "" {
		return upstream.RawProfile{}, &upstream.Error{
			Kind: upstream.KindNotFound, Provider: c.Name(),
			Err: fmt.Errorf("no overview for %q", ticker),
		}
	}
	return upstream.RawProfile{
		Provider:    c.Name(),
		Ticker:      ticker,
		Name:        payload.Name,
		Sector:      payload.Sector,
		Industry:    payload.Industry,
		MarketCap:   payload.MarketCap,
		PERatio:     payload.PERatio,
		Description: payload.Description,
		Website:     payload.Website,
	}, nil
}

// PeriodDays maps a dashboard period string to a bar count.
func PeriodDays(period string) int {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "1d":
		return 1
	case "5d":
		return 5
	case "", "7d":
		return 7
	case "1mo":
		return 22
	case "3mo":
		return 66
	case "1y":
		return 100 // compact output caps at 100 bars
	default:
		return 7
	}
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	return upstream.WithBackoff(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return &upstream.Error{Kind: upstream.KindMalformed, Provider: c.Name(), Err: err}
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return upstream.Classify(c.Name(), err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return upstream.ClassifyStatus(c.Name(), resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return upstream.Classify(c.Name(), err)
		}

		// Alpha Vantage reports throttling and bad symbols with 200s.
		var envelope struct {
			Note         string `json:"Note"`
			Information  string `json:"Information"`
			ErrorMessage string `json:"Error Message"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return &upstream.Error{Kind: upstream.KindMalformed, Provider: c.Name(), Err: err}
		}
		if envelope.Note != "" || envelope.Information != "" {
			return &upstream.Error{
				Kind: upstream.KindRateLimited, Provider: c.Name(),
				Err: fmt.Errorf("throttled: %s%s", envelope.Note, envelope.Information),
			}
		}
		if envelope.ErrorMessage != "" {
			return &upstream.Error{
				Kind: upstream.KindNotFound, Provider: c.Name(),
				Err: fmt.Errorf("%s", envelope.ErrorMessage),
			}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return &upstream.Error{Kind: upstream.KindMalformed, Provider: c.Name(), Err: err}
		}
		return nil
	})
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
}

type timeSeriesResponse struct {
	Series map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

type overviewResponse struct {
	Symbol      string `json:"Symbol"`
	Name        string `json:"Name"`
	Sector      string `json:"Sector"`
	Industry    string `json:"Industry"`
	MarketCap   string `json:"MarketCapitalization"`
	PERatio     string `json:"PERatio"`
	Description string `json:"Description"`
	Website     string `json:"OfficialSite"`
}
