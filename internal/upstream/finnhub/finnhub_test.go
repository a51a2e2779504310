package finnhub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"findash/internal/httpx"
	"findash/internal/upstream"
	"findash/internal/upstream/finnhub"
)

func TestFetchBatch_MapsCategoryAndLimits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/news", r.URL.Path)
		// "business" is the dashboard default; Finnhub calls it general.
		require.Equal(t, "general", r.URL.Query().Get("category"))
		require.Equal(t, "test-key", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`[
			{"headline": "Fed holds rates", "summary": "No change.", "url": "https://example.com/fed", "source": "Finnhub", "datetime": 1740830400},
			{"headline": "Chip rally", "summary": "Semis up.", "url": "https://example.com/chips", "source": "Finnhub", "datetime": 1740834000},
			{"headline": "Oil slides", "summary": "", "url": "https://example.com/oil", "source": "Finnhub", "datetime": 1740837600}
		]`))
	}))
	defer srv.Close()

	client := finnhub.New(finnhub.Config{APIKey: "test-key", BaseURL: srv.URL}, httpx.New(2*time.Second))
	batch, err := client.FetchBatch(context.Background(), "business", 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.Equal(t, "Fed holds rates", batch[0].Title)
	require.Equal(t, "1740830400", batch[0].PublishedAt)
}

func TestFetchBatch_429IsRateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := finnhub.New(finnhub.Config{
		APIKey: "test-key", BaseURL: srv.URL,
		Attempts: 1, Backoff: time.Millisecond,
	}, httpx.New(2*time.Second))
	_, err := client.FetchBatch(context.Background(), "general", 5)
	require.True(t, upstream.IsKind(err, upstream.KindRateLimited), "got %v", err)
}
