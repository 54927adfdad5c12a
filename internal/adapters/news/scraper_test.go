package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/forecastbot/internal/domain"
	"github.com/alejandrodnm/forecastbot/internal/platform/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsHTML = `<html><body><ul>
<li class="stream-item">
  <a href="/news/alphabet-capex-123.html"><h3>Alphabet boosts AI   capex</h3></a>
  <p>Google parent plans to spend $75 billion this year.</p>
  <div class="publishing">Reuters • 3 hours ago</div>
</li>
<li class="stream-item ad"><div>Sponsored</div></li>
<li class="stream-item">
  <a href="https://example.com/story"><h3>Search antitrust ruling looms</h3></a>
  <div class="publishing">Bloomberg • yesterday</div>
</li>
<li class="stream-item">
  <a href="/news/x.html"><h3>Waymo expands to Austin</h3></a>
  <p>Robotaxi service grows.</p>
  <div class="publishing">Yahoo Finance</div>
  <time datetime="2025-03-01T08:00:00Z"></time>
</li>
</ul></body></html>`

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestScraper(srv *httptest.Server) *Scraper {
	s := NewScraper(srv.URL+"/quote/{symbol}/news/", Selectors{}, httpx.Options{
		RatePerSec:     1000,
		InitialBackoff: time.Millisecond,
	})
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestFetchNews_ExtractsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/GOOGL/news/", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte(newsHTML))
	}))
	defer srv.Close()

	items, err := newTestScraper(srv).FetchNews(context.Background(), "GOOGL", 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Alphabet boosts AI capex", items[0].Title)
	assert.Equal(t, "Reuters", items[0].Source)
	assert.Equal(t, "2025-03-10", items[0].Date)
	assert.Equal(t, srv.URL+"/news/alphabet-capex-123.html", items[0].URL)

	assert.Equal(t, domain.NoSummary, items[1].Summary)
	assert.Equal(t, "2025-03-09", items[1].Date)
	assert.Equal(t, "https://example.com/story", items[1].URL)

	assert.Equal(t, "Yahoo Finance", items[2].Source)
	assert.Equal(t, "2025-03-01", items[2].Date)
}

func TestFetchNews_RespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsHTML))
	}))
	defer srv.Close()

	items, err := newTestScraper(srv).FetchNews(context.Background(), "GOOGL", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetchNews_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestScraper(srv).FetchNews(context.Background(), "GOOGL", 5)
	assert.Error(t, err)
}

func TestRelativeDate(t *testing.T) {
	cases := map[string]string{
		"":              "2025-03-10",
		"5 minutes ago": "2025-03-10",
		"an hour ago":   "2025-03-10",
		"13 hours ago":  "2025-03-09",
		"2 days ago":    "2025-03-08",
		"1 week ago":    "2025-03-03",
		"2 months ago":  "2025-01-10",
		"yesterday":     "2025-03-09",
		"2025-02-27":    "2025-02-27",
	}
	for in, want := range cases {
		assert.Equal(t, want, relativeDate(in, fixedNow), in)
	}
}
