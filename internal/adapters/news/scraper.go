package news

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/alejandrodnm/forecastbot/internal/domain"
	"github.com/alejandrodnm/forecastbot/internal/platform/httpx"
)

const (
	defaultURLTemplate = "https://finance.yahoo.com/quote/{symbol}/news/"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Selectors son los selectores CSS de la página de noticias.
type Selectors struct {
	Item       string
	Title      string
	Link       string
	Summary    string
	Publishing string // "Fuente • hace 3 horas"
	Time       string // <time datetime="…">, si existe
}

// DefaultSelectors funcionan con el markup actual de Yahoo Finance.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:       "li.stream-item",
		Title:      "h3",
		Link:       "a",
		Summary:    "p",
		Publishing: "div.publishing",
		Time:       "time",
	}
}

// Scraper implementa ports.NewsProvider scrapeando una página HTML de titulares.
type Scraper struct {
	http        *httpx.Client
	urlTemplate string
	selectors   Selectors
	now         func() time.Time
}

// NewScraper crea un Scraper. urlTemplate debe contener {symbol}.
func NewScraper(urlTemplate string, selectors Selectors, opts httpx.Options) *Scraper {
	if urlTemplate == "" {
		urlTemplate = defaultURLTemplate
	}
	if selectors.Item == "" {
		selectors = DefaultSelectors()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Scraper{
		http:        httpx.New(opts),
		urlTemplate: urlTemplate,
		selectors:   selectors,
		now:         time.Now,
	}
}

// FetchNews devuelve hasta limit titulares para symbol, en el orden de la página.
func (s *Scraper) FetchNews(ctx context.Context, symbol string, limit int) ([]domain.NewsItem, error) {
	pageURL := strings.ReplaceAll(s.urlTemplate, "{symbol}", url.PathEscape(symbol))

	body, err := s.http.Get(ctx, pageURL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("news.FetchNews: %s: %w", symbol, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("news.FetchNews: parse html: %w", err)
	}

	items := s.extract(doc, pageURL, limit)
	slog.Debug("news scraped", "symbol", symbol, "items", len(items), "url", pageURL)
	return items, nil
}

func (s *Scraper) extract(doc *goquery.Document, pageURL string, limit int) []domain.NewsItem {
	base, _ := url.Parse(pageURL)
	sel := s.selectors

	var items []domain.NewsItem
	doc.Find(sel.Item).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if limit > 0 && len(items) >= limit {
			return false
		}

		title := clean(el.Find(sel.Title).First().Text())
		if title == "" {
			return true // anuncios y placeholders
		}

		item := domain.NewsItem{
			Title:   title,
			Summary: clean(el.Find(sel.Summary).First().Text()),
		}
		if item.Summary == "" {
			item.Summary = domain.NoSummary
		}

		if href, ok := el.Find(sel.Link).First().Attr("href"); ok && base != nil {
			if ref, err := url.Parse(href); err == nil {
				item.URL = base.ResolveReference(ref).String()
			}
		}

		source, when := splitPublishing(clean(el.Find(sel.Publishing).First().Text()))
		item.Source = source
		if dt, ok := el.Find(sel.Time).First().Attr("datetime"); ok && dt != "" {
			item.Date = domain.NormalizePubDate(dt)
		} else {
			item.Date = relativeDate(when, s.now())
		}

		items = append(items, item)
		return true
	})
	return items
}

// splitPublishing separa "Reuters • 3 hours ago" en fuente y fecha.
func splitPublishing(s string) (source, when string) {
	for _, sep := range []string{"•", "·", "|"} {
		if i := strings.Index(s, sep); i >= 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		}
	}
	return s, ""
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
