package domain

import (
	"strings"
	"time"
)

// NoSummary se usa cuando la fuente no trae resumen.
const NoSummary = "No summary available"

// NewsItem es un titular reciente de un instrumento.
type NewsItem struct {
	Date    string `json:"date" csv:"date"`
	Title   string `json:"title" csv:"title"`
	Source  string `json:"source" csv:"source"`
	Summary string `json:"summary" csv:"summary"`
	URL     string `json:"url,omitempty" csv:"url"`
}

var pubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.DateOnly,
}

// NormalizePubDate convierte una fecha de publicación a YYYY-MM-DD.
// Si ningún layout encaja, devuelve los primeros 10 caracteres.
func NormalizePubDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.DateOnly)
		}
	}
	if len(raw) > 10 {
		return raw[:10]
	}
	return raw
}
