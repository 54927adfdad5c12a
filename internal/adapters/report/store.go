package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const (
	newsCSV       = "news.csv"
	defaultSymbol = "stock"
)

// ErrNotFound se devuelve al leer un artefacto que otro paso aún no escribió.
var ErrNotFound = errors.New("artifact not found")

// Store implementa ports.Artifacts como ficheros JSON/CSV/Markdown en un directorio.
type Store struct {
	dir string
}

// NewStore crea el directorio si no existe.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report.NewStore: mkdir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir devuelve el directorio de artefactos.
func (s *Store) Dir() string { return s.dir }

// AnalysisPath es final_<SYMBOL>_analysis.json (final_stock_analysis.json sin símbolo).
func (s *Store) AnalysisPath(symbol string) string {
	return s.path("final_" + fileSymbol(symbol) + "_analysis.json")
}

// WriteAnalysis escribe las filas combinadas, con nulls explícitos.
func (s *Store) WriteAnalysis(symbol string, results []domain.CombinedResult) (string, error) {
	if results == nil {
		results = []domain.CombinedResult{}
	}
	p := s.AnalysisPath(symbol)
	if err := writeJSON(p, results); err != nil {
		return "", fmt.Errorf("report.WriteAnalysis: %w", err)
	}
	return p, nil
}

// ReadAnalysis lee el artefacto de análisis.
func (s *Store) ReadAnalysis(symbol string) ([]domain.CombinedResult, error) {
	var out []domain.CombinedResult
	if err := readJSON(s.AnalysisPath(symbol), &out); err != nil {
		return nil, fmt.Errorf("report.ReadAnalysis: %w", err)
	}
	return out, nil
}

// WriteMovingAverage escribe <SYMBOL>_Moving_Average.json.
func (s *Store) WriteMovingAverage(snap domain.MovingAverageSnapshot) (string, error) {
	p := s.path(fileSymbol(snap.Stock) + "_Moving_Average.json")
	if err := writeJSON(p, snap); err != nil {
		return "", fmt.Errorf("report.WriteMovingAverage: %w", err)
	}
	return p, nil
}

// ReadMovingAverage lee <SYMBOL>_Moving_Average.json.
func (s *Store) ReadMovingAverage(symbol string) (domain.MovingAverageSnapshot, error) {
	var snap domain.MovingAverageSnapshot
	if err := readJSON(s.path(fileSymbol(symbol)+"_Moving_Average.json"), &snap); err != nil {
		return snap, fmt.Errorf("report.ReadMovingAverage: %w", err)
	}
	return snap, nil
}

// WriteCompanyInfo escribe <SYMBOL>_info.json.
func (s *Store) WriteCompanyInfo(info domain.CompanyInfo) (string, error) {
	p := s.path(fileSymbol(info.Symbol) + "_info.json")
	if err := writeJSON(p, info); err != nil {
		return "", fmt.Errorf("report.WriteCompanyInfo: %w", err)
	}
	return p, nil
}

// ReadCompanyInfo lee <SYMBOL>_info.json.
func (s *Store) ReadCompanyInfo(symbol string) (domain.CompanyInfo, error) {
	var info domain.CompanyInfo
	if err := readJSON(s.path(fileSymbol(symbol)+"_info.json"), &info); err != nil {
		return info, fmt.Errorf("report.ReadCompanyInfo: %w", err)
	}
	return info, nil
}

// WriteNews escribe <SYMBOL>_news.json y además news.csv (el último símbolo gana).
// Devuelve la ruta del JSON.
func (s *Store) WriteNews(symbol string, items []domain.NewsItem) (string, error) {
	if items == nil {
		items = []domain.NewsItem{}
	}
	p := s.path(fileSymbol(symbol) + "_news.json")
	if err := writeJSON(p, items); err != nil {
		return "", fmt.Errorf("report.WriteNews: %w", err)
	}

	f, err := os.Create(s.path(newsCSV))
	if err != nil {
		return "", fmt.Errorf("report.WriteNews: create csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&items, f); err != nil {
		return "", fmt.Errorf("report.WriteNews: marshal csv: %w", err)
	}
	return p, nil
}

// ReadNews lee <SYMBOL>_news.json.
func (s *Store) ReadNews(symbol string) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	if err := readJSON(s.path(fileSymbol(symbol)+"_news.json"), &items); err != nil {
		return nil, fmt.Errorf("report.ReadNews: %w", err)
	}
	return items, nil
}

// WriteRecommendation escribe <SYMBOL>_recommendation.md.
func (s *Store) WriteRecommendation(rec domain.Recommendation) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s one-week recommendation\n\n", rec.Symbol)
	fmt.Fprintf(&sb, "- model: %s\n- generated: %s\n\n", rec.Model, rec.CreatedAt.UTC().Format(time.RFC3339))
	if rec.Reasoning != "" {
		fmt.Fprintf(&sb, "## Reasoning\n\n%s\n\n", strings.TrimSpace(rec.Reasoning))
	}
	fmt.Fprintf(&sb, "## Recommendation\n\n%s\n", strings.TrimSpace(rec.Content))

	p := s.path(fileSymbol(rec.Symbol) + "_recommendation.md")
	if err := os.WriteFile(p, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("report.WriteRecommendation: %w", err)
	}
	return p, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func fileSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return defaultSymbol
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(symbol)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	// tmp + rename: los lectores nunca ven un fichero a medias
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %v: %w", filepath.Base(path), err, domain.ErrMalformedInput)
	}
	return nil
}
