package predictions

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const (
	// DefaultDateColumn es la cabecera de fecha que produce el modelo upstream.
	DefaultDateColumn = "날짜"

	actualSuffix    = "_Actual"
	predictedSuffix = "_Predicted"
)

var fallbackDateColumns = []string{"Date", "date"}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// FileSource implementa ports.SeriesSource sobre el CSV ancho
// (fecha, <name>_Actual, <name>_Predicted, ...).
type FileSource struct {
	path       string
	dateColumn string
}

// NewFileSource crea el loader. dateColumn vacío usa DefaultDateColumn.
func NewFileSource(path, dateColumn string) *FileSource {
	if dateColumn == "" {
		dateColumn = DefaultDateColumn
	}
	return &FileSource{path: path, dateColumn: dateColumn}
}

// LoadTable lee el fichero y devuelve la tabla tipada.
func (s *FileSource) LoadTable(ctx context.Context) (domain.PredictionTable, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return domain.PredictionTable{}, fmt.Errorf("predictions.LoadTable: open %q: %w", s.path, err)
	}
	defer f.Close()

	table, err := Parse(ctx, f, s.dateColumn)
	if err != nil {
		return domain.PredictionTable{}, fmt.Errorf("predictions.LoadTable: %s: %w", s.path, err)
	}
	slog.Debug("prediction table loaded", "path", s.path, "instruments", len(table.Series))
	return table, nil
}

// Parse lee el CSV ancho de r. Un instrumento necesita ambas columnas
// (_Actual y _Predicted); los que solo tienen una se omiten y Lookup
// devolverá ErrMissingColumn para ellos.
func Parse(ctx context.Context, r io.Reader, dateColumn string) (domain.PredictionTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.PredictionTable{}, fmt.Errorf("empty file: %w", domain.ErrMalformedInput)
	}
	if err != nil {
		return domain.PredictionTable{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	dateIdx := columnIndex(header, dateColumn)
	for _, alt := range fallbackDateColumns {
		if dateIdx >= 0 {
			break
		}
		dateIdx = columnIndex(header, alt)
	}
	if dateIdx < 0 {
		return domain.PredictionTable{}, fmt.Errorf("date column %q not found: %w", dateColumn, domain.ErrMalformedInput)
	}

	cols := instrumentColumns(header)
	rows := make(map[string][]domain.TimeSeriesRow, len(cols))

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return domain.PredictionTable{}, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.PredictionTable{}, fmt.Errorf("line %d: %v: %w", line, err, domain.ErrMalformedInput)
		}

		date, err := parseDate(rec[dateIdx])
		if err != nil {
			return domain.PredictionTable{}, fmt.Errorf("line %d: date %q: %w", line, rec[dateIdx], domain.ErrMalformedInput)
		}

		for name, c := range cols {
			actual, err := parsePrice(rec[c.actual])
			if err != nil {
				return domain.PredictionTable{}, fmt.Errorf("line %d: %s%s %q: %w", line, name, actualSuffix, rec[c.actual], domain.ErrMalformedInput)
			}
			predicted, err := parsePrice(rec[c.predicted])
			if err != nil {
				return domain.PredictionTable{}, fmt.Errorf("line %d: %s%s %q: %w", line, name, predictedSuffix, rec[c.predicted], domain.ErrMalformedInput)
			}
			rows[name] = append(rows[name], domain.TimeSeriesRow{Date: date, Actual: actual, Predicted: predicted})
		}
	}

	table := domain.PredictionTable{Series: make(map[string]domain.InstrumentSeries, len(rows))}
	for name, rs := range rows {
		series, err := domain.NewInstrumentSeries(name, rs)
		if err != nil {
			return domain.PredictionTable{}, err
		}
		table.Series[name] = series
	}
	// instrumentos con cabecera pero sin filas
	for name := range cols {
		if _, ok := table.Series[name]; !ok {
			table.Series[name] = domain.InstrumentSeries{Instrument: name}
		}
	}
	return table, nil
}

type pair struct {
	actual, predicted int
}

// instrumentColumns empareja <name>_Actual con <name>_Predicted.
func instrumentColumns(header []string) map[string]pair {
	actual := map[string]int{}
	predicted := map[string]int{}
	for i, h := range header {
		switch {
		case strings.HasSuffix(h, actualSuffix):
			actual[strings.TrimSuffix(h, actualSuffix)] = i
		case strings.HasSuffix(h, predictedSuffix):
			predicted[strings.TrimSuffix(h, predictedSuffix)] = i
		}
	}

	out := make(map[string]pair, len(actual))
	var orphans []string
	for name, a := range actual {
		p, ok := predicted[name]
		if !ok {
			orphans = append(orphans, name+actualSuffix)
			continue
		}
		out[name] = pair{actual: a, predicted: p}
	}
	for name := range predicted {
		if _, ok := actual[name]; !ok {
			orphans = append(orphans, name+predictedSuffix)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		slog.Warn("unpaired prediction columns ignored", "columns", orphans)
	}
	return out
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format")
}

// parsePrice: vacío o NaN es missing; cualquier otro no numérico es error.
func parsePrice(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return null.Float{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(v), nil
}
