package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// TimeSeriesRow es la observación de un instrumento en una fecha.
// Actual y Predicted comparten unidad monetaria; cualquiera puede faltar.
type TimeSeriesRow struct {
	Date      time.Time
	Actual    null.Float
	Predicted null.Float
}

// InstrumentSeries es la serie de un instrumento ordenada por fecha ascendente.
// Construir siempre con NewInstrumentSeries: "shift por horizonte" y "última
// fila" dependen del orden cronológico.
type InstrumentSeries struct {
	Instrument string
	Rows       []TimeSeriesRow
}

// NewInstrumentSeries copia y ordena las filas por fecha y valida que no haya
// fechas duplicadas. Los NaN se normalizan a "missing"; ±Inf es input corrupto.
func NewInstrumentSeries(instrument string, rows []TimeSeriesRow) (InstrumentSeries, error) {
	sorted := make([]TimeSeriesRow, len(rows))
	copy(sorted, rows)

	for i := range sorted {
		var err error
		if sorted[i].Actual, err = normalize(sorted[i].Actual); err != nil {
			return InstrumentSeries{}, fmt.Errorf("domain.NewInstrumentSeries: %s actual at %s: %w",
				instrument, sorted[i].Date.Format(time.DateOnly), err)
		}
		if sorted[i].Predicted, err = normalize(sorted[i].Predicted); err != nil {
			return InstrumentSeries{}, fmt.Errorf("domain.NewInstrumentSeries: %s predicted at %s: %w",
				instrument, sorted[i].Date.Format(time.DateOnly), err)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return InstrumentSeries{}, fmt.Errorf("domain.NewInstrumentSeries: %s duplicate date %s: %w",
				instrument, sorted[i].Date.Format(time.DateOnly), ErrMalformedInput)
		}
	}

	return InstrumentSeries{Instrument: instrument, Rows: sorted}, nil
}

// Len devuelve el número de filas.
func (s InstrumentSeries) Len() int {
	return len(s.Rows)
}

// Last devuelve la fila más reciente. ok=false si la serie está vacía.
func (s InstrumentSeries) Last() (TimeSeriesRow, bool) {
	if len(s.Rows) == 0 {
		return TimeSeriesRow{}, false
	}
	return s.Rows[len(s.Rows)-1], true
}

func normalize(v null.Float) (null.Float, error) {
	if !v.Valid {
		return v, nil
	}
	if math.IsNaN(v.Float64) {
		return null.Float{}, nil
	}
	if math.IsInf(v.Float64, 0) {
		return null.Float{}, ErrMalformedInput
	}
	return v, nil
}

// PredictionTable es la tabla de entrada ya tipada: instrumento → serie.
// Reemplaza el acceso dinámico por nombre de columna.
type PredictionTable struct {
	Series map[string]InstrumentSeries
}

// Lookup devuelve la serie del instrumento o ErrMissingColumn.
func (t PredictionTable) Lookup(instrument string) (InstrumentSeries, error) {
	s, ok := t.Series[instrument]
	if !ok {
		return InstrumentSeries{}, fmt.Errorf("domain.Lookup: %q: %w", instrument, ErrMissingColumn)
	}
	return s, nil
}

// Instruments devuelve los identificadores de la tabla en orden alfabético.
func (t PredictionTable) Instruments() []string {
	names := make([]string, 0, len(t.Series))
	for name := range t.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
