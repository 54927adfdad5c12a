package domain

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

const (
	ShortMAWindow = 5
	LongMAWindow  = 20
)

// PriceBar es un cierre diario del proveedor de mercado.
type PriceBar struct {
	Date  time.Time
	Close float64
}

// MovingAverageSnapshot es el artefacto <SYMBOL>_Moving_Average.json.
type MovingAverageSnapshot struct {
	Stock            string  `json:"Stock"`
	RecentClosePrice float64 `json:"Recent_Close_Price"`
	MA5              float64 `json:"MA_5"`
	MA20             float64 `json:"MA_20"`
	Date             string  `json:"Date"`
}

// SimpleMovingAverage devuelve la media móvil de ventana fija alineada con
// values. Las primeras window-1 posiciones quedan null.
func SimpleMovingAverage(values []float64, window int) []null.Float {
	out := make([]null.Float, len(values))
	if window <= 0 {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = null.FloatFrom(sum / float64(window))
		}
	}
	return out
}

// MovingAverages calcula MA_5 y MA_20 sobre los cierres (ya ordenados por
// fecha) y devuelve el snapshot de la última barra. asOf es la fecha de corte
// que se reporta (el día hábil anterior en el flujo normal).
func MovingAverages(symbol string, bars []PriceBar, asOf time.Time) (MovingAverageSnapshot, error) {
	if len(bars) == 0 {
		return MovingAverageSnapshot{}, fmt.Errorf("domain.MovingAverages: %s no bars: %w", symbol, ErrInsufficientData)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	last := len(closes) - 1
	ma5 := SimpleMovingAverage(closes, ShortMAWindow)[last]
	ma20 := SimpleMovingAverage(closes, LongMAWindow)[last]
	if !ma5.Valid || !ma20.Valid {
		return MovingAverageSnapshot{}, fmt.Errorf("domain.MovingAverages: %s bars=%d need %d: %w",
			symbol, len(bars), LongMAWindow, ErrInsufficientData)
	}

	return MovingAverageSnapshot{
		Stock:            symbol,
		RecentClosePrice: closes[last],
		MA5:              ma5.Float64,
		MA20:             ma20.Float64,
		Date:             asOf.Format(time.DateOnly),
	}, nil
}

// PreviousTradingDay devuelve el día hábil anterior a t (salta fines de semana).
func PreviousTradingDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
