package ports

import (
	"context"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// SeriesSource carga la tabla de precios actual vs. predicho.
type SeriesSource interface {
	// LoadTable devuelve la tabla validada. Un input corrupto (fecha no
	// parseable, precio no numérico) devuelve domain.ErrMalformedInput.
	LoadTable(ctx context.Context) (domain.PredictionTable, error)
}
