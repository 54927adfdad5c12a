package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// PriceProvider obtiene cierres diarios del proveedor de mercado.
type PriceProvider interface {
	// FetchDailyBars devuelve las barras diarias en [from, to], ordenadas por fecha asc.
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.PriceBar, error)
}

// CompanyProvider obtiene los fundamentales de una compañía.
type CompanyProvider interface {
	FetchCompanyInfo(ctx context.Context, symbol string) (domain.CompanyInfo, error)
}

// NewsProvider obtiene los titulares más recientes de un símbolo.
type NewsProvider interface {
	FetchNews(ctx context.Context, symbol string, limit int) ([]domain.NewsItem, error)
}
