package twelvedata

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const (
	timeSeriesPath = "/time_series"
	maxOutputSize  = 5000
)

// FetchDailyBars devuelve los cierres diarios de symbol en [from, to], ordenados asc.
func (c *Client) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.PriceBar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", "1day")
	params.Set("start_date", from.Format(time.DateOnly))
	params.Set("end_date", to.Format(time.DateOnly))
	params.Set("order", "ASC")
	params.Set("outputsize", fmt.Sprint(maxOutputSize))

	var resp timeSeriesResponse
	if err := c.get(ctx, timeSeriesPath, params, &resp); err != nil {
		return nil, fmt.Errorf("twelvedata.FetchDailyBars: %s: %w", symbol, err)
	}

	bars, err := mapTimeSeries(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("twelvedata.FetchDailyBars: %s: %w", symbol, err)
	}

	slog.Debug("fetched daily bars",
		"symbol", symbol,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
		"bars", len(bars),
	)
	return bars, nil
}
