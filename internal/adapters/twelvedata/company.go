package twelvedata

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/guregu/null/v6"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const (
	profilePath         = "/profile"
	statisticsPath      = "/statistics"
	pricePath           = "/price"
	incomeStatementPath = "/income_statement"
	balanceSheetPath    = "/balance_sheet"
)

// FetchCompanyInfo combina /profile, /statistics, /price, /income_statement y
// /balance_sheet. El perfil es obligatorio; el resto es best-effort (según plan
// pueden no estar disponibles) y lo que falte queda null o [].
func (c *Client) FetchCompanyInfo(ctx context.Context, symbol string) (domain.CompanyInfo, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var profile profileResponse
	if err := c.get(ctx, profilePath, params, &profile); err != nil {
		return domain.CompanyInfo{}, fmt.Errorf("twelvedata.FetchCompanyInfo: profile %s: %w", symbol, err)
	}

	info := mapProfile(symbol, profile)

	var stats statisticsResponse
	if err := c.get(ctx, statisticsPath, params, &stats); err != nil {
		slog.Warn("statistics unavailable, continuing with profile only", "symbol", symbol, "err", err)
	} else {
		applyStatistics(&info, stats)
	}

	var price priceResponse
	if err := c.get(ctx, pricePath, params, &price); err != nil {
		slog.Warn("price unavailable", "symbol", symbol, "err", err)
	} else if p, err := strconv.ParseFloat(price.Price, 64); err == nil {
		info.CurrentPrice = null.FloatFrom(p)
	}

	yearly := url.Values{}
	yearly.Set("symbol", symbol)
	yearly.Set("period", "annual")

	var income incomeStatementResponse
	if err := c.get(ctx, incomeStatementPath, yearly, &income); err != nil {
		slog.Warn("income statement unavailable", "symbol", symbol, "err", err)
	} else {
		applyIncomeStatements(&info, income.IncomeStatement)
	}

	var balance balanceSheetResponse
	if err := c.get(ctx, balanceSheetPath, yearly, &balance); err != nil {
		slog.Warn("balance sheet unavailable", "symbol", symbol, "err", err)
	} else {
		applyBalanceSheets(&info, balance.BalanceSheet)
	}

	emptyLists(&info)
	return info, nil
}
