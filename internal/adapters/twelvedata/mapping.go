package twelvedata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// mapTimeSeries convierte los valores del DTO a barras ordenadas por fecha asc.
// Un cierre o fecha no parseable invalida toda la respuesta.
func mapTimeSeries(raw []timeSeriesValue) ([]domain.PriceBar, error) {
	bars := make([]domain.PriceBar, 0, len(raw))
	for _, v := range raw {
		date, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("%w: datetime %q", domain.ErrMalformedInput, v.Datetime)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(v.Close), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: close %q at %s", domain.ErrMalformedInput, v.Close, v.Datetime)
		}
		bars = append(bars, domain.PriceBar{Date: date, Close: closePrice})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	return bars, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown datetime layout")
}

func mapProfile(symbol string, p profileResponse) domain.CompanyInfo {
	info := domain.CompanyInfo{Symbol: symbol}
	info.Name = nonEmpty(p.Name)
	info.Market = nonEmpty(p.Exchange)
	info.Sector = nonEmpty(p.Sector)
	info.Industry = nonEmpty(p.Industry)
	info.Employees = null.IntFromPtr(p.Employees)
	return info
}

// applyStatistics vuelca /statistics sobre info. Los campos ausentes quedan null.
func applyStatistics(info *domain.CompanyInfo, r statisticsResponse) {
	s := r.Statistics
	f := null.FloatFromPtr

	info.MarketCap = f(s.Valuations.MarketCap)
	info.EnterpriseValue = f(s.Valuations.EnterpriseValue)
	info.TrailingPE = f(s.Valuations.TrailingPE)
	info.ForwardPE = f(s.Valuations.ForwardPE)
	info.PriceToSalesTrailing = f(s.Valuations.PriceToSalesTTM)
	info.PriceToBook = f(s.Valuations.PriceToBookMRQ)
	info.EnterpriseToRevenue = f(s.Valuations.EnterpriseToRevenue)
	info.EnterpriseToEbitda = f(s.Valuations.EnterpriseToEbitda)

	info.ProfitMargins = f(s.Financials.ProfitMargin)
	info.OperatingMargins = f(s.Financials.OperatingMargin)
	info.GrossMargins = f(s.Financials.GrossMargin)
	info.ReturnOnAssets = f(s.Financials.ReturnOnAssets)
	info.ReturnOnEquity = f(s.Financials.ReturnOnEquity)
	info.TotalRevenue = f(s.Financials.Income.RevenueTTM)
	info.RevenuePerShare = f(s.Financials.Income.RevenuePerShare)
	info.RevenueQuarterlyGrowth = f(s.Financials.Income.RevenueQoQ)
	info.GrossProfits = f(s.Financials.Income.GrossProfitTTM)
	info.EBITDA = f(s.Financials.Income.EBITDA)
	info.TrailingEps = f(s.Financials.Income.DilutedEPSTTM)
	info.EarningsQuarterlyGrowth = f(s.Financials.Income.EarningsQoQ)
	info.TotalCash = f(s.Financials.BalanceSheet.TotalCash)
	info.TotalCashPerShare = f(s.Financials.BalanceSheet.TotalCashPerShare)
	info.TotalDebt = f(s.Financials.BalanceSheet.TotalDebt)
	info.DebtToEquity = f(s.Financials.BalanceSheet.DebtToEquity)
	info.CurrentRatio = f(s.Financials.BalanceSheet.CurrentRatio)
	info.OperatingCashflow = f(s.Financials.CashFlow.OperatingCashFlow)
	info.FreeCashflow = f(s.Financials.CashFlow.FreeCashFlow)

	info.SharesOutstanding = f(s.Stock.SharesOutstanding)
	info.AverageVolume10Days = f(s.Stock.AvgVolume10)
	info.AverageVolume = f(s.Stock.AvgVolume90)
	info.ShortRatio = f(s.Stock.ShortRatio)
	info.SharesPercentSharesOut = f(s.Stock.ShortPercentShares)
	info.ShortPercentOfFloat = f(s.Stock.ShortPercentOfFloat)
	info.HeldPercentInsiders = f(s.Stock.HeldByInsiders)
	info.HeldPercentInstitutions = f(s.Stock.HeldByInstitutions)

	info.FiftyTwoWeekLow = f(s.PriceSummary.FiftyTwoWeekLow)
	info.FiftyTwoWeekHigh = f(s.PriceSummary.FiftyTwoWeekHigh)
	info.FiftyTwoWeekChange = f(s.PriceSummary.FiftyTwoWeekChange)
	info.Beta = f(s.PriceSummary.Beta)
	info.FiftyDayAverage = f(s.PriceSummary.Day50MA)
	info.TwoHundredDayAverage = f(s.PriceSummary.Day200MA)

	info.DividendRate = f(s.Dividends.ForwardRate)
	info.DividendYield = f(s.Dividends.ForwardYield)
	info.TrailingAnnualDividendRate = f(s.Dividends.TrailingRate)
	info.TrailingAnnualDividendYield = f(s.Dividends.TrailingYield)
	info.PayoutRatio = f(s.Dividends.PayoutRatio)
}

// maxYears es cuántos ejercicios se guardan en las listas list_*.
const maxYears = 4

// applyIncomeStatements rellena las listas list_financial_* con los últimos
// maxYears ejercicios, del más antiguo al más reciente.
func applyIncomeStatements(info *domain.CompanyInfo, rows []incomeStatement) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].FiscalDate < rows[j].FiscalDate })
	if len(rows) > maxYears {
		rows = rows[len(rows)-maxYears:]
	}
	for _, r := range rows {
		info.FinancialResearchDevelopment = append(info.FinancialResearchDevelopment, null.FloatFromPtr(r.OperatingExpense.ResearchAndDevelopment))
		info.FinancialNetIncome = append(info.FinancialNetIncome, null.FloatFromPtr(r.NetIncome))
		info.FinancialGrossProfit = append(info.FinancialGrossProfit, null.FloatFromPtr(r.GrossProfit))
		info.FinancialOperatingIncome = append(info.FinancialOperatingIncome, null.FloatFromPtr(r.OperatingIncome))
		info.FinancialTotalRevenue = append(info.FinancialTotalRevenue, null.FloatFromPtr(r.Sales))
		info.FinancialCostOfRevenue = append(info.FinancialCostOfRevenue, null.FloatFromPtr(r.CostOfGoods))
	}
}

// applyBalanceSheets rellena las listas list_balancesheet_*; mismo orden.
func applyBalanceSheets(info *domain.CompanyInfo, rows []balanceSheet) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].FiscalDate < rows[j].FiscalDate })
	if len(rows) > maxYears {
		rows = rows[len(rows)-maxYears:]
	}
	for _, r := range rows {
		info.BalanceTotalLiab = append(info.BalanceTotalLiab, null.FloatFromPtr(r.Liabilities.TotalLiabilities))
		info.BalanceTotalStockholderEquity = append(info.BalanceTotalStockholderEquity, null.FloatFromPtr(r.ShareholdersEquity.TotalShareholdersEquity))
		info.BalanceTotalAssets = append(info.BalanceTotalAssets, null.FloatFromPtr(r.Assets.TotalAssets))
	}
}

// emptyLists deja [] en las listas sin datos, como hace el artefacto original.
func emptyLists(info *domain.CompanyInfo) {
	for _, l := range []*[]null.Float{
		&info.FinancialResearchDevelopment, &info.FinancialNetIncome, &info.FinancialGrossProfit,
		&info.FinancialOperatingIncome, &info.FinancialTotalRevenue, &info.FinancialCostOfRevenue,
		&info.BalanceTotalLiab, &info.BalanceTotalStockholderEquity, &info.BalanceTotalAssets,
	} {
		if *l == nil {
			*l = []null.Float{}
		}
	}
}

func nonEmpty(s string) null.String {
	return null.NewString(s, strings.TrimSpace(s) != "")
}
