package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyInfo_AllKeysPresentAsNull(t *testing.T) {
	b, err := json.Marshal(CompanyInfo{Symbol: "GOOGL"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	keys := []string{
		"market", "sector", "industry", "recommendationKey",
		"sharesOutstanding", "averageVolume10days", "averageVolume", "heldPercentInstitutions",
		"shortRatio", "sharesPercentSharesOut", "shortPercentOfFloat",
		"marketCap", "currentPrice", "fiftyDayAverage", "twoHundredDayAverage",
		"fiftyTwoWeekHigh", "fiftyTwoWeekLow", "SandP52WeekChange", "52WeekChange",
		"ytdReturn", "fiveYearAverageReturn", "beta",
		"totalRevenue", "grossProfits", "revenuePerShare", "ebitda", "ebitdaMargins",
		"debtToEquity", "operatingCashflow", "freeCashflow", "totalCashPerShare",
		"currentRatio", "quickRatio", "returnOnAssets", "returnOnEquity",
		"grossMargins", "operatingMargins", "profitMargins", "totalCash", "totalDebt",
		"priceToBook", "enterpriseValue", "enterpriseToRevenue", "enterpriseToEbitda",
		"forwardEps", "trailingEps", "priceToSalesTrailing12Months", "forwardPE", "trailingPE",
		"dividendYield", "payoutRatio", "trailingAnnualDividendYield", "dividendRate",
		"trailingAnnualDividendRate", "revenueGrowth", "earningsGrowth",
		"earningsQuarterlyGrowth", "revenueQuarterlyGrowth", "heldPercentInsiders",
		"list_financial_ResearchDevelopment", "list_financial_NetIncome",
		"list_financial_GrossProfit", "list_financial_OperatingIncome",
		"list_financial_TotalRevenue", "list_financial_CostOfRevenue",
		"list_balancesheet_TotalLiab", "list_balancesheet_TotalStockholderEquity",
		"list_balancesheet_TotalAssets",
	}
	for _, k := range keys {
		v, ok := got[k]
		if assert.True(t, ok, "missing key %s", k) {
			assert.Nil(t, v, "key %s", k)
		}
	}
}
