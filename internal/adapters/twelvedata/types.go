package twelvedata

import "fmt"

// apiResponse es cualquier DTO que puede traer el sobre de error de la API.
type apiResponse interface {
	apiError() error
}

// envelope es el sobre común: {"status":"error","code":400,"message":"…"}.
type envelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError es un error devuelto en el cuerpo por Twelve Data.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twelvedata: code %d: %s", e.Code, e.Message)
}

func (e envelope) apiError() error {
	if e.Status != "error" {
		return nil
	}
	return &APIError{Code: e.Code, Message: e.Message}
}

type timeSeriesResponse struct {
	envelope
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []timeSeriesValue `json:"values"`
}

type timeSeriesValue struct {
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
}

type priceResponse struct {
	envelope
	Price string `json:"price"`
}

type profileResponse struct {
	envelope
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry"`
	Employees *int64 `json:"employees"`
}

type statisticsResponse struct {
	envelope
	Statistics struct {
		Valuations struct {
			MarketCap           *float64 `json:"market_capitalization"`
			EnterpriseValue     *float64 `json:"enterprise_value"`
			TrailingPE          *float64 `json:"trailing_pe"`
			ForwardPE           *float64 `json:"forward_pe"`
			PriceToSalesTTM     *float64 `json:"price_to_sales_ttm"`
			PriceToBookMRQ      *float64 `json:"price_to_book_mrq"`
			EnterpriseToRevenue *float64 `json:"enterprise_to_revenue"`
			EnterpriseToEbitda  *float64 `json:"enterprise_to_ebitda"`
		} `json:"valuations_metrics"`
		Financials struct {
			ProfitMargin    *float64 `json:"profit_margin"`
			OperatingMargin *float64 `json:"operating_margin"`
			GrossMargin     *float64 `json:"gross_margin"`
			ReturnOnAssets  *float64 `json:"return_on_assets_ttm"`
			ReturnOnEquity  *float64 `json:"return_on_equity_ttm"`
			Income          struct {
				RevenueTTM        *float64 `json:"revenue_ttm"`
				RevenuePerShare   *float64 `json:"revenue_per_share_ttm"`
				RevenueQoQ        *float64 `json:"quarterly_revenue_growth"`
				GrossProfitTTM    *float64 `json:"gross_profit_ttm"`
				EBITDA            *float64 `json:"ebitda"`
				DilutedEPSTTM     *float64 `json:"diluted_eps_ttm"`
				EarningsQoQ       *float64 `json:"quarterly_earnings_growth_yoy"`
			} `json:"income_statement"`
			BalanceSheet struct {
				TotalCash         *float64 `json:"total_cash_mrq"`
				TotalCashPerShare *float64 `json:"total_cash_per_share_mrq"`
				TotalDebt         *float64 `json:"total_debt_mrq"`
				DebtToEquity      *float64 `json:"total_debt_to_equity_mrq"`
				CurrentRatio      *float64 `json:"current_ratio_mrq"`
			} `json:"balance_sheet"`
			CashFlow struct {
				OperatingCashFlow *float64 `json:"operating_cash_flow_ttm"`
				FreeCashFlow      *float64 `json:"levered_free_cash_flow_ttm"`
			} `json:"cash_flow"`
		} `json:"financials"`
		Stock struct {
			SharesOutstanding   *float64 `json:"shares_outstanding"`
			AvgVolume10         *float64 `json:"avg_10_volume"`
			AvgVolume90         *float64 `json:"avg_90_volume"`
			ShortRatio          *float64 `json:"short_ratio"`
			ShortPercentShares  *float64 `json:"short_percent_of_shares_outstanding"`
			ShortPercentOfFloat *float64 `json:"short_percent_of_float"`
			HeldByInsiders      *float64 `json:"percent_held_by_insiders"`
			HeldByInstitutions  *float64 `json:"percent_held_by_institutions"`
		} `json:"stock_statistics"`
		PriceSummary struct {
			FiftyTwoWeekLow    *float64 `json:"fifty_two_week_low"`
			FiftyTwoWeekHigh   *float64 `json:"fifty_two_week_high"`
			FiftyTwoWeekChange *float64 `json:"fifty_two_week_change"`
			Beta               *float64 `json:"beta"`
			Day50MA            *float64 `json:"day_50_ma"`
			Day200MA           *float64 `json:"day_200_ma"`
		} `json:"stock_price_summary"`
		Dividends struct {
			ForwardRate   *float64 `json:"forward_annual_dividend_rate"`
			ForwardYield  *float64 `json:"forward_annual_dividend_yield"`
			TrailingRate  *float64 `json:"trailing_annual_dividend_rate"`
			TrailingYield *float64 `json:"trailing_annual_dividend_yield"`
			PayoutRatio   *float64 `json:"payout_ratio"`
		} `json:"dividends_and_splits"`
	} `json:"statistics"`
}

// incomeStatementResponse es /income_statement (anual, más reciente primero).
type incomeStatementResponse struct {
	envelope
	IncomeStatement []incomeStatement `json:"income_statement"`
}

type incomeStatement struct {
	FiscalDate       string   `json:"fiscal_date"`
	Sales            *float64 `json:"sales"`
	CostOfGoods      *float64 `json:"cost_of_goods"`
	GrossProfit      *float64 `json:"gross_profit"`
	OperatingIncome  *float64 `json:"operating_income"`
	NetIncome        *float64 `json:"net_income"`
	OperatingExpense struct {
		ResearchAndDevelopment *float64 `json:"research_and_development"`
	} `json:"operating_expense"`
}

// balanceSheetResponse es /balance_sheet (anual, más reciente primero).
type balanceSheetResponse struct {
	envelope
	BalanceSheet []balanceSheet `json:"balance_sheet"`
}

type balanceSheet struct {
	FiscalDate string `json:"fiscal_date"`
	Assets     struct {
		TotalAssets *float64 `json:"total_assets"`
	} `json:"assets"`
	Liabilities struct {
		TotalLiabilities *float64 `json:"total_liabilities"`
	} `json:"liabilities"`
	ShareholdersEquity struct {
		TotalShareholdersEquity *float64 `json:"total_shareholders_equity"`
	} `json:"shareholders_equity"`
}
