package domain

import "github.com/guregu/null/v6"

// CompanyInfo son los fundamentales que se pasan al recomendador.
// Las claves JSON siguen el vocabulario del artefacto <SYMBOL>_info.json;
// lo que el proveedor no devuelve queda null.
type CompanyInfo struct {
	Symbol    string      `json:"symbol"`
	Name      null.String `json:"name"`
	Market    null.String `json:"market"`
	Sector    null.String `json:"sector"`
	Industry  null.String `json:"industry"`
	Employees null.Int    `json:"fullTimeEmployees"`

	RecommendationKey null.String `json:"recommendationKey"`

	// Acciones y volumen
	SharesOutstanding       null.Float `json:"sharesOutstanding"`
	AverageVolume10Days     null.Float `json:"averageVolume10days"`
	AverageVolume           null.Float `json:"averageVolume"`
	HeldPercentInstitutions null.Float `json:"heldPercentInstitutions"`
	HeldPercentInsiders     null.Float `json:"heldPercentInsiders"`
	ShortRatio              null.Float `json:"shortRatio"`
	SharesPercentSharesOut  null.Float `json:"sharesPercentSharesOut"`
	ShortPercentOfFloat     null.Float `json:"shortPercentOfFloat"`

	// Precio
	MarketCap            null.Float `json:"marketCap"`
	CurrentPrice         null.Float `json:"currentPrice"`
	FiftyDayAverage      null.Float `json:"fiftyDayAverage"`
	TwoHundredDayAverage null.Float `json:"twoHundredDayAverage"`
	FiftyTwoWeekHigh     null.Float `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      null.Float `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekChange   null.Float `json:"52WeekChange"`
	SandP52WeekChange    null.Float `json:"SandP52WeekChange"`
	YtdReturn            null.Float `json:"ytdReturn"`
	FiveYearAvgReturn    null.Float `json:"fiveYearAverageReturn"`
	Beta                 null.Float `json:"beta"`

	// Resultados
	TotalRevenue            null.Float `json:"totalRevenue"`
	GrossProfits            null.Float `json:"grossProfits"`
	RevenuePerShare         null.Float `json:"revenuePerShare"`
	EBITDA                  null.Float `json:"ebitda"`
	EBITDAMargins           null.Float `json:"ebitdaMargins"`
	DebtToEquity            null.Float `json:"debtToEquity"`
	OperatingCashflow       null.Float `json:"operatingCashflow"`
	FreeCashflow            null.Float `json:"freeCashflow"`
	TotalCashPerShare       null.Float `json:"totalCashPerShare"`
	CurrentRatio            null.Float `json:"currentRatio"`
	QuickRatio              null.Float `json:"quickRatio"`
	ReturnOnAssets          null.Float `json:"returnOnAssets"`
	ReturnOnEquity          null.Float `json:"returnOnEquity"`
	GrossMargins            null.Float `json:"grossMargins"`
	OperatingMargins        null.Float `json:"operatingMargins"`
	ProfitMargins           null.Float `json:"profitMargins"`
	TotalCash               null.Float `json:"totalCash"`
	TotalDebt               null.Float `json:"totalDebt"`
	RevenueGrowth           null.Float `json:"revenueGrowth"`
	EarningsGrowth          null.Float `json:"earningsGrowth"`
	EarningsQuarterlyGrowth null.Float `json:"earningsQuarterlyGrowth"`
	RevenueQuarterlyGrowth  null.Float `json:"revenueQuarterlyGrowth"`

	// Valoración
	PriceToBook          null.Float `json:"priceToBook"`
	EnterpriseValue      null.Float `json:"enterpriseValue"`
	EnterpriseToRevenue  null.Float `json:"enterpriseToRevenue"`
	EnterpriseToEbitda   null.Float `json:"enterpriseToEbitda"`
	ForwardEps           null.Float `json:"forwardEps"`
	TrailingEps          null.Float `json:"trailingEps"`
	PriceToSalesTrailing null.Float `json:"priceToSalesTrailing12Months"`
	ForwardPE            null.Float `json:"forwardPE"`
	TrailingPE           null.Float `json:"trailingPE"`

	// Dividendos
	DividendRate                null.Float `json:"dividendRate"`
	DividendYield               null.Float `json:"dividendYield"`
	PayoutRatio                 null.Float `json:"payoutRatio"`
	TrailingAnnualDividendRate  null.Float `json:"trailingAnnualDividendRate"`
	TrailingAnnualDividendYield null.Float `json:"trailingAnnualDividendYield"`

	// Últimos cuatro ejercicios, del más antiguo al más reciente.
	FinancialResearchDevelopment  []null.Float `json:"list_financial_ResearchDevelopment"`
	FinancialNetIncome            []null.Float `json:"list_financial_NetIncome"`
	FinancialGrossProfit          []null.Float `json:"list_financial_GrossProfit"`
	FinancialOperatingIncome      []null.Float `json:"list_financial_OperatingIncome"`
	FinancialTotalRevenue         []null.Float `json:"list_financial_TotalRevenue"`
	FinancialCostOfRevenue        []null.Float `json:"list_financial_CostOfRevenue"`
	BalanceTotalLiab              []null.Float `json:"list_balancesheet_TotalLiab"`
	BalanceTotalStockholderEquity []null.Float `json:"list_balancesheet_TotalStockholderEquity"`
	BalanceTotalAssets            []null.Float `json:"list_balancesheet_TotalAssets"`
}
