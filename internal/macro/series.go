package macro

// SeriesInfo describes one tracked FRED series.
type SeriesInfo struct {
	ID        string
	Name      string
	Frequency string
	Category  string
}

// Catalog lists every macro series the feature builder consumes. Order is
// stable so derived feature sets are deterministic.
var Catalog = []SeriesInfo{
	// Growth
	{ID: "GDPC1", Name: "Real GDP", Frequency: "quarterly", Category: "growth"},
	{ID: "INDPRO", Name: "Industrial Production", Frequency: "monthly", Category: "growth"},
	{ID: "TCU", Name: "Capacity Utilization", Frequency: "monthly", Category: "growth"},
	{ID: "RSXFS", Name: "Retail Sales Ex Food Services", Frequency: "monthly", Category: "growth"},
	{ID: "DGORDER", Name: "Durable Goods Orders", Frequency: "monthly", Category: "growth"},
	{ID: "USSLIND", Name: "Leading Index", Frequency: "monthly", Category: "growth"},

	// Labor market
	{ID: "UNRATE", Name: "Unemployment Rate", Frequency: "monthly", Category: "labor"},
	{ID: "PAYEMS", Name: "Total Nonfarm Payrolls", Frequency: "monthly", Category: "labor"},
	{ID: "ICSA", Name: "Initial Jobless Claims", Frequency: "weekly", Category: "labor"},
	{ID: "CIVPART", Name: "Labor Force Participation", Frequency: "monthly", Category: "labor"},
	{ID: "JTSJOL", Name: "Job Openings", Frequency: "monthly", Category: "labor"},

	// Inflation
	{ID: "CPIAUCSL", Name: "CPI All Items", Frequency: "monthly", Category: "inflation"},
	{ID: "CPILFESL", Name: "Core CPI", Frequency: "monthly", Category: "inflation"},
	{ID: "PCEPI", Name: "PCE Price Index", Frequency: "monthly", Category: "inflation"},
	{ID: "PPIACO", Name: "Producer Price Index", Frequency: "monthly", Category: "inflation"},
	{ID: "DCOILWTICO", Name: "WTI Crude Oil", Frequency: "daily", Category: "inflation"},

	// Rates and yield curve
	{ID: "FEDFUNDS", Name: "Federal Funds Rate", Frequency: "monthly", Category: "rates"},
	{ID: "DGS10", Name: "10-Year Treasury", Frequency: "daily", Category: "rates"},
	{ID: "DGS2", Name: "2-Year Treasury", Frequency: "daily", Category: "rates"},
	{ID: "T10Y2Y", Name: "10Y-2Y Spread", Frequency: "daily", Category: "rates"},
	{ID: "T10Y3M", Name: "10Y-3M Spread", Frequency: "daily", Category: "rates"},
	{ID: "BAA10Y", Name: "Corporate Bond Spread", Frequency: "daily", Category: "rates"},

	// Sentiment
	{ID: "UMCSENT", Name: "Consumer Sentiment", Frequency: "monthly", Category: "sentiment"},
	{ID: "MANEMP", Name: "Manufacturing Employment", Frequency: "monthly", Category: "sentiment"},

	// Housing and credit
	{ID: "HOUST", Name: "Housing Starts", Frequency: "monthly", Category: "housing"},
	{ID: "PERMIT", Name: "Building Permits", Frequency: "monthly", Category: "housing"},
	{ID: "CSUSHPISA", Name: "Case-Shiller Home Price", Frequency: "monthly", Category: "housing"},
	{ID: "TOTALSL", Name: "Consumer Credit", Frequency: "monthly", Category: "credit"},

	// Money and financial conditions
	{ID: "M2SL", Name: "M2 Money Supply", Frequency: "monthly", Category: "money"},
	{ID: "NFCI", Name: "Financial Conditions Index", Frequency: "weekly", Category: "financial"},
	{ID: "STLFSI4", Name: "Financial Stress Index", Frequency: "weekly", Category: "financial"},
}
