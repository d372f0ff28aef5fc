package models

// Requests for the scan HTTP endpoints. Defined in domain for consistency and
// reuse; zero-valued overrides fall back to configured defaults at scan start.

type ScanRequest struct {
	Symbol          string  `query:"symbol" json:"symbol" validate:"required"`
	CloseOverride   float64 `query:"close" json:"close" validate:"gte=0"`
	TrendLookback   int     `query:"trend_lookback" json:"trend_lookback" validate:"gte=0,lte=500"`
	ATRWindow       int     `query:"atr_window" json:"atr_window" validate:"gte=0,lte=200"`
	StructLookback  int     `query:"struct_lookback" json:"struct_lookback" validate:"gte=0,lte=500"`
	PullbackLookback int    `query:"pullback_lookback" json:"pullback_lookback" validate:"gte=0,lte=1000"`
	MinRR           float64 `query:"min_rr" json:"min_rr" validate:"gte=0,lte=20"`
}

type ScanAllRequest struct {
	TrendLookback    int     `query:"trend_lookback" json:"trend_lookback" validate:"gte=0,lte=500"`
	ATRWindow        int     `query:"atr_window" json:"atr_window" validate:"gte=0,lte=200"`
	StructLookback   int     `query:"struct_lookback" json:"struct_lookback" validate:"gte=0,lte=500"`
	PullbackLookback int     `query:"pullback_lookback" json:"pullback_lookback" validate:"gte=0,lte=1000"`
	MinRR            float64 `query:"min_rr" json:"min_rr" validate:"gte=0,lte=20"`
	NoCache          bool    `query:"no_cache" json:"no_cache"`
}
