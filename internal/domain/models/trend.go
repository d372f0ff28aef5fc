package models

// TrendDirection is the per-bar and macro trend classification.
type TrendDirection string

const (
	TrendBull    TrendDirection = "Bull"
	TrendBear    TrendDirection = "Bear"
	TrendNeutral TrendDirection = "Neutral"
)

// Alignment combines the macro trend with the latest single trend day.
type Alignment string

const (
	AlignedLong  Alignment = "AlignedLong"
	AlignedShort Alignment = "AlignedShort"
	CounterLong  Alignment = "CounterLong"
	CounterShort Alignment = "CounterShort"
	AlignNeutral Alignment = "Neutral"
)

// Location buckets the last close within the lookback high-low range.
type Location string

const (
	LocationDiscount Location = "Discount"
	LocationMid      Location = "Mid"
	LocationPremium  Location = "Premium"
)

// MacroTrendDiagnostics exposes the counts behind the macro classification.
type MacroTrendDiagnostics struct {
	Window      int     `json:"window"`
	BullDays    int     `json:"bull_days"`
	BearDays    int     `json:"bear_days"`
	NeutralDays int     `json:"neutral_days"`
	BullRatio   float64 `json:"bull_ratio"`
	BearRatio   float64 `json:"bear_ratio"`
}

// TrendAnalysis is the full trend context recomputed on every scan.
type TrendAnalysis struct {
	MacroTrend     TrendDirection        `json:"macro_trend"`
	LatestTrendDay TrendDirection        `json:"latest_trend_day"`
	Alignment      Alignment             `json:"alignment"`
	Location       Location              `json:"location"`
	ATR20          float64               `json:"atr20"`
	Diagnostics    MacroTrendDiagnostics `json:"macro_trend_diagnostics"`
}
