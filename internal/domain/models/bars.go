package models

import "time"

// OhlcBar is a single daily bar for one symbol. Bars are always handled in
// ascending date order, one bar per calendar day.
type OhlcBar struct {
	Date       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	TickVolume float64
	Volume     float64
	Spread     float64
}

// Range returns the high-low span of the bar.
func (b OhlcBar) Range() float64 {
	return b.High - b.Low
}

// LiquidityMap holds the raw daily highs and lows over the structure lookback
// window. It is the swing-level search space for stop/target placement, not
// zone data.
type LiquidityMap struct {
	Highs []float64
	Lows  []float64
}
