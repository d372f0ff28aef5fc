package models

import "math"

// DepthBucket is a discretized retracement depth band.
type DepthBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Depth buckets in ascending order. The last bucket is open-ended: depths at
// or beyond the full prior range signal a sweep of the prior session.
var DepthBuckets = []DepthBucket{
	{Label: "<38.2", Min: 0, Max: 0.382},
	{Label: "38.2-50", Min: 0.382, Max: 0.5},
	{Label: "50-61.8", Min: 0.5, Max: 0.618},
	{Label: "61.8-78.6", Min: 0.618, Max: 0.786},
	{Label: "78.6-100", Min: 0.786, Max: 1.0},
	{Label: "1.0+", Min: 1.0, Max: math.Inf(1)},
}

// BucketForDepth maps a depth ratio to its bucket. Depths are floored at zero
// by the analyzer, so the first bucket catches everything below 0.382.
func BucketForDepth(depth float64) DepthBucket {
	for _, b := range DepthBuckets[:len(DepthBuckets)-1] {
		if depth < b.Max {
			return b
		}
	}
	return DepthBuckets[len(DepthBuckets)-1]
}

// ScenarioKey labels a historical pullback record by the trend context as of
// the bar prior to the retrace. The retrace bar itself never contributes to
// its own key.
type ScenarioKey struct {
	MacroTrend TrendDirection `json:"macro_trend_prev"`
	TrendDay   TrendDirection `json:"trend_day_prev"`
	Alignment  Alignment      `json:"alignment_prev"`
}

// ScenarioStats summarizes historical pullback depths for one scenario.
type ScenarioStats struct {
	Key          ScenarioKey    `json:"key"`
	Mean         float64        `json:"mean"`
	Median       float64        `json:"median"`
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Samples      int            `json:"samples"`
	BucketCounts map[string]int `json:"bucket_counts"`
}

// PullbackSnapshot is the live retracement state plus the matching historical
// scenario statistics. DepthIntoPrevPct is nil when the macro trend is Neutral
// or the prior range is degenerate; it may exceed 1.0 on overshoot and must
// never be clamped.
type PullbackSnapshot struct {
	DepthIntoPrevPct *float64       `json:"depth_into_prev_pct,omitempty"`
	Bucket           *DepthBucket   `json:"bucket,omitempty"`
	Scenario         ScenarioKey    `json:"scenario"`
	Typical          *ScenarioStats `json:"typical,omitempty"`
	Lookback         int            `json:"lookback"`
}

// SweetspotTouch describes how today's range interacted with a zone band.
type SweetspotTouch string

const (
	TouchNone     SweetspotTouch = "not_touched"
	TouchIn       SweetspotTouch = "currently_in"
	TouchRejected SweetspotTouch = "touched_and_rejected"
)
