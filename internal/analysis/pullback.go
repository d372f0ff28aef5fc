package analysis

import (
	"math"
	"sort"

	"StructScan/internal/domain/models"
)

// PullbackConfig carries the historical lookback plus the trend settings used
// to label scenarios.
type PullbackConfig struct {
	Lookback int
	Trend    TrendConfig
}

// LiveDepth measures how far price has retraced into the prior bar's range.
// Bull macro measures down from the prior high, Bear up from the prior low.
// The result is floored at 0 but deliberately not capped: a depth above 1.0
// is an overshoot sweeping beyond the prior range and carries real signal.
// Returns nil when the macro trend is Neutral or the prior range is
// degenerate.
func LiveDepth(prev models.OhlcBar, price float64, macro models.TrendDirection) *float64 {
	r := prev.Range()
	if r <= 0 || !isFinite(price) {
		return nil
	}
	var depth float64
	switch macro {
	case models.TrendBull:
		depth = (prev.High - price) / r
	case models.TrendBear:
		depth = (price - prev.Low) / r
	default:
		return nil
	}
	if depth < 0 {
		depth = 0
	}
	return &depth
}

// PairDepth computes the historical depth of cur into prev using the
// overlap-plus-overshoot formula. ok is false when prev has no range.
func PairDepth(prev, cur models.OhlcBar) (float64, bool) {
	r := prev.Range()
	if r <= 0 {
		return 0, false
	}
	overlap := math.Min(prev.High, cur.High) - math.Max(prev.Low, cur.Low)
	if overlap < 0 {
		overlap = 0
	}
	overshoot := math.Max(math.Max(prev.Low-cur.Low, cur.High-prev.High), 0)
	return (overlap + overshoot) / r, true
}

// HistoricalScenarios groups per-pair depths over the lookback window by the
// trend scenario as of the prior bar. The retrace bar never contributes to
// its own scenario label: the key is classified from the bar prefix ending at
// the prior bar.
func HistoricalScenarios(bars []models.OhlcBar, cfg PullbackConfig) map[models.ScenarioKey]*models.ScenarioStats {
	depths := make(map[models.ScenarioKey][]float64)

	// Pair (i-1, i): the prior bar needs its own predecessor for the
	// trend-day label, so i starts at 2.
	first := len(bars) - cfg.Lookback
	if first < 2 {
		first = 2
	}
	for i := first; i < len(bars); i++ {
		d, ok := PairDepth(bars[i-1], bars[i])
		if !ok {
			continue
		}
		key := scenarioAsOf(bars[:i], cfg.Trend)
		depths[key] = append(depths[key], d)
	}

	out := make(map[models.ScenarioKey]*models.ScenarioStats, len(depths))
	for key, ds := range depths {
		out[key] = summarize(key, ds)
	}
	return out
}

// scenarioAsOf labels the trend context using only the given bar prefix.
func scenarioAsOf(prefix []models.OhlcBar, cfg TrendConfig) models.ScenarioKey {
	macro, _ := MacroTrend(prefix, cfg)
	day := ClassifyTrendDay(prefix[len(prefix)-2], prefix[len(prefix)-1])
	return models.ScenarioKey{
		MacroTrend: macro,
		TrendDay:   day,
		Alignment:  AlignmentOf(macro, day),
	}
}

func summarize(key models.ScenarioKey, ds []float64) *models.ScenarioStats {
	sorted := append([]float64(nil), ds...)
	sort.Float64s(sorted)

	var sum float64
	counts := make(map[string]int)
	for _, d := range ds {
		sum += d
		counts[models.BucketForDepth(d).Label]++
	}

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return &models.ScenarioStats{
		Key:          key,
		Mean:         sum / float64(n),
		Median:       median,
		Min:          sorted[0],
		Max:          sorted[n-1],
		Samples:      n,
		BucketCounts: counts,
	}
}

// BuildPullbackSnapshot assembles the live depth, its bucket, the scenario
// key as of the prior bar, and the matching historical statistics.
func BuildPullbackSnapshot(bars []models.OhlcBar, spot float64, macro models.TrendDirection, cfg PullbackConfig) models.PullbackSnapshot {
	snap := models.PullbackSnapshot{Lookback: cfg.Lookback}
	if len(bars) < 2 {
		return snap
	}

	prev := bars[len(bars)-2]
	if d := LiveDepth(prev, spot, macro); d != nil {
		snap.DepthIntoPrevPct = d
		b := models.BucketForDepth(*d)
		snap.Bucket = &b
	}

	// Scenario of the live session is keyed off the prior bar's context so
	// it is comparable with the historical groups.
	snap.Scenario = scenarioAsOf(bars[:len(bars)-1], cfg.Trend)

	if stats, ok := HistoricalScenarios(bars, cfg)[snap.Scenario]; ok {
		snap.Typical = stats
	}
	return snap
}

// SweetspotTouchState reports how today's range interacted with a zone band.
// Returns nil for a degenerate band or non-finite inputs.
func SweetspotTouchState(zoneLow, zoneHigh, dayLow, dayHigh, price float64) *models.SweetspotTouch {
	if zoneLow >= zoneHigh {
		return nil
	}
	for _, v := range []float64{zoneLow, zoneHigh, dayLow, dayHigh, price} {
		if !isFinite(v) {
			return nil
		}
	}
	var t models.SweetspotTouch
	switch {
	case dayHigh < zoneLow || dayLow > zoneHigh:
		t = models.TouchNone
	case price >= zoneLow && price <= zoneHigh:
		t = models.TouchIn
	default:
		t = models.TouchRejected
	}
	return &t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
