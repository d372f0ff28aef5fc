package analysis

import (
	"StructScan/internal/domain/models"
)

// TrendConfig carries the resolved trend windows and macro thresholds. It is
// built once at scan start and threaded explicitly into every computation.
type TrendConfig struct {
	Lookback      int
	ATRWindow     int
	BullThreshold float64
	BearThreshold float64
}

// ClassifyTrendDay classifies cur against prev. A trend day requires a break
// of the prior extreme with a close beyond it and no close beyond the
// opposite extreme. A break that closes back inside the prior range is a
// stop-hunt and stays Neutral.
func ClassifyTrendDay(prev, cur models.OhlcBar) models.TrendDirection {
	brokeHigh := cur.High > prev.High
	brokeLow := cur.Low < prev.Low
	closedAbove := cur.Close > prev.High
	closedBelow := cur.Close < prev.Low

	switch {
	case brokeHigh && closedAbove && !closedBelow:
		return models.TrendBull
	case brokeLow && closedBelow && !closedAbove:
		return models.TrendBear
	default:
		return models.TrendNeutral
	}
}

// MacroTrend applies the dominance rule over the trailing window of trend
// days: a side wins when its share of non-neutral days meets the threshold
// and strictly exceeds the opposing count.
func MacroTrend(bars []models.OhlcBar, cfg TrendConfig) (models.TrendDirection, models.MacroTrendDiagnostics) {
	diag := models.MacroTrendDiagnostics{Window: cfg.Lookback}
	if len(bars) < 2 {
		return models.TrendNeutral, diag
	}

	pairs := len(bars) - 1
	if cfg.Lookback > 0 && pairs > cfg.Lookback {
		pairs = cfg.Lookback
	}
	start := len(bars) - pairs
	for i := start; i < len(bars); i++ {
		switch ClassifyTrendDay(bars[i-1], bars[i]) {
		case models.TrendBull:
			diag.BullDays++
		case models.TrendBear:
			diag.BearDays++
		default:
			diag.NeutralDays++
		}
	}

	nonNeutral := diag.BullDays + diag.BearDays
	if nonNeutral == 0 {
		return models.TrendNeutral, diag
	}
	diag.BullRatio = float64(diag.BullDays) / float64(nonNeutral)
	diag.BearRatio = float64(diag.BearDays) / float64(nonNeutral)

	switch {
	case diag.BullRatio >= cfg.BullThreshold && diag.BullDays > diag.BearDays:
		return models.TrendBull, diag
	case diag.BearRatio >= cfg.BearThreshold && diag.BearDays > diag.BullDays:
		return models.TrendBear, diag
	default:
		return models.TrendNeutral, diag
	}
}

// AlignmentOf combines the macro trend with the latest trend day. The name
// follows the macro side; a counter day against a Bull macro is CounterLong.
func AlignmentOf(macro, day models.TrendDirection) models.Alignment {
	if macro == models.TrendNeutral || day == models.TrendNeutral {
		return models.AlignNeutral
	}
	switch {
	case macro == models.TrendBull && day == models.TrendBull:
		return models.AlignedLong
	case macro == models.TrendBear && day == models.TrendBear:
		return models.AlignedShort
	case macro == models.TrendBull:
		return models.CounterLong
	default:
		return models.CounterShort
	}
}

// LocationInRange buckets the last close within the lookback high-low range
// at thirds. A degenerate range lands in Mid.
func LocationInRange(bars []models.OhlcBar, lookback int) models.Location {
	if len(bars) == 0 {
		return models.LocationMid
	}
	if lookback <= 0 || lookback > len(bars) {
		lookback = len(bars)
	}
	window := bars[len(bars)-lookback:]
	lo, hi := window[0].Low, window[0].High
	for _, b := range window[1:] {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}
	if hi <= lo {
		return models.LocationMid
	}
	pos := (bars[len(bars)-1].Close - lo) / (hi - lo)
	switch {
	case pos < 1.0/3.0:
		return models.LocationDiscount
	case pos < 2.0/3.0:
		return models.LocationMid
	default:
		return models.LocationPremium
	}
}

// ATR is the simple average of true range over the window, using window-1
// true-range samples. Fewer than 2 bars yields 0.
func ATR(bars []models.OhlcBar, window int) float64 {
	if len(bars) < 2 || window < 2 {
		return 0
	}
	if window > len(bars) {
		window = len(bars)
	}
	start := len(bars) - window
	var sum float64
	for i := start + 1; i < len(bars); i++ {
		sum += trueRange(bars[i-1], bars[i])
	}
	return sum / float64(window-1)
}

func trueRange(prev, cur models.OhlcBar) float64 {
	tr := cur.High - cur.Low
	if d := abs(cur.High - prev.Close); d > tr {
		tr = d
	}
	if d := abs(cur.Low - prev.Close); d > tr {
		tr = d
	}
	return tr
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// AnalyzeTrend computes the full trend context for a bar window. Degenerate
// input (fewer than 2 bars) yields Neutral/Mid/0 with zeroed diagnostics.
func AnalyzeTrend(bars []models.OhlcBar, cfg TrendConfig) models.TrendAnalysis {
	if len(bars) < 2 {
		return models.TrendAnalysis{
			MacroTrend:     models.TrendNeutral,
			LatestTrendDay: models.TrendNeutral,
			Alignment:      models.AlignNeutral,
			Location:       models.LocationMid,
		}
	}

	macro, diag := MacroTrend(bars, cfg)
	day := ClassifyTrendDay(bars[len(bars)-2], bars[len(bars)-1])

	return models.TrendAnalysis{
		MacroTrend:     macro,
		LatestTrendDay: day,
		Alignment:      AlignmentOf(macro, day),
		Location:       LocationInRange(bars, cfg.Lookback),
		ATR20:          ATR(bars, cfg.ATRWindow),
		Diagnostics:    diag,
	}
}
