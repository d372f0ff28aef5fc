package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructScan/internal/domain/models"
)

func bar(o, h, l, c float64) models.OhlcBar {
	return models.OhlcBar{Open: o, High: h, Low: l, Close: c}
}

func TestClassifyTrendDay(t *testing.T) {
	prev := bar(100, 110, 100, 105)

	tests := []struct {
		name string
		cur  models.OhlcBar
		want models.TrendDirection
	}{
		{"break and close above", bar(105, 115, 104, 112), models.TrendBull},
		{"break and close below", bar(105, 106, 95, 97), models.TrendBear},
		{"stop hunt above stays neutral", bar(105, 115, 104, 108), models.TrendNeutral},
		{"stop hunt below stays neutral", bar(105, 106, 95, 103), models.TrendNeutral},
		{"inside bar", bar(104, 108, 102, 106), models.TrendNeutral},
		{"outside bar closing inside", bar(105, 115, 95, 104), models.TrendNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrendDay(prev, tt.cur))
		})
	}
}

// appendBull extends the series with a bar that breaks and closes above the
// last bar's high without breaking its low.
func appendBull(bars []models.OhlcBar) []models.OhlcBar {
	p := bars[len(bars)-1]
	return append(bars, bar(p.Close, p.High+2, p.Low+1, p.High+1))
}

func appendBear(bars []models.OhlcBar) []models.OhlcBar {
	p := bars[len(bars)-1]
	return append(bars, bar(p.Close, p.High-1, p.Low-2, p.Low-1))
}

func appendInside(bars []models.OhlcBar) []models.OhlcBar {
	p := bars[len(bars)-1]
	return append(bars, bar(p.Close, p.High-0.1, p.Low+0.1, (p.High+p.Low)/2))
}

func TestMacroTrendDominance(t *testing.T) {
	cfg := TrendConfig{Lookback: 20, BullThreshold: 0.6, BearThreshold: 0.6}

	bars := []models.OhlcBar{bar(100, 110, 100, 105)}
	for i := 0; i < 3; i++ {
		bars = appendBull(bars)
	}
	for i := 0; i < 2; i++ {
		bars = appendBear(bars)
	}

	// 3 bull / 2 bear: ratio 0.6 meets the threshold and bull strictly wins.
	macro, diag := MacroTrend(bars, cfg)
	assert.Equal(t, models.TrendBull, macro)
	assert.Equal(t, 3, diag.BullDays)
	assert.Equal(t, 2, diag.BearDays)
	assert.InDelta(t, 0.6, diag.BullRatio, 1e-9)
}

func TestMacroTrendEqualCountsStayNeutral(t *testing.T) {
	cfg := TrendConfig{Lookback: 20, BullThreshold: 0.5, BearThreshold: 0.5}

	bars := []models.OhlcBar{bar(100, 110, 100, 105)}
	bars = appendBull(bars)
	bars = appendBear(bars)

	// Both sides hit ratio 0.5 but neither strictly exceeds the other.
	macro, _ := MacroTrend(bars, cfg)
	assert.Equal(t, models.TrendNeutral, macro)
}

func TestMacroTrendAllNeutralDays(t *testing.T) {
	cfg := TrendConfig{Lookback: 20, BullThreshold: 0.6, BearThreshold: 0.6}

	bars := []models.OhlcBar{bar(100, 110, 100, 105)}
	for i := 0; i < 5; i++ {
		bars = appendInside(bars)
	}
	macro, diag := MacroTrend(bars, cfg)
	assert.Equal(t, models.TrendNeutral, macro)
	assert.Equal(t, 5, diag.NeutralDays)
	assert.Zero(t, diag.BullRatio)
}

func TestAlignmentNamedAfterMacroSide(t *testing.T) {
	assert.Equal(t, models.AlignedLong, AlignmentOf(models.TrendBull, models.TrendBull))
	assert.Equal(t, models.AlignedShort, AlignmentOf(models.TrendBear, models.TrendBear))
	assert.Equal(t, models.CounterLong, AlignmentOf(models.TrendBull, models.TrendBear))
	assert.Equal(t, models.CounterShort, AlignmentOf(models.TrendBear, models.TrendBull))
	assert.Equal(t, models.AlignNeutral, AlignmentOf(models.TrendNeutral, models.TrendBull))
	assert.Equal(t, models.AlignNeutral, AlignmentOf(models.TrendBull, models.TrendNeutral))
}

func TestLocationInRange(t *testing.T) {
	bars := []models.OhlcBar{
		bar(100, 130, 100, 102), // range 100..130
		bar(102, 112, 101, 104),
	}
	assert.Equal(t, models.LocationDiscount, LocationInRange(bars, 2))

	bars[1].Close = 115
	assert.Equal(t, models.LocationMid, LocationInRange(bars, 2))

	bars[1].Close = 128
	assert.Equal(t, models.LocationPremium, LocationInRange(bars, 2))
}

func TestLocationDegenerateRangeIsMid(t *testing.T) {
	bars := []models.OhlcBar{bar(100, 100, 100, 100)}
	assert.Equal(t, models.LocationMid, LocationInRange(bars, 1))
}

func TestATR(t *testing.T) {
	assert.Zero(t, ATR(nil, 20))
	assert.Zero(t, ATR([]models.OhlcBar{bar(100, 110, 100, 105)}, 20))

	bars := []models.OhlcBar{
		bar(100, 110, 100, 105),
		bar(105, 112, 104, 110), // TR = max(8, |112-105|, |104-105|) = 8
		bar(110, 120, 109, 118), // TR = max(11, |120-110|, |109-110|) = 11
	}
	got := ATR(bars, 3)
	assert.InDelta(t, 9.5, got, 1e-9)
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestAnalyzeTrendDeterministic(t *testing.T) {
	cfg := TrendConfig{Lookback: 10, ATRWindow: 5, BullThreshold: 0.6, BearThreshold: 0.6}

	bars := []models.OhlcBar{bar(100, 110, 100, 105)}
	for i := 0; i < 8; i++ {
		bars = appendBull(bars)
	}

	first := AnalyzeTrend(bars, cfg)
	second := AnalyzeTrend(bars, cfg)
	require.Equal(t, first, second)

	assert.Equal(t, models.TrendBull, first.MacroTrend)
	assert.Equal(t, models.AlignedLong, first.Alignment)
	assert.Greater(t, first.ATR20, 0.0)
}
