package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructScan/internal/domain/models"
)

func bar(o, h, l, c float64) models.OhlcBar {
	return models.OhlcBar{Open: o, High: h, Low: l, Close: c}
}

func bullContext() Context {
	return Context{
		Bars: []models.OhlcBar{
			bar(96, 104, 95, 103),
			bar(103, 107, 101, 106),
			bar(106, 109, 104, 105),
		},
		Spot: 105,
		Zones: []models.OcZone{
			{Low: 99, High: 101, Mid: 100, Score: 8},
		},
		Liquidity: models.LiquidityMap{
			Highs: []float64{110, 112},
			Lows:  []float64{95, 99},
		},
		Trend: models.TrendAnalysis{MacroTrend: models.TrendBull},
	}
}

func TestGateMinRRBoundary(t *testing.T) {
	cfg := Config{MinRR: 2.0}

	// rr = 9/5 = 1.8 misses the minimum
	_, ok := gate(models.ModelA, models.DirectionLong, 100, 95, 109, models.StopSwing, cfg)
	assert.False(t, ok)

	// rr = 10/5 = 2.0 sits exactly on the inclusive boundary
	c, ok := gate(models.ModelA, models.DirectionLong, 100, 95, 110, models.StopSwing, cfg)
	require.True(t, ok)
	assert.InDelta(t, 2.0, c.RR, 1e-9)
	assert.Equal(t, "VALID", c.Status)
}

func TestGateRejectsNonPositiveRiskOrReward(t *testing.T) {
	cfg := Config{MinRR: 1.0}

	_, ok := gate(models.ModelA, models.DirectionLong, 100, 100, 110, models.StopSwing, cfg)
	assert.False(t, ok)
	_, ok = gate(models.ModelA, models.DirectionLong, 100, 95, 100, models.StopSwing, cfg)
	assert.False(t, ok)
	_, ok = gate(models.ModelA, models.DirectionShort, 100, 105, 110, models.StopSwing, cfg)
	assert.False(t, ok)
}

func TestGateRiskCap(t *testing.T) {
	cfg := Config{MinRR: 1.0, RiskCap: 4}

	_, ok := gate(models.ModelA, models.DirectionLong, 100, 95, 110, models.StopSwing, cfg)
	assert.False(t, ok)

	// risk equal to the cap passes
	c, ok := gate(models.ModelA, models.DirectionLong, 100, 96, 110, models.StopSwing, cfg)
	require.True(t, ok)
	assert.InDelta(t, 4.0, c.Risk, 1e-9)
}

func TestSpreadCapSuppressesAllModels(t *testing.T) {
	ctx := bullContext()
	ctx.Bars[len(ctx.Bars)-1].Spread = 0.9

	out := Generate(ctx, Config{MinRR: 1.0, SpreadCap: 0.5})
	assert.Empty(t, out)

	// zero cap disables the gate
	out = Generate(ctx, Config{MinRR: 1.0})
	assert.NotEmpty(t, out)
}

func TestModelABullLong(t *testing.T) {
	ctx := bullContext()
	out := modelA(ctx, Config{MinRR: 2.0, SLBuffer: 0.5})

	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, models.ModelA, c.Model)
	assert.Equal(t, models.DirectionLong, c.Direction)
	assert.Equal(t, 100.0, c.Entry)
	// swing low below the entry is 99, buffered to 98.5
	assert.InDelta(t, 98.5, c.Stop, 1e-9)
	assert.Equal(t, 110.0, c.TP1)
	assert.Equal(t, models.StopSwing, c.StopType)
	assert.GreaterOrEqual(t, c.RR, 2.0)
	assert.Less(t, c.Stop, c.Entry)
	assert.Greater(t, c.TP1, c.Entry)
}

func TestModelASkipsZonesAboveSpot(t *testing.T) {
	ctx := bullContext()
	ctx.Zones = []models.OcZone{{Low: 107, High: 109, Mid: 108, Score: 5}}

	out := modelA(ctx, Config{MinRR: 1.0})
	assert.Empty(t, out)
}

func TestModelBUsesPriorDayStop(t *testing.T) {
	ctx := bullContext()
	ctx.Zones = []models.OcZone{{Low: 102.5, High: 103.5, Mid: 103, Score: 8}}
	out := modelB(ctx, Config{MinRR: 1.0, SLBuffer: 0.5})

	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, models.ModelB, c.Model)
	// prior day low 101 buffered to 100.5
	assert.InDelta(t, 100.5, c.Stop, 1e-9)
	assert.Equal(t, 103.0, c.Entry)
	assert.Equal(t, 110.0, c.TP1)
	assert.Equal(t, models.StopPD, c.StopType)
}

func TestModelBRejectsEntryBelowPriorDayStop(t *testing.T) {
	// zone mid 100 sits under the buffered prior-day low 100.5, which makes
	// the risk negative; the gate drops the candidate
	ctx := bullContext()
	out := modelB(ctx, Config{MinRR: 1.0, SLBuffer: 0.5})
	assert.Empty(t, out)
}

func TestClassifyContinuationBothBrokenTieBreak(t *testing.T) {
	prev := bar(100, 110, 100, 105)

	up := bar(105, 115, 95, 108)
	assert.Equal(t, models.TrendBull, classifyContinuation(prev, up))

	down := bar(105, 115, 95, 102)
	assert.Equal(t, models.TrendBear, classifyContinuation(prev, down))

	// single-sided breaks defer to the standard rule
	assert.Equal(t, models.TrendBull, classifyContinuation(prev, bar(105, 115, 104, 112)))
}

func TestModelCRequiresRevisit(t *testing.T) {
	// trend bar is a clean bull day; current bar trades back into its close
	// and low but not its high
	ctx := Context{
		Bars: []models.OhlcBar{
			bar(96, 104, 95, 103),
			bar(103, 112, 102, 111), // bull trend bar
			bar(111, 111.5, 104, 106),
		},
		Spot: 106,
		Liquidity: models.LiquidityMap{
			Highs: []float64{118, 120},
			Lows:  []float64{95, 99},
		},
		Trend: models.TrendAnalysis{MacroTrend: models.TrendBull},
	}
	out := modelC(ctx, Config{MinRR: 0.3, SLBuffer: 0.5})
	require.NotEmpty(t, out)

	for _, c := range out {
		assert.Equal(t, models.DirectionLong, c.Direction)
		// the trend bar high 112 was not revisited this session
		assert.NotEqual(t, 112.0, c.Entry)
	}

	var haveC1, haveC2 bool
	for _, c := range out {
		switch c.Model {
		case models.ModelC1:
			haveC1 = true
			assert.Equal(t, models.StopSwing, c.StopType)
		case models.ModelC2:
			haveC2 = true
			assert.Equal(t, models.StopPD, c.StopType)
		}
	}
	assert.True(t, haveC1)
	assert.True(t, haveC2)
}

func TestModelCDeduplicates(t *testing.T) {
	// trend bar closes on its high: two levels coincide and must yield one
	// candidate per stop type, not two
	ctx := Context{
		Bars: []models.OhlcBar{
			bar(96, 104, 95, 103),
			bar(103, 112, 102, 112),
			bar(112, 113, 104, 106),
		},
		Spot: 106,
		Liquidity: models.LiquidityMap{
			Highs: []float64{118},
			Lows:  []float64{95},
		},
		Trend: models.TrendAnalysis{MacroTrend: models.TrendBull},
	}
	out := modelC(ctx, Config{MinRR: 0.3, SLBuffer: 0.5})
	require.Len(t, out, 2)

	type key struct {
		entry float64
		st    models.StopType
	}
	seen := make(map[key]int)
	for _, c := range out {
		seen[key{c.Entry, c.StopType}]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "duplicate candidate at %+v", k)
	}
}

func TestModelCEmitsPriorDayVariantWithoutSwingStop(t *testing.T) {
	// no swing low is on record below the entry; the swing-stop variant has
	// nothing to anchor on but the prior-day variant does not need it
	ctx := Context{
		Bars: []models.OhlcBar{
			bar(96, 104, 95, 103),
			bar(103, 112, 102, 111), // bull trend bar
			bar(111, 111.5, 104, 106),
		},
		Spot: 106,
		Liquidity: models.LiquidityMap{
			Highs: []float64{118},
			Lows:  nil,
		},
		Trend: models.TrendAnalysis{MacroTrend: models.TrendBull},
	}
	out := modelC(ctx, Config{MinRR: 0.3, SLBuffer: 0.5})

	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, models.ModelC2, c.Model)
	assert.Equal(t, models.StopPD, c.StopType)
	assert.Equal(t, 111.0, c.Entry)
	// trend bar low 102 buffered to 101.5
	assert.InDelta(t, 101.5, c.Stop, 1e-9)
	assert.Equal(t, 118.0, c.TP1)
}

func TestModelDPendingLimitInProjectedBand(t *testing.T) {
	depth := 0.45
	b := models.BucketForDepth(depth)
	ctx := Context{
		Bars: []models.OhlcBar{
			bar(96, 104, 95, 103),
			bar(103, 110, 100, 109), // prior range 100..110
			bar(109, 109.5, 105, 108),
		},
		Spot: 108,
		Zones: []models.OcZone{
			{Low: 105, High: 106, Mid: 105.5, Score: 9},
			{Low: 95, High: 96, Mid: 95.5, Score: 2},
		},
		Liquidity: models.LiquidityMap{
			Highs: []float64{115},
			Lows:  []float64{104},
		},
		Trend: models.TrendAnalysis{MacroTrend: models.TrendBull},
		Pullback: models.PullbackSnapshot{
			DepthIntoPrevPct: &depth,
			Bucket:           &b,
			Typical: &models.ScenarioStats{
				Samples:      3,
				Mean:         0.45,
				BucketCounts: map[string]int{"38.2-50": 3},
			},
		},
		Sweetspot: models.SweetspotEval{IsSweetSpot: true},
	}

	out := modelD(ctx, Config{MinRR: 1.0, SLBuffer: 1.0})
	require.Len(t, out, 2)

	// dominant bucket 38.2-50 projects onto 100..110 as mids 105..106.18
	for _, c := range out {
		assert.Equal(t, models.ModelD, c.Model)
		assert.Equal(t, models.DirectionLong, c.Direction)
		assert.Equal(t, 105.5, c.Entry)
		assert.Equal(t, models.PlacementPendingLimit, c.Placement)
	}
	assert.NotEqual(t, out[0].StopType, out[1].StopType)
}

func TestModelDPriorDayVariantWithoutSwingStop(t *testing.T) {
	depth := 0.45
	b := models.BucketForDepth(depth)
	ctx := Context{
		Bars: []models.OhlcBar{
			bar(96, 104, 95, 103),
			bar(103, 110, 100, 109), // prior range 100..110
			bar(109, 109.5, 105, 108),
		},
		Spot: 108,
		Zones: []models.OcZone{
			{Low: 105, High: 106, Mid: 105.5, Score: 9},
		},
		Liquidity: models.LiquidityMap{
			Highs: []float64{115},
			Lows:  nil, // no swing low below the entry
		},
		Trend: models.TrendAnalysis{MacroTrend: models.TrendBull},
		Pullback: models.PullbackSnapshot{
			DepthIntoPrevPct: &depth,
			Bucket:           &b,
			Typical: &models.ScenarioStats{
				Samples:      3,
				Mean:         0.45,
				BucketCounts: map[string]int{"38.2-50": 3},
			},
		},
		Sweetspot: models.SweetspotEval{IsSweetSpot: true},
	}

	out := modelD(ctx, Config{MinRR: 1.0, SLBuffer: 1.0})
	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, models.StopPD, c.StopType)
	// prior day low 100 buffered to 99
	assert.InDelta(t, 99.0, c.Stop, 1e-9)
	assert.Equal(t, models.PlacementPendingLimit, c.Placement)
}

func TestModelDRequiresSweetspot(t *testing.T) {
	depth := 0.45
	ctx := bullContext()
	ctx.Pullback = models.PullbackSnapshot{
		DepthIntoPrevPct: &depth,
		Typical: &models.ScenarioStats{
			Samples:      3,
			BucketCounts: map[string]int{"38.2-50": 3},
		},
	}
	ctx.Sweetspot = models.SweetspotEval{IsSweetSpot: false}

	assert.Empty(t, modelD(ctx, Config{MinRR: 1.0}))
}

func TestGenerateEmitsOnlyValidCandidates(t *testing.T) {
	ctx := bullContext()
	out := Generate(ctx, Config{MinRR: 2.0, SLBuffer: 0.5})

	require.NotEmpty(t, out)
	for _, c := range out {
		assert.Equal(t, "VALID", c.Status)
		assert.Greater(t, c.RR, 0.0)
		assert.GreaterOrEqual(t, c.RR, 2.0)
	}
}
