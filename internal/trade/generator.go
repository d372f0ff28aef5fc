package trade

import (
	"math"

	"StructScan/internal/analysis"
	"StructScan/internal/domain/models"
)

// Config carries the per-symbol risk settings and the global reward:risk
// minimum resolved at scan start.
type Config struct {
	RiskCap   float64
	SLBuffer  float64
	SpreadCap float64 // 0 disables the spread gate
	MinRR     float64
}

// Context is everything the models need, computed upstream by the scan
// pipeline. Bars are ascending; the last bar is the current session.
type Context struct {
	Bars      []models.OhlcBar
	Spot      float64
	Zones     []models.OcZone
	Liquidity models.LiquidityMap
	Trend     models.TrendAnalysis
	Pullback  models.PullbackSnapshot
	Sweetspot models.SweetspotEval
}

// Generate runs models A through D and concatenates their candidates.
// Candidates failing a numeric gate are dropped silently, never emitted with
// a failure status.
func Generate(ctx Context, cfg Config) []models.TradeCandidate {
	if len(ctx.Bars) == 0 {
		return nil
	}
	if cfg.SpreadCap > 0 && ctx.Bars[len(ctx.Bars)-1].Spread > cfg.SpreadCap {
		return nil
	}

	var out []models.TradeCandidate
	out = append(out, modelA(ctx, cfg)...)
	out = append(out, modelB(ctx, cfg)...)
	out = append(out, modelC(ctx, cfg)...)
	out = append(out, modelD(ctx, cfg)...)
	return out
}

// gate validates the numeric contract and builds the candidate. ok is false
// when risk is non-positive, risk exceeds the cap, or rr misses the minimum
// (inclusive boundary keeps rr == MinRR).
func gate(model models.TradeModel, dir models.TradeDirection, entry, stop, tp float64, st models.StopType, cfg Config) (models.TradeCandidate, bool) {
	var risk, reward float64
	if dir == models.DirectionLong {
		risk = entry - stop
		reward = tp - entry
	} else {
		risk = stop - entry
		reward = entry - tp
	}
	if risk <= 0 || reward <= 0 {
		return models.TradeCandidate{}, false
	}
	if cfg.RiskCap > 0 && risk > cfg.RiskCap {
		return models.TradeCandidate{}, false
	}
	rr := reward / risk
	if rr < cfg.MinRR {
		return models.TradeCandidate{}, false
	}
	return models.TradeCandidate{
		Model:     model,
		Direction: dir,
		Entry:     entry,
		Stop:      stop,
		TP1:       tp,
		Risk:      risk,
		Reward:    reward,
		RR:        rr,
		Status:    "VALID",
		StopType:  st,
	}, true
}

// nearestBelow returns the greatest level strictly below x.
func nearestBelow(levels []float64, x float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, v := range levels {
		if v < x && v > best {
			best, found = v, true
		}
	}
	return best, found
}

// nearestAbove returns the smallest level strictly above x.
func nearestAbove(levels []float64, x float64) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, v := range levels {
		if v > x && v < best {
			best, found = v, true
		}
	}
	return best, found
}

// modelA builds structural swing trades: zone-mid entry with the nearest
// swing level as stop and the opposing swing level as target.
func modelA(ctx Context, cfg Config) []models.TradeCandidate {
	var out []models.TradeCandidate
	switch ctx.Trend.MacroTrend {
	case models.TrendBull:
		for _, z := range ctx.Zones {
			if z.Mid >= ctx.Spot {
				continue
			}
			sl, ok := nearestBelow(ctx.Liquidity.Lows, z.Mid)
			if !ok {
				continue
			}
			tp, ok := nearestAbove(ctx.Liquidity.Highs, z.Mid)
			if !ok {
				continue
			}
			if c, ok := gate(models.ModelA, models.DirectionLong, z.Mid, sl-cfg.SLBuffer, tp, models.StopSwing, cfg); ok {
				out = append(out, c)
			}
		}
	case models.TrendBear:
		for _, z := range ctx.Zones {
			if z.Mid <= ctx.Spot {
				continue
			}
			sl, ok := nearestAbove(ctx.Liquidity.Highs, z.Mid)
			if !ok {
				continue
			}
			tp, ok := nearestBelow(ctx.Liquidity.Lows, z.Mid)
			if !ok {
				continue
			}
			if c, ok := gate(models.ModelA, models.DirectionShort, z.Mid, sl+cfg.SLBuffer, tp, models.StopSwing, cfg); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// modelB mirrors model A's zone selection but anchors the stop at the prior
// day's extreme instead of the nearest swing.
func modelB(ctx Context, cfg Config) []models.TradeCandidate {
	if len(ctx.Bars) < 2 {
		return nil
	}
	prev := ctx.Bars[len(ctx.Bars)-2]

	var out []models.TradeCandidate
	switch ctx.Trend.MacroTrend {
	case models.TrendBull:
		stop := prev.Low - cfg.SLBuffer
		for _, z := range ctx.Zones {
			if z.Mid >= ctx.Spot {
				continue
			}
			tp, ok := nearestAbove(ctx.Liquidity.Highs, z.Mid)
			if !ok {
				continue
			}
			if c, ok := gate(models.ModelB, models.DirectionLong, z.Mid, stop, tp, models.StopPD, cfg); ok {
				out = append(out, c)
			}
		}
	case models.TrendBear:
		stop := prev.High + cfg.SLBuffer
		for _, z := range ctx.Zones {
			if z.Mid <= ctx.Spot {
				continue
			}
			tp, ok := nearestBelow(ctx.Liquidity.Lows, z.Mid)
			if !ok {
				continue
			}
			if c, ok := gate(models.ModelB, models.DirectionShort, z.Mid, stop, tp, models.StopPD, cfg); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// classifyContinuation is the model C trend-day rule. When both extremes are
// broken the standard rule would stay Neutral; model C instead breaks the tie
// by comparing closes. Kept for behavioral parity, heuristic rather than law.
func classifyContinuation(prev, cur models.OhlcBar) models.TrendDirection {
	if cur.High > prev.High && cur.Low < prev.Low {
		if cur.Close > prev.Close {
			return models.TrendBull
		}
		return models.TrendBear
	}
	return analysis.ClassifyTrendDay(prev, cur)
}

type dedupKey struct {
	dir   models.TradeDirection
	entry float64
	st    models.StopType
}

// modelC trades continuation of the middle bar's trend day. Entry levels
// come from the trend bar and must have been revisited by the current bar's
// range; each qualifying level yields a swing-stop (C1) and prior-day-stop
// (C2) variant.
func modelC(ctx Context, cfg Config) []models.TradeCandidate {
	if len(ctx.Bars) < 3 {
		return nil
	}
	oldest := ctx.Bars[len(ctx.Bars)-3]
	trendBar := ctx.Bars[len(ctx.Bars)-2]
	cur := ctx.Bars[len(ctx.Bars)-1]

	dir := classifyContinuation(oldest, trendBar)
	if dir == models.TrendNeutral {
		return nil
	}

	var levels []float64
	var tdir models.TradeDirection
	if dir == models.TrendBull {
		levels = []float64{trendBar.High, trendBar.Close, trendBar.Low}
		tdir = models.DirectionLong
	} else {
		levels = []float64{trendBar.Low, trendBar.Close, trendBar.High}
		tdir = models.DirectionShort
	}

	seen := make(map[dedupKey]bool)
	var out []models.TradeCandidate
	for _, entry := range levels {
		if entry < cur.Low || entry > cur.High {
			continue // level not revisited this session
		}

		// both variants share the target; only C1 needs a swing stop level
		if tdir == models.DirectionLong {
			tp, ok := nearestAbove(ctx.Liquidity.Highs, entry)
			if !ok {
				continue
			}
			if sl, ok := nearestBelow(ctx.Liquidity.Lows, entry); ok {
				out = appendDedup(out, seen, models.ModelC1, tdir, entry, sl-cfg.SLBuffer, tp, models.StopSwing, cfg)
			}
			out = appendDedup(out, seen, models.ModelC2, tdir, entry, trendBar.Low-cfg.SLBuffer, tp, models.StopPD, cfg)
		} else {
			tp, ok := nearestBelow(ctx.Liquidity.Lows, entry)
			if !ok {
				continue
			}
			if sl, ok := nearestAbove(ctx.Liquidity.Highs, entry); ok {
				out = appendDedup(out, seen, models.ModelC1, tdir, entry, sl+cfg.SLBuffer, tp, models.StopSwing, cfg)
			}
			out = appendDedup(out, seen, models.ModelC2, tdir, entry, trendBar.High+cfg.SLBuffer, tp, models.StopPD, cfg)
		}
	}
	return out
}

func appendDedup(out []models.TradeCandidate, seen map[dedupKey]bool, model models.TradeModel, dir models.TradeDirection, entry, stop, tp float64, st models.StopType, cfg Config) []models.TradeCandidate {
	k := dedupKey{dir: dir, entry: entry, st: st}
	if seen[k] {
		return out
	}
	seen[k] = true
	if c, ok := gate(model, dir, entry, stop, tp, st, cfg); ok {
		out = append(out, c)
	}
	return out
}

// modelD places a pending limit at the highest-scored zone inside the band
// the dominant historical pullback bucket projects onto the prior day's
// range. Runs only on a confirmed sweet spot.
func modelD(ctx Context, cfg Config) []models.TradeCandidate {
	if !ctx.Sweetspot.IsSweetSpot || len(ctx.Bars) < 2 {
		return nil
	}
	dom, ok := analysis.DominantBucket(ctx.Pullback.Typical)
	if !ok {
		return nil
	}
	prev := ctx.Bars[len(ctx.Bars)-2]
	r := prev.Range()
	if r <= 0 {
		return nil
	}

	// The open-ended "1.0+" bucket projects to the full prior range.
	bMax := dom.Max
	if math.IsInf(bMax, 1) || bMax > 1 {
		bMax = 1
	}

	var bandLow, bandHigh float64
	var dir models.TradeDirection
	switch ctx.Trend.MacroTrend {
	case models.TrendBull:
		bandHigh = prev.High - dom.Min*r
		bandLow = prev.High - bMax*r
		dir = models.DirectionLong
	case models.TrendBear:
		bandLow = prev.Low + dom.Min*r
		bandHigh = prev.Low + bMax*r
		dir = models.DirectionShort
	default:
		return nil
	}

	// Zones arrive score-sorted, so the first in-band hit is the best one.
	var entry float64
	found := false
	for _, z := range ctx.Zones {
		if z.Mid >= bandLow && z.Mid <= bandHigh {
			entry = z.Mid
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if dir == models.DirectionLong && entry >= ctx.Spot {
		return nil
	}
	if dir == models.DirectionShort && entry <= ctx.Spot {
		return nil
	}

	// both variants share the target; only the swing variant needs a swing
	// stop level
	var out []models.TradeCandidate
	if dir == models.DirectionLong {
		tp, ok := nearestAbove(ctx.Liquidity.Highs, entry)
		if !ok {
			return nil
		}
		if sl, ok := nearestBelow(ctx.Liquidity.Lows, entry); ok {
			if c, ok := gate(models.ModelD, dir, entry, sl-cfg.SLBuffer, tp, models.StopSwing, cfg); ok {
				c.Placement = models.PlacementPendingLimit
				out = append(out, c)
			}
		}
		if c, ok := gate(models.ModelD, dir, entry, prev.Low-cfg.SLBuffer, tp, models.StopPD, cfg); ok {
			c.Placement = models.PlacementPendingLimit
			out = append(out, c)
		}
	} else {
		tp, ok := nearestBelow(ctx.Liquidity.Lows, entry)
		if !ok {
			return nil
		}
		if sl, ok := nearestAbove(ctx.Liquidity.Highs, entry); ok {
			if c, ok := gate(models.ModelD, dir, entry, sl+cfg.SLBuffer, tp, models.StopSwing, cfg); ok {
				c.Placement = models.PlacementPendingLimit
				out = append(out, c)
			}
		}
		if c, ok := gate(models.ModelD, dir, entry, prev.High+cfg.SLBuffer, tp, models.StopPD, cfg); ok {
			c.Placement = models.PlacementPendingLimit
			out = append(out, c)
		}
	}
	return out
}
