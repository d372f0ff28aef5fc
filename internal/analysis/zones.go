package analysis

import (
	"sort"

	"StructScan/internal/domain/models"
)

// maxZones caps the number of scored zones returned per scan.
const maxZones = 5

// BuildZones clusters the window's open and close prices into structural
// zones and scores them. Clustering is single-linkage: consecutive sorted
// points join the same cluster while the gap to the previous point stays
// within the radius, so membership chains through intermediate points rather
// than being cut at a fixed width.
//
// Returns nil when fewer bars than the lookback are available.
func BuildZones(bars []models.OhlcBar, clusterRadius float64, lookback int) []models.OcZone {
	if lookback <= 0 || len(bars) < lookback {
		return nil
	}
	window := bars[len(bars)-lookback:]

	points := make([]float64, 0, 2*len(window))
	for _, b := range window {
		points = append(points, b.Open, b.Close)
	}
	sort.Float64s(points)

	var zones []models.OcZone
	start := 0
	for i := 1; i <= len(points); i++ {
		if i < len(points) && points[i]-points[i-1] <= clusterRadius {
			continue
		}
		lo, hi := points[start], points[i-1]
		zones = append(zones, models.OcZone{
			Low:   lo,
			High:  hi,
			Mid:   (lo + hi) / 2,
			Score: scoreZone(window, lo, hi),
		})
		start = i
	}

	// Score descending; equal scores order by lower band first so the
	// result is deterministic across runs.
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Score != zones[j].Score {
			return zones[i].Score > zones[j].Score
		}
		return zones[i].Low < zones[j].Low
	})

	if len(zones) > maxZones {
		zones = zones[:maxZones]
	}
	return zones
}

// scoreZone weighs closes double against opens inside the inclusive band.
func scoreZone(window []models.OhlcBar, lo, hi float64) int {
	score := 0
	for _, b := range window {
		if b.Close >= lo && b.Close <= hi {
			score += 2
		}
		if b.Open >= lo && b.Open <= hi {
			score++
		}
	}
	return score
}

// BuildLiquidityMap collects the daily highs and lows over the structure
// lookback window, preserving bar order.
func BuildLiquidityMap(bars []models.OhlcBar, lookback int) models.LiquidityMap {
	if lookback <= 0 || len(bars) == 0 {
		return models.LiquidityMap{}
	}
	if lookback > len(bars) {
		lookback = len(bars)
	}
	window := bars[len(bars)-lookback:]
	lm := models.LiquidityMap{
		Highs: make([]float64, 0, len(window)),
		Lows:  make([]float64, 0, len(window)),
	}
	for _, b := range window {
		lm.Highs = append(lm.Highs, b.High)
		lm.Lows = append(lm.Lows, b.Low)
	}
	return lm
}
