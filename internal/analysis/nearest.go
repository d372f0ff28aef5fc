package analysis

import (
	"StructScan/internal/domain/models"
)

// Proximity thresholds. ATR-relative classification is preferred since it
// adapts to volatility; percent thresholds are the degraded-mode fallback
// when no ATR is available.
const (
	atrAtZone = 0.10
	atrNear   = 0.25
	pctAtZone = 0.10
	pctNear   = 0.5
)

// NearestZone finds the zone whose mid sits closest to spot and classifies
// proximity. A stored mid of zero or outside the band is recomputed from the
// bounds. The linear scan keeps the earliest zone on exact distance ties via
// strict comparison. Returns nil when no zones exist or spot is not finite.
func NearestZone(zones []models.OcZone, spot, atr float64) *models.NearestZoneInfo {
	if len(zones) == 0 || !isFinite(spot) {
		return nil
	}

	best := -1
	bestDist := 0.0
	bestMid := 0.0
	for i, z := range zones {
		mid := z.Mid
		if mid <= 0 || mid < z.Low || mid > z.High {
			mid = (z.Low + z.High) / 2
		}
		d := abs(mid - spot)
		if best < 0 || d < bestDist {
			best, bestDist, bestMid = i, d, mid
		}
	}

	z := zones[best]
	info := &models.NearestZoneInfo{
		Spot:        spot,
		ZoneLow:     z.Low,
		ZoneHigh:    z.High,
		ZoneMid:     bestMid,
		ZoneScore:   z.Score,
		AbsDistance: bestDist,
	}
	if spot != 0 {
		info.PctDistance = bestDist / spot * 100
	}

	if atr > 0 {
		rel := bestDist / atr
		info.ATRDistance = &rel
		switch {
		case rel <= atrAtZone:
			info.Status = models.ZoneStatusAt
		case rel <= atrNear:
			info.Status = models.ZoneStatusNear
		default:
			info.Status = models.ZoneStatusFar
		}
		return info
	}

	switch {
	case info.PctDistance <= pctAtZone:
		info.Status = models.ZoneStatusAt
	case info.PctDistance <= pctNear:
		info.Status = models.ZoneStatusNear
	default:
		info.Status = models.ZoneStatusFar
	}
	return info
}
