package analysis

import (
	"StructScan/internal/domain/models"
)

// meanTolerance is the maximum deviation from the historical mean depth, in
// depth fraction, for the mean-proximity gate.
const meanTolerance = 0.05

// DominantBucket returns the bucket with the highest historical count. Ties
// resolve to the shallower bucket, iterating buckets in ascending order.
func DominantBucket(stats *models.ScenarioStats) (models.DepthBucket, bool) {
	if stats == nil || stats.Samples == 0 {
		return models.DepthBucket{}, false
	}
	var best models.DepthBucket
	bestCount := 0
	for _, b := range models.DepthBuckets {
		if c := stats.BucketCounts[b.Label]; c > bestCount {
			best, bestCount = b, c
		}
	}
	return best, bestCount > 0
}

// EvaluateSweetspot applies the ordered gates: price must sit at or near a
// zone, the session must have a measurable depth, and the depth must line up
// with history either by bucket overlap or by mean proximity.
func EvaluateSweetspot(nearest *models.NearestZoneInfo, pb models.PullbackSnapshot) models.SweetspotEval {
	if nearest == nil || (nearest.Status != models.ZoneStatusAt && nearest.Status != models.ZoneStatusNear) {
		return models.SweetspotEval{Reason: "not a sweet spot, price not at/near zone"}
	}
	if pb.DepthIntoPrevPct == nil || !isFinite(*pb.DepthIntoPrevPct) {
		return models.SweetspotEval{Reason: "not a sweet spot, no depth for session"}
	}

	depth := *pb.DepthIntoPrevPct

	if dom, ok := DominantBucket(pb.Typical); ok && pb.Bucket != nil {
		// Buckets align when their [min,max] ranges intersect, exact
		// boundary contact included.
		if pb.Bucket.Min <= dom.Max && dom.Min <= pb.Bucket.Max {
			return models.SweetspotEval{
				IsSweetSpot: true,
				Reason:      "sweet spot, depth bucket aligns with dominant historical bucket",
			}
		}
	}

	if pb.Typical != nil && abs(depth-pb.Typical.Mean) <= meanTolerance {
		return models.SweetspotEval{
			IsSweetSpot: true,
			Reason:      "sweet spot, depth within 5pp of historical mean",
		}
	}

	return models.SweetspotEval{Reason: "not a sweet spot, depth out of line with history"}
}
