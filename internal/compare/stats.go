package compare

import (
	"sort"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	"weekly-etf-dashboard/pkg/utils"
)

func sortStrings(s []string) {
	sort.Strings(s)
}

// nonNull extracts the valid values from a window, preserving order.
func nonNull(dists []null.Float) []float64 {
	vals := make([]float64, 0, len(dists))
	for _, d := range dists {
		if d.Valid {
			vals = append(vals, d.Float64)
		}
	}
	return vals
}

// stabilityScore summarizes payout consistency on a 0-100 scale.
//
//	score = clamp(100 - 60*cut_rate - 80*cv, 0, 100)
//
// cut_rate is the fraction of adjacent chronological pairs where the
// later distribution is strictly lower; cv is the coefficient of
// variation (population stdev over mean). Cuts carry the heavier
// per-occurrence penalty: a discrete cut is a stronger negative signal
// to income holders than noisy fluctuation of the same magnitude.
// Null when fewer than minObservations values exist or the mean is not
// positive (a coefficient of variation over a non-positive baseline is
// meaningless).
func stabilityScore(dists []null.Float) null.Float {
	vals := nonNull(dists)
	if len(vals) < minObservations {
		return null.Float{}
	}
	mean := stat.Mean(vals, nil)
	if mean <= 0 {
		return null.Float{}
	}
	cv := stat.PopStdDev(vals, nil) / mean

	cuts := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			cuts++
		}
	}
	cutRate := float64(cuts) / float64(len(vals)-1)

	score := utils.Clamp(100-60*cutRate-80*cv, 0, 100)
	return null.FloatFrom(utils.RoundTo(score, 1))
}

// windowSum is the sum of the known distributions in the window,
// rounded to 4 decimals. Same sufficiency floor as the stability score.
func windowSum(dists []null.Float) null.Float {
	vals := nonNull(dists)
	if len(vals) < minObservations {
		return null.Float{}
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return null.FloatFrom(utils.RoundTo(sum, 4))
}

// windowSlope is the two-point trend slope across the window: last
// known value minus first known value over the full window span. The
// denominator counts every slot, not just the known ones, so missing
// interior points do not steepen the slope. Rounded to 6 decimals;
// null below the sufficiency floor.
func windowSlope(dists []null.Float) null.Float {
	vals := nonNull(dists)
	if len(vals) < minObservations || len(dists) < 2 {
		return null.Float{}
	}
	slope := (vals[len(vals)-1] - vals[0]) / float64(len(dists)-1)
	return null.FloatFrom(utils.RoundTo(slope, 6))
}
