// Package bias turns resolved reference levels into a directional verdict:
// base weights are re-normalized over whatever resolved, distance-depreciated,
// then summed by which side of each level the current price sits on.
package bias

import (
	"errors"
	"math"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// ErrDegenerateWeights means the resolved set has entries but zero total
// base weight, so normalization is impossible. This is a catalog or
// weight-override defect, not a data problem.
var ErrDegenerateWeights = errors.New("resolved levels sum to zero base weight")

// Depreciation maps an absolute price distance (percent of current price)
// to a weight multiplier in [0,1]. Flat at 1.0 through 0.50%, a linear
// ramp down to 0.5 at 2.00%, then exponential decay. Both outer branches
// meet their neighbor exactly at the tier edge, so the function is
// continuous and non-increasing; ties at an edge take the nearer tier's
// value.
func Depreciation(distancePercent float64) float64 {
	d := distancePercent
	switch {
	case d <= 0.50:
		return 1.0
	case d <= 2.00:
		return 1.0 - ((d-0.5)/1.5)*0.5
	default:
		return 0.5 * math.Exp(-(d-2.0)/2.0)
	}
}

// Weigh fills in the weighting fields of every available level in place:
// normalized weight (base weight / total resolved base weight), distance,
// depreciation, effective weight, and position. Unavailable levels are
// left untouched and carry no weight.
func Weigh(levels []model.ResolvedLevel, currentPrice float64) error {
	totalBase := 0.0
	resolved := 0
	for i := range levels {
		if levels[i].Available() {
			totalBase += levels[i].BaseWeight
			resolved++
		}
	}
	if resolved == 0 {
		return nil
	}
	if totalBase == 0 {
		return ErrDegenerateWeights
	}

	for i := range levels {
		l := &levels[i]
		if !l.Available() {
			continue
		}
		l.NormalizedWeight = l.BaseWeight / totalBase

		if currentPrice != 0 {
			l.DistancePercent = math.Abs(currentPrice-l.Price) / currentPrice * 100
		}
		l.DepreciationFactor = Depreciation(l.DistancePercent)
		l.EffectiveWeight = l.NormalizedWeight * l.DepreciationFactor

		switch {
		case currentPrice > l.Price:
			l.Position = model.PositionAbove
		case currentPrice < l.Price:
			l.Position = model.PositionBelow
		default:
			l.Position = model.PositionEqual
		}
	}
	return nil
}
