package bias

import "github.com/JGDev1215/MidOpenBeta/internal/model"

// Totals is the directional aggregation over weighted levels.
type Totals struct {
	Bias        model.Bias
	Bullish     float64
	Bearish     float64
	Spread      float64
	Utilization float64
}

// Aggregate sums effective weights by side. Levels the price sits above
// pull bullish, levels it sits below pull bearish, exact-equal levels
// contribute to neither side (but do count toward utilization's ceiling
// through their zero-distance full weight). An exact tie, including the
// empty set, is Neutral.
func Aggregate(levels []model.ResolvedLevel) Totals {
	var t Totals
	for i := range levels {
		l := &levels[i]
		if !l.Available() {
			continue
		}
		t.Utilization += l.EffectiveWeight
		switch l.Position {
		case model.PositionAbove:
			t.Bullish += l.EffectiveWeight
		case model.PositionBelow:
			t.Bearish += l.EffectiveWeight
		}
	}

	switch {
	case t.Bullish > t.Bearish:
		t.Bias = model.BiasBullish
		t.Spread = t.Bullish - t.Bearish
	case t.Bearish > t.Bullish:
		t.Bias = model.BiasBearish
		t.Spread = t.Bearish - t.Bullish
	default:
		t.Bias = model.BiasNeutral
	}
	return t
}

// Confidence combines spread and utilization into a 0-100 score. A
// lopsided split only means something when a large share of the possible
// weight is actually engaged, so the two multiply.
func Confidence(spread, utilization float64) float64 {
	c := spread * utilization * 100
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
