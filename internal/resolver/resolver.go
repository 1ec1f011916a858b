// Package resolver maps every catalog entry to a price and a provenance:
// derived from the current series, recovered from the cache, or
// unavailable with the reason spelled out. It never substitutes a
// stand-in bar for missing history; a gap the cache cannot cover stays
// visible as an unavailable level.
package resolver

import (
	"fmt"
	"log"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/cache"
	"github.com/JGDev1215/MidOpenBeta/internal/catalog"
	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// Resolve produces one ResolvedLevel per catalog entry, in catalog order.
// Levels derived from current data are written back to the cache so
// future runs with shorter history can fall back to them.
func Resolve(cat *catalog.Catalog, bars []model.PriceBar, now time.Time, loc *time.Location, pc *cache.Manager) []model.ResolvedLevel {
	localNow := now.In(loc)
	resolved := make([]model.ResolvedLevel, 0, cat.Len())
	derived := make(map[string]float64)

	for _, level := range cat.Levels {
		r := model.ResolvedLevel{
			Name:       level.Name,
			BaseWeight: level.BaseWeight,
			Source:     model.SourceUnavailable,
		}

		var evalDetail string
		if !level.DerivableAt(localNow) {
			evalDetail = fmt.Sprintf("%s not derivable before %s", level.Name, level.AvailableAfter)
		} else {
			price, err := level.Rule.Evaluate(bars, localNow, loc)
			if err == nil {
				r.Price = price
				r.Source = model.SourceCurrentData
				r.SourceDetail = "derived from current series"
				derived[level.Name] = price
				resolved = append(resolved, r)
				continue
			}
			evalDetail = err.Error()
		}

		if price, ok, reason := pc.Get(level, localNow); ok {
			r.Price = price
			r.Source = model.SourceCache
			r.SourceDetail = reason
		} else {
			r.SourceDetail = fmt.Sprintf("%s; %s", evalDetail, reason)
		}
		resolved = append(resolved, r)
	}

	if len(derived) > 0 {
		if err := pc.Update(derived, localNow); err != nil {
			log.Printf("[WARN] cache write-back failed for %s: %v", cat.Instrument, err)
		}
	}
	return resolved
}
