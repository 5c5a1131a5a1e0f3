package engine

import (
	"fmt"
	"math"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/internal/frame"
	"github.com/svyest/svyest/request"
)

// ratioSide holds one side's per-group weight sums and distinct-row
// count.
type ratioSide struct {
	w    float64
	reps []float64
	n    int
}

// sumSide reduces an attached-weight row set to per-group weight sums.
func sumSide(weighted *frame.Weighted, by []string, replicates int) ([]frame.Group, []ratioSide) {
	groups := weighted.GroupBy(by)
	sides := make([]ratioSide, len(groups))
	for gi, g := range groups {
		side := ratioSide{reps: make([]float64, replicates), n: len(g.Rows)}
		for _, i := range g.Rows {
			side.w += weighted.Primary[i]
			for k, rw := range weighted.Replicates[i] {
				side.reps[k] += rw
			}
		}
		sides[gi] = side
	}
	return groups, sides
}

// aggregateRatio computes trip rates: the weighted trip count per group
// divided by the weighted household or person count of the group's
// non-trip key, expressed per day via the annualization constant.
//
// Numerator and denominator derive from the same filtered row set, so
// their group sets agree by construction: the denominator key of every
// numerator group exists (households or persons with no surviving trips
// enter the denominator only, which is exactly the trip-rate
// convention). When no non-trip grouping variables exist the single
// denominator row combines positionally with every numerator group.
func aggregateRatio(ds *dataset.Dataset, req request.Request, p *plan, filtered *frame.Table, annualDays float64) ([]groupStat, error) {
	nonTrip, _ := p.tripGroupSplit(ds.Catalog)

	tripWS, ok := ds.WeightsFor(dataset.LevelTrip)
	if !ok {
		return nil, fmt.Errorf("aggregate %s: no weight set serves the trip level", req.Agg)
	}
	denomWS, ok := ds.WeightsFor(p.denomLevel)
	if !ok {
		return nil, fmt.Errorf("aggregate %s: no weight set serves the %s level", req.Agg, p.denomLevel)
	}
	denomTable, ok := ds.Table(p.denomLevel)
	if !ok {
		return nil, fmt.Errorf("aggregate %s: dataset has no %s table", req.Agg, p.denomLevel)
	}

	// Numerator: distinct surviving trip rows, trip weights, full by.
	numDistinct, err := projectDistinct(filtered, append(append([]string{}, p.pkey...), p.by...))
	if err != nil {
		return nil, err
	}
	numGroups, numSides := sumSide(numDistinct.AttachWeights(tripWS, p.pkey), p.by, ds.Replicates)

	// Denominator: distinct surviving household/person rows, that
	// level's weights, non-trip groups only.
	denDistinct, err := projectDistinct(filtered, append(append([]string{}, denomTable.KeyColumns...), nonTrip...))
	if err != nil {
		return nil, err
	}
	denGroups, denSides := sumSide(denDistinct.AttachWeights(denomWS, denomTable.KeyColumns), nonTrip, ds.Replicates)

	denByKey := make(map[string]ratioSide, len(denGroups))
	for gi, g := range denGroups {
		denByKey[groupKey(g.Key)] = denSides[gi]
	}

	// Positions of the non-trip groups inside the full by key.
	positions := make([]int, len(nonTrip))
	for i, name := range nonTrip {
		for j, b := range p.by {
			if b == name {
				positions[i] = j
				break
			}
		}
	}

	stats := make([]groupStat, len(numGroups))
	for gi, g := range numGroups {
		num := numSides[gi]
		st := groupStat{key: g.Key, reps: make([]float64, ds.Replicates), n: num.n}

		denKeyCells := make([]string, len(positions))
		for i, pos := range positions {
			denKeyCells[i] = g.Key[pos]
		}
		den, found := denByKey[groupKey(denKeyCells)]
		if !found {
			st.w = math.NaN()
			st.s = math.NaN()
			for k := range st.reps {
				st.reps[k] = math.NaN()
			}
			stats[gi] = st
			continue
		}

		st.w = safeDiv(num.w, den.w) / annualDays
		for k := range st.reps {
			st.reps[k] = safeDiv(num.reps[k], den.reps[k]) / annualDays
		}
		st.s = safeDiv(float64(num.n), float64(den.n))
		stats[gi] = st
	}
	return stats, nil
}
