package engine

import (
	"fmt"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/internal/frame"
	"github.com/svyest/svyest/request"
)

// aggregateNumeric computes the weighted sum, mean, or median of the
// aggregated variable per group, once under the primary weight and
// once under every replicate weight; the unweighted statistic uses the
// same formula with unit weights.
func aggregateNumeric(ds *dataset.Dataset, req request.Request, p *plan, filtered *frame.Table) ([]groupStat, error) {
	ws, ok := ds.WeightsFor(p.statLevel)
	if !ok {
		return nil, fmt.Errorf("aggregate %s(%s): no weight set serves the %s level", req.Agg, req.AggVar, p.statLevel)
	}

	cols := append(append([]string{}, p.pkey...), p.by...)
	cols = append(cols, req.AggVar)
	distinct, err := projectDistinct(filtered, cols)
	if err != nil {
		return nil, err
	}
	weighted := distinct.AttachWeights(ws, p.pkey)
	groups := weighted.GroupBy(p.by)
	stat := numericStat(req.Agg)

	stats := make([]groupStat, len(groups))
	for gi, g := range groups {
		n := len(g.Rows)
		values := make([]float64, n)
		primary := make([]float64, n)
		for j, i := range g.Rows {
			// The filter admits only valid numeric cells, so Float
			// cannot fail here.
			v, _ := weighted.Float(i, req.AggVar)
			values[j] = v
			primary[j] = weighted.Primary[i]
		}

		st := groupStat{key: g.Key, reps: make([]float64, ds.Replicates), n: n}
		st.w = stat(values, primary)
		repWeights := make([]float64, n)
		for k := 0; k < ds.Replicates; k++ {
			for j, i := range g.Rows {
				repWeights[j] = weighted.Replicates[i][k]
			}
			st.reps[k] = stat(values, repWeights)
		}
		st.s = stat(values, unitWeights(n))
		stats[gi] = st
	}
	return stats, nil
}
