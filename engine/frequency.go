package engine

import (
	"fmt"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/internal/frame"
	"github.com/svyest/svyest/request"
)

// aggregateFrequency computes weighted unit counts per group: the sum
// of the primary weight and, independently, of each replicate weight
// over the deduplicated rows of the statistic's level.
func aggregateFrequency(ds *dataset.Dataset, req request.Request, p *plan, filtered *frame.Table) ([]groupStat, error) {
	ws, ok := ds.WeightsFor(p.statLevel)
	if !ok {
		return nil, fmt.Errorf("aggregate %s: no weight set serves the %s level", req.Agg, p.statLevel)
	}

	distinct, err := projectDistinct(filtered, append(append([]string{}, p.pkey...), p.by...))
	if err != nil {
		return nil, err
	}
	weighted := distinct.AttachWeights(ws, p.pkey)
	groups := weighted.GroupBy(p.by)

	stats := make([]groupStat, len(groups))
	for gi, g := range groups {
		st := groupStat{key: g.Key, reps: make([]float64, ds.Replicates), n: len(g.Rows)}
		for _, i := range g.Rows {
			st.w += weighted.Primary[i]
			for k, rw := range weighted.Replicates[i] {
				st.reps[k] += rw
			}
		}
		st.s = float64(st.n)
		stats[gi] = st
	}

	if req.Prop {
		applyProportions(stats, p.by, p.propBySurviving(req))
	}
	return stats, nil
}

// propBySurviving intersects the request's PropBy with the surviving
// grouping variables; a PropBy variable that was dropped for level
// mismatch cannot participate in normalization.
func (p *plan) propBySurviving(req request.Request) []string {
	var out []string
	for _, name := range req.PropBy {
		for _, b := range p.by {
			if b == name {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
