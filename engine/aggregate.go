package engine

import (
	"strings"

	"github.com/svyest/svyest/request"
)

// groupStat holds one group's partials before assembly: the primary
// weighted statistic, the statistic under every replicate weight, the
// unweighted statistic, and the sample size.
type groupStat struct {
	key  []string
	w    float64
	reps []float64
	s    float64
	n    int
}

// groupKey joins grouping cells for map lookups.
func groupKey(cells []string) string {
	return strings.Join(cells, "\x1f")
}

// applyProportions normalizes a frequency aggregate's weighted and
// unweighted statistics to within-group proportions. Each weight
// column, primary and every replicate alike, is divided by its own sum
// over the normalization group, so the jackknife spread estimates the
// variance of the proportion itself. The normalization group is the
// propBy key (the whole table when propBy is empty). Sample sizes stay
// untouched: N is defined pre-transform.
func applyProportions(stats []groupStat, by, propBy []string) {
	positions := make([]int, 0, len(propBy))
	for _, name := range propBy {
		for i, b := range by {
			if b == name {
				positions = append(positions, i)
				break
			}
		}
	}

	type totals struct {
		w    float64
		reps []float64
		s    float64
	}
	sums := make(map[string]*totals)
	normKey := func(st groupStat) string {
		cells := make([]string, len(positions))
		for i, pos := range positions {
			cells[i] = st.key[pos]
		}
		return groupKey(cells)
	}

	for _, st := range stats {
		k := normKey(st)
		tot, ok := sums[k]
		if !ok {
			tot = &totals{reps: make([]float64, len(st.reps))}
			sums[k] = tot
		}
		tot.w += st.w
		tot.s += st.s
		for i, r := range st.reps {
			tot.reps[i] += r
		}
	}

	for gi := range stats {
		tot := sums[normKey(stats[gi])]
		stats[gi].w = safeDiv(stats[gi].w, tot.w)
		stats[gi].s = safeDiv(stats[gi].s, tot.s)
		for i := range stats[gi].reps {
			stats[gi].reps[i] = safeDiv(stats[gi].reps[i], tot.reps[i])
		}
	}
}

// numericStat selects the weighted statistic for a numeric aggregate.
// The same function serves the unweighted statistic via unit weights,
// which keeps the median tie-break rule identical on both sides.
func numericStat(agg request.AggType) func(values, weights []float64) float64 {
	switch agg {
	case request.AggSum:
		return weightedSum
	case request.AggAvg:
		return weightedMean
	default:
		return weightedMedian
	}
}
