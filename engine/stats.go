package engine

import (
	"math"
	"sort"
)

// safeDiv divides, mapping any zero or NaN denominator to NaN instead
// of Inf: degenerate groups degrade to undefined cells, never abort.
func safeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}

// weightedSum computes Σ wᵢ·vᵢ.
func weightedSum(values, weights []float64) float64 {
	var total float64
	for i, v := range values {
		total += weights[i] * v
	}
	return total
}

// weightedMean computes Σ wᵢ·vᵢ / Σ wᵢ, NaN for zero total weight.
func weightedMean(values, weights []float64) float64 {
	var wsum float64
	for _, w := range weights {
		wsum += w
	}
	return safeDiv(weightedSum(values, weights), wsum)
}

// weightedMedian returns the value at which the cumulative weight first
// reaches half the total weight, with rows ordered by value ascending.
// When the crossing lands exactly on a boundary between two values the
// lower bracketing value is taken. The same rule serves the unweighted
// median through unit weights, so the two stay consistent.
func weightedMedian(values, weights []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return math.NaN()
	}

	half := total / 2
	var cum float64
	for _, i := range order {
		cum += weights[i]
		if cum >= half {
			return values[i]
		}
	}
	// Unreachable with positive total; guard for float drift.
	return values[order[len(order)-1]]
}

// unitWeights returns a weight vector of ones for unweighted statistics.
func unitWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}
