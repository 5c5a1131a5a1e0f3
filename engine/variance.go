package engine

import "math"

// jackknifeSE converts one group's replicate statistics into a standard
// error: scale × sqrt( Σₖ (replicateₖ − full)² ). The scale constant
// describes the replication design and is a dataset-wide property.
//
// A NaN full value or any NaN replicate makes this group's SE NaN;
// other groups are unaffected.
func jackknifeSE(full float64, replicates []float64, scale float64) float64 {
	if math.IsNaN(full) {
		return math.NaN()
	}
	var sum float64
	for _, rep := range replicates {
		if math.IsNaN(rep) {
			return math.NaN()
		}
		d := rep - full
		sum += d * d
	}
	return scale * math.Sqrt(sum)
}
