package dataset

import "fmt"

// Dataset bundles everything one survey release exposes to the engine:
// per-level entity tables, per-level weight sets, the variable catalog,
// and the dataset-wide replication constants.
//
// JackknifeScale is the design constant applied to the replicate
// dispersion when estimating standard errors (e.g. 98/99 for a JK1
// design with 99 replicates). AnnualDays is the number of reference
// days one weight unit represents; only ratio aggregates consume it.
type Dataset struct {
	Tables  map[Level]*EntityTable
	Weights map[Level]*WeightSet
	Catalog *Catalog

	Replicates     int
	JackknifeScale float64
	AnnualDays     float64
}

// Validate checks the cross-table invariants: a household table must
// exist, every present table and weight set must agree on level and key
// shape, and every weight set must carry exactly Replicates replicate
// columns.
func (d *Dataset) Validate() error {
	if d.Catalog == nil {
		return fmt.Errorf("dataset: nil catalog")
	}
	if _, ok := d.Tables[LevelHousehold]; !ok {
		return fmt.Errorf("dataset: missing household table")
	}
	if d.AnnualDays <= 0 {
		return fmt.Errorf("dataset: annualization days must be positive, got %v", d.AnnualDays)
	}
	for level, table := range d.Tables {
		if table.Level != level {
			return fmt.Errorf("dataset: table registered at %s has level %s", level, table.Level)
		}
	}
	for level, ws := range d.Weights {
		if ws.Level != level {
			return fmt.Errorf("dataset: weight set registered at %s has level %s", level, ws.Level)
		}
		if len(ws.Keys) > 0 && ws.ReplicateCount() != d.Replicates {
			return fmt.Errorf("dataset: weight set %s has %d replicates, dataset declares %d", level, ws.ReplicateCount(), d.Replicates)
		}
	}
	return nil
}

// Table returns the entity table for a level.
func (d *Dataset) Table(level Level) (*EntityTable, bool) {
	t, ok := d.Tables[level]
	return t, ok
}

// WeightsFor returns the weight set serving a level. A level with no
// weight set of its own falls back to the nearest ancestor that has one
// (vehicle rows are typically weighted with the household weight).
func (d *Dataset) WeightsFor(level Level) (*WeightSet, bool) {
	for cur, ok := level, level.Valid(); ok; cur, ok = cur.Parent() {
		if ws, present := d.Weights[cur]; present {
			return ws, true
		}
	}
	return nil, false
}
