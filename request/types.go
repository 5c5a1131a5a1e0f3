package request

import (
	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/expr"
)

// AggType names one of the nine supported aggregates.
type AggType string

const (
	AggHouseholdCount AggType = "household_count"
	AggPersonCount    AggType = "person_count"
	AggVehicleCount   AggType = "vehicle_count"
	AggTripCount      AggType = "trip_count"

	AggSum    AggType = "sum"
	AggAvg    AggType = "avg"
	AggMedian AggType = "median"

	AggHouseholdTripRate AggType = "household_trip_rate"
	AggPersonTripRate    AggType = "person_trip_rate"
)

// Valid reports whether a is a known aggregate type.
func (a AggType) Valid() bool {
	switch a {
	case AggHouseholdCount, AggPersonCount, AggVehicleCount, AggTripCount,
		AggSum, AggAvg, AggMedian,
		AggHouseholdTripRate, AggPersonTripRate:
		return true
	}
	return false
}

// IsFrequency reports whether a is a count aggregate.
func (a AggType) IsFrequency() bool {
	switch a {
	case AggHouseholdCount, AggPersonCount, AggVehicleCount, AggTripCount:
		return true
	}
	return false
}

// IsNumeric reports whether a aggregates a numeric variable.
func (a AggType) IsNumeric() bool {
	return a == AggSum || a == AggAvg || a == AggMedian
}

// IsRatio reports whether a is a trip-rate aggregate.
func (a AggType) IsRatio() bool {
	return a == AggHouseholdTripRate || a == AggPersonTripRate
}

// CountLevel returns the entity level a frequency aggregate counts, or
// ("", false) for non-frequency aggregates.
func (a AggType) CountLevel() (dataset.Level, bool) {
	switch a {
	case AggHouseholdCount:
		return dataset.LevelHousehold, true
	case AggPersonCount:
		return dataset.LevelPerson, true
	case AggVehicleCount:
		return dataset.LevelVehicle, true
	case AggTripCount:
		return dataset.LevelTrip, true
	}
	return "", false
}

// DenominatorLevel returns the denominator level of a ratio aggregate,
// or ("", false) for non-ratio aggregates.
func (a AggType) DenominatorLevel() (dataset.Level, bool) {
	switch a {
	case AggHouseholdTripRate:
		return dataset.LevelHousehold, true
	case AggPersonTripRate:
		return dataset.LevelPerson, true
	}
	return "", false
}

// Request describes one aggregation call. A Request is constructed
// fresh per call and treated as immutable while the engine runs.
type Request struct {
	// Agg selects the aggregate type.
	Agg AggType

	// AggVar names the variable to aggregate. Required for numeric
	// aggregates, ignored otherwise.
	AggVar string

	// By lists grouping variables in display order. May be empty.
	By []string

	// Subset is the optional row-selection predicate; nil selects all.
	Subset expr.Predicate

	// Label, when true, maps grouping codes to catalog labels in the
	// output.
	Label bool

	// Prop, when true, normalizes a frequency aggregate to proportions.
	Prop bool

	// PropBy names the grouping variables that define the normalization
	// group for proportions. Must be a subset of By. Empty means the
	// whole table.
	PropBy []string

	// ExcludeMissing extends missing-value exclusion to every grouping
	// variable, not just the aggregated one.
	ExcludeMissing bool
}
