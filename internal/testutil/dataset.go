// Package testutil builds small in-memory survey datasets with
// hand-checkable weights for engine and harness tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/svyest/svyest/dataset"
)

// TinyDataset builds a three-household travel survey with two replicate
// weights, small enough that every expected statistic can be computed
// by hand in test assertions.
//
// Households: H1 (size 2, state 37), H2 (size 1, state 37),
// H3 (size 2, state 06), primary weights 100/200/300.
// Five persons, five vehicles, five trips; H3's second person has no
// trips. Vehicle rows have no weight set of their own and fall back to
// household weights. Jackknife scale is 1 so expected standard errors
// are plain root-sum-squares.
func TinyDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return build(t, false)
}

// EqualReplicateDataset is TinyDataset with every replicate weight
// equal to the primary weight, so every standard error must be exactly
// zero.
func EqualReplicateDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return build(t, true)
}

func build(t *testing.T, equalReplicates bool) *dataset.Dataset {
	t.Helper()

	households, err := dataset.NewEntityTable(
		dataset.LevelHousehold,
		[]string{"HOUSEID"},
		[]string{"HOUSEID", "HHSIZE", "HHSTATE"},
		[][]string{
			{"H1", "2", "37"},
			{"H2", "1", "37"},
			{"H3", "2", "06"},
		},
	)
	require.NoError(t, err)

	persons, err := dataset.NewEntityTable(
		dataset.LevelPerson,
		[]string{"HOUSEID", "PERSONID"},
		[]string{"HOUSEID", "PERSONID", "DRIVER", "WORKER", "AGE"},
		[][]string{
			{"H1", "P1", "01", "01", "40"},
			{"H1", "P2", "02", "02", "35"},
			{"H2", "P1", "01", "02", "70"},
			{"H3", "P1", "01", "01", "30"},
			{"H3", "P2", "02", "01", "28"},
		},
	)
	require.NoError(t, err)

	vehicles, err := dataset.NewEntityTable(
		dataset.LevelVehicle,
		[]string{"HOUSEID", "VEHID"},
		[]string{"HOUSEID", "VEHID", "VEHAGE", "ANNMILES"},
		[][]string{
			{"H1", "V1", "3", "12000"},
			{"H1", "V2", "12", "9000"},
			{"H2", "V1", "5", "15000"},
			{"H3", "V1", "-7", "-9"},
			{"H3", "V2", "2", "300"},
		},
	)
	require.NoError(t, err)

	trips, err := dataset.NewEntityTable(
		dataset.LevelTrip,
		[]string{"HOUSEID", "PERSONID", "TDTRPNUM"},
		[]string{"HOUSEID", "PERSONID", "TDTRPNUM", "STRTTIME", "TRPMILES"},
		[][]string{
			{"H1", "P1", "T1", "08", "5"},
			{"H1", "P1", "T2", "17", "6"},
			{"H1", "P2", "T1", "08", "2"},
			{"H2", "P1", "T1", "10", "3"},
			{"H3", "P1", "T1", "08", "8"},
		},
	)
	require.NoError(t, err)

	reps := func(r1, r2 float64) []float64 { return []float64{r1, r2} }
	weights := func(level dataset.Level, keyCols []string, keys [][]string, primary []float64, replicates [][]float64) *dataset.WeightSet {
		if equalReplicates {
			replicates = make([][]float64, len(primary))
			for i, w := range primary {
				replicates[i] = reps(w, w)
			}
		}
		ws, err := dataset.NewWeightSet(level, keyCols, keys, primary, replicates)
		require.NoError(t, err)
		return ws
	}

	hhWeights := weights(dataset.LevelHousehold, []string{"HOUSEID"},
		[][]string{{"H1"}, {"H2"}, {"H3"}},
		[]float64{100, 200, 300},
		[][]float64{reps(110, 90), reps(210, 190), reps(330, 270)},
	)
	perWeights := weights(dataset.LevelPerson, []string{"HOUSEID", "PERSONID"},
		[][]string{{"H1", "P1"}, {"H1", "P2"}, {"H2", "P1"}, {"H3", "P1"}, {"H3", "P2"}},
		[]float64{150, 120, 180, 160, 140},
		[][]float64{reps(160, 140), reps(130, 110), reps(190, 170), reps(170, 150), reps(150, 130)},
	)
	tripWeights := weights(dataset.LevelTrip, []string{"HOUSEID", "PERSONID", "TDTRPNUM"},
		[][]string{
			{"H1", "P1", "T1"}, {"H1", "P1", "T2"}, {"H1", "P2", "T1"},
			{"H2", "P1", "T1"}, {"H3", "P1", "T1"},
		},
		[]float64{1000, 1000, 2000, 3000, 1500},
		[][]float64{reps(1100, 900), reps(1000, 1000), reps(2100, 1900), reps(3000, 3000), reps(1600, 1400)},
	)

	catalog := dataset.NewCatalog(
		dataset.Variable{Name: "HHSIZE", Level: dataset.LevelHousehold, Label: "Household size"},
		dataset.Variable{Name: "HHSTATE", Level: dataset.LevelHousehold, Label: "State"},
		dataset.Variable{Name: "DRIVER", Level: dataset.LevelPerson, Label: "Driver status",
			ValueLabels: map[string]string{"01": "Yes", "02": "No"}},
		dataset.Variable{Name: "WORKER", Level: dataset.LevelPerson, Label: "Worker status",
			ValueLabels: map[string]string{"01": "Yes", "02": "No"}},
		dataset.Variable{Name: "AGE", Level: dataset.LevelPerson, Label: "Age"},
		dataset.Variable{Name: "VEHAGE", Level: dataset.LevelVehicle, Label: "Vehicle age",
			MissingCodes: []string{"-7", "-8"}},
		dataset.Variable{Name: "ANNMILES", Level: dataset.LevelVehicle, Label: "Annual miles",
			MissingCodes: []string{"-9"}},
		dataset.Variable{Name: "STRTTIME", Level: dataset.LevelTrip, Label: "Start hour"},
		dataset.Variable{Name: "TRPMILES", Level: dataset.LevelTrip, Label: "Trip miles",
			MissingCodes: []string{"-9"}},
	)

	ds := &dataset.Dataset{
		Tables: map[dataset.Level]*dataset.EntityTable{
			dataset.LevelHousehold: households,
			dataset.LevelPerson:    persons,
			dataset.LevelVehicle:   vehicles,
			dataset.LevelTrip:      trips,
		},
		Weights: map[dataset.Level]*dataset.WeightSet{
			dataset.LevelHousehold: hhWeights,
			dataset.LevelPerson:    perWeights,
			dataset.LevelTrip:      tripWeights,
		},
		Catalog:        catalog,
		Replicates:     2,
		JackknifeScale: 1,
		AnnualDays:     365,
	}
	require.NoError(t, ds.Validate())
	return ds
}
