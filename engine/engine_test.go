package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/expr"
	"github.com/svyest/svyest/internal/testutil"
	"github.com/svyest/svyest/request"
)

func run(t *testing.T, ds *dataset.Dataset, req request.Request) *SummaryTable {
	t.Helper()
	eng := New(Options{Tokens: NewFixedGenerator("call-1")})
	table, err := eng.Summarize(ds, req)
	require.NoError(t, err)
	return table
}

func TestSummarize_HouseholdCount(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{Agg: request.AggHouseholdCount})

	require.Equal(t, 1, table.Len())
	row := table.Rows[0]
	assert.Equal(t, 600.0, row.W, "sum of the three household weights")
	// Replicate sums are 650 and 550.
	assert.InDelta(t, math.Sqrt(50*50+50*50), row.E, 1e-9)
	assert.Equal(t, 3.0, row.S)
	assert.Equal(t, 3, row.N)
	assert.Equal(t, "call-1", table.Meta.CallToken)
}

func TestSummarize_HouseholdCountByState(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg: request.AggHouseholdCount,
		By:  []string{"HHSTATE"},
	})

	require.Equal(t, 2, table.Len())
	// Ordered ascending by code: 06 before 37.
	assert.Equal(t, []string{"06"}, table.Rows[0].Groups)
	assert.Equal(t, 300.0, table.Rows[0].W)
	assert.Equal(t, []string{"37"}, table.Rows[1].Groups)
	assert.Equal(t, 300.0, table.Rows[1].W)
	assert.Equal(t, 2, table.Rows[1].N)
}

func TestSummarize_VehicleCountUsesHouseholdWeights(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{Agg: request.AggVehicleCount})

	require.Equal(t, 1, table.Len())
	// Each vehicle row carries its household's weight:
	// H1 has two vehicles, H2 one, H3 two.
	assert.Equal(t, 100.0+100+200+300+300, table.Rows[0].W)
	assert.Equal(t, 5, table.Rows[0].N)
}

func TestSummarize_PersonCountByWorker(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg: request.AggPersonCount,
		By:  []string{"WORKER"},
	})

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"01"}, table.Rows[0].Groups)
	assert.Equal(t, 450.0, table.Rows[0].W)
	assert.Equal(t, 3, table.Rows[0].N)
	assert.Equal(t, []string{"02"}, table.Rows[1].Groups)
	assert.Equal(t, 300.0, table.Rows[1].W)
	assert.Equal(t, 2, table.Rows[1].N)
}

// Scenario: trip_count by start hour with proportions. The W column
// must sum to 1 over all groups.
func TestSummarize_TripCountProportions(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:  request.AggTripCount,
		By:   []string{"STRTTIME"},
		Prop: true,
	})

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"08"}, table.Rows[0].Groups)
	assert.InDelta(t, 4500.0/8500.0, table.Rows[0].W, 1e-12)
	assert.InDelta(t, 3000.0/8500.0, table.Rows[1].W, 1e-12)
	assert.InDelta(t, 1000.0/8500.0, table.Rows[2].W, 1e-12)

	var wSum, sSum float64
	for _, row := range table.Rows {
		wSum += row.W
		sSum += row.S
	}
	assert.InDelta(t, 1.0, wSum, 1e-12)
	assert.InDelta(t, 1.0, sSum, 1e-12)

	// N stays the raw deduplicated row count.
	assert.Equal(t, 3, table.Rows[0].N)
	assert.True(t, table.Meta.Prop)
}

func TestSummarize_ProportionsWithPropBy(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:    request.AggTripCount,
		By:     []string{"DRIVER", "STRTTIME"},
		Prop:   true,
		PropBy: []string{"DRIVER"},
	})

	// Proportions sum to 1 within each DRIVER group.
	sums := map[string]float64{}
	for _, row := range table.Rows {
		sums[row.Groups[0]] += row.W
	}
	require.Len(t, sums, 2)
	assert.InDelta(t, 1.0, sums["01"], 1e-12)
	assert.InDelta(t, 1.0, sums["02"], 1e-12)
}

// Scenario: agg=avg over ANNMILES with a compound subset. One row;
// W is the weighted mean over the filtered vehicles.
func TestSummarize_AvgWithSubset(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:    request.AggAvg,
		AggVar: "ANNMILES",
		Subset: expr.AllOf(
			expr.Gt("VEHAGE", 0),
			expr.Lt("VEHAGE", 11),
			expr.Gt("ANNMILES", 500),
			expr.Lt("ANNMILES", 200000),
		),
	})

	require.Equal(t, 1, table.Len())
	row := table.Rows[0]
	// Survivors: H1 V1 (12000 @ 100) and H2 V1 (15000 @ 200).
	assert.InDelta(t, 14000.0, row.W, 1e-9)
	assert.Equal(t, 13500.0, row.S)
	assert.Equal(t, 2, row.N)

	rep1 := (110.0*12000 + 210.0*15000) / 320.0
	rep2 := (90.0*12000 + 190.0*15000) / 280.0
	want := math.Sqrt((rep1-14000)*(rep1-14000) + (rep2-14000)*(rep2-14000))
	assert.InDelta(t, want, row.E, 1e-9)

	assert.Equal(t, "ANNMILES", table.Meta.AggVar)
	assert.Equal(t, "Annual miles", table.Meta.AggVarLabel)
}

func TestSummarize_MedianTripMiles(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:    request.AggMedian,
		AggVar: "TRPMILES",
	})

	require.Equal(t, 1, table.Len())
	// Weighted: cumulative weight crosses half the 8500 total at 3.
	assert.Equal(t, 3.0, table.Rows[0].W)
	// Unweighted: middle of 2,3,5,6,8.
	assert.Equal(t, 5.0, table.Rows[0].S)
	assert.Equal(t, 5, table.Rows[0].N)
}

func TestSummarize_SumExcludesMissingAggVar(t *testing.T) {
	// H3 V1 carries the -9 sentinel for ANNMILES and must not leak
	// into the sum even without a subset.
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:    request.AggSum,
		AggVar: "ANNMILES",
	})

	require.Equal(t, 1, table.Len())
	want := 100.0*12000 + 100.0*9000 + 200.0*15000 + 300.0*300
	assert.InDelta(t, want, table.Rows[0].W, 1e-9)
	assert.Equal(t, 4, table.Rows[0].N)
}

// Scenario: household trip rate over everything. Exactly one row; W is
// total weighted trips over total weighted households, per day.
func TestSummarize_HouseholdTripRate(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{Agg: request.AggHouseholdTripRate})

	require.Equal(t, 1, table.Len())
	row := table.Rows[0]
	assert.InDelta(t, 8500.0/600.0/365.0, row.W, 1e-12)
	assert.InDelta(t, 5.0/3.0, row.S, 1e-12)
	assert.Equal(t, 5, row.N)

	rep1 := (1100.0 + 1000 + 2100 + 3000 + 1600) / 650.0 / 365.0
	rep2 := (900.0 + 1000 + 1900 + 3000 + 1400) / 550.0 / 365.0
	full := 8500.0 / 600.0 / 365.0
	want := math.Sqrt((rep1-full)*(rep1-full) + (rep2-full)*(rep2-full))
	assert.InDelta(t, want, row.E, 1e-12)
}

// Scenario: person trip rate by driver and worker status, both
// restricted to codes 01/02. One row per pair with surviving trips.
func TestSummarize_PersonTripRateByDriverWorker(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg: request.AggPersonTripRate,
		By:  []string{"DRIVER", "WORKER"},
		Subset: expr.AllOf(
			expr.OneOf("DRIVER", "01", "02"),
			expr.OneOf("WORKER", "01", "02"),
		),
	})

	// (02, 01) has a person but no trips: no numerator row, no output.
	require.Equal(t, 3, table.Len())

	assert.Equal(t, []string{"01", "01"}, table.Rows[0].Groups)
	assert.InDelta(t, 3500.0/310.0/365.0, table.Rows[0].W, 1e-12)
	assert.InDelta(t, 3.0/2.0, table.Rows[0].S, 1e-12)
	assert.Equal(t, 3, table.Rows[0].N)

	assert.Equal(t, []string{"01", "02"}, table.Rows[1].Groups)
	assert.InDelta(t, 3000.0/180.0/365.0, table.Rows[1].W, 1e-12)

	assert.Equal(t, []string{"02", "02"}, table.Rows[2].Groups)
	assert.InDelta(t, 2000.0/120.0/365.0, table.Rows[2].W, 1e-12)
}

func TestSummarize_TripRateWithTripLevelBy(t *testing.T) {
	// Trip-level grouping splits the numerator but not the denominator.
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg: request.AggHouseholdTripRate,
		By:  []string{"STRTTIME"},
	})

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"08"}, table.Rows[0].Groups)
	assert.InDelta(t, 4500.0/600.0/365.0, table.Rows[0].W, 1e-12)
	assert.InDelta(t, 3000.0/600.0/365.0, table.Rows[1].W, 1e-12)
	assert.InDelta(t, 1000.0/600.0/365.0, table.Rows[2].W, 1e-12)
}

func TestSummarize_TripRateZeroWeightDenominator(t *testing.T) {
	// A person sampled with weight zero still anchors the denominator
	// group; the rate over a zero weight sum degrades to NaN instead of
	// failing the call or producing Inf.
	household, err := dataset.NewEntityTable(
		dataset.LevelHousehold, []string{"HOUSEID"},
		[]string{"HOUSEID"}, [][]string{{"H1"}},
	)
	require.NoError(t, err)
	person, err := dataset.NewEntityTable(
		dataset.LevelPerson, []string{"HOUSEID", "PERSONID"},
		[]string{"HOUSEID", "PERSONID"}, [][]string{{"H1", "P1"}},
	)
	require.NoError(t, err)
	trip, err := dataset.NewEntityTable(
		dataset.LevelTrip, []string{"HOUSEID", "PERSONID", "TDTRPNUM"},
		[]string{"HOUSEID", "PERSONID", "TDTRPNUM"}, [][]string{{"H1", "P1", "T1"}},
	)
	require.NoError(t, err)
	personWS, err := dataset.NewWeightSet(
		dataset.LevelPerson, []string{"HOUSEID", "PERSONID"},
		[][]string{{"H1", "P1"}}, []float64{0}, [][]float64{{0, 0}},
	)
	require.NoError(t, err)
	tripWS, err := dataset.NewWeightSet(
		dataset.LevelTrip, []string{"HOUSEID", "PERSONID", "TDTRPNUM"},
		[][]string{{"H1", "P1", "T1"}}, []float64{100}, [][]float64{{110, 90}},
	)
	require.NoError(t, err)

	ds := &dataset.Dataset{
		Tables: map[dataset.Level]*dataset.EntityTable{
			dataset.LevelHousehold: household,
			dataset.LevelPerson:    person,
			dataset.LevelTrip:      trip,
		},
		Weights: map[dataset.Level]*dataset.WeightSet{
			dataset.LevelPerson: personWS,
			dataset.LevelTrip:   tripWS,
		},
		Catalog:        dataset.NewCatalog(),
		Replicates:     2,
		JackknifeScale: 1,
		AnnualDays:     365,
	}

	table, err := Summarize(ds, request.Request{Agg: request.AggPersonTripRate})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	row := table.Rows[0]
	assert.True(t, math.IsNaN(row.W), "zero weighted denominator leaves the rate undefined")
	assert.True(t, math.IsNaN(row.E), "NaN replicates make the standard error NaN")
	assert.Equal(t, 1.0, row.S, "the unweighted rate still counts sampled units")
	assert.Equal(t, 1, row.N)
}

func TestSummarize_AnnualDaysOverride(t *testing.T) {
	eng := New(Options{AnnualDays: 1, Tokens: NewFixedGenerator("call-1")})
	table, err := eng.Summarize(testutil.TinyDataset(t), request.Request{Agg: request.AggHouseholdTripRate})
	require.NoError(t, err)
	assert.InDelta(t, 8500.0/600.0, table.Rows[0].W, 1e-12, "override expresses trips per weight unit directly")
}

func TestSummarize_DroppedByWarning(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg: request.AggHouseholdCount,
		By:  []string{"STRTTIME", "HHSTATE"},
	})

	require.Len(t, table.Meta.Warnings, 1)
	assert.Contains(t, table.Meta.Warnings[0], "STRTTIME")
	assert.Equal(t, []string{"HHSTATE"}, table.Meta.By)
	require.Equal(t, 2, table.Len(), "remaining by still groups")
}

func TestSummarize_PropByDroppedWithGroupingVariable(t *testing.T) {
	// STRTTIME is trip-level and cannot join a household count, so both
	// the grouping variable and its prop_by role are dropped; the
	// proportions then normalize over the whole table.
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:    request.AggHouseholdCount,
		By:     []string{"STRTTIME", "HHSTATE"},
		Prop:   true,
		PropBy: []string{"STRTTIME"},
	})

	require.Len(t, table.Meta.Warnings, 2)
	assert.Contains(t, table.Meta.Warnings[0], `"STRTTIME" dropped`)
	assert.Contains(t, table.Meta.Warnings[1], "prop_by variable \"STRTTIME\" dropped")

	require.Equal(t, 2, table.Len())
	assert.InDelta(t, 0.5, table.Rows[0].W, 1e-12)
	assert.InDelta(t, 0.5, table.Rows[1].W, 1e-12)
}

func TestSummarize_PropIgnoredForNumeric(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:    request.AggAvg,
		AggVar: "TRPMILES",
		Prop:   true,
	})

	assert.False(t, table.Meta.Prop)
	require.Len(t, table.Meta.Warnings, 1)
	assert.Contains(t, table.Meta.Warnings[0], "prop=true ignored")
}

func TestSummarize_ExcludeMissingBy(t *testing.T) {
	ds := testutil.TinyDataset(t)

	withMissing := run(t, ds, request.Request{
		Agg: request.AggVehicleCount,
		By:  []string{"VEHAGE"},
	})
	require.Equal(t, 5, withMissing.Len())
	assert.Equal(t, []string{"-7"}, withMissing.Rows[0].Groups, "sentinel groups sort numerically first")

	excluded := run(t, ds, request.Request{
		Agg:            request.AggVehicleCount,
		By:             []string{"VEHAGE"},
		ExcludeMissing: true,
	})
	require.Equal(t, 4, excluded.Len())
	assert.Equal(t, []string{"2"}, excluded.Rows[0].Groups)
}

func TestSummarize_Labels(t *testing.T) {
	table := run(t, testutil.TinyDataset(t), request.Request{
		Agg:   request.AggPersonCount,
		By:    []string{"DRIVER"},
		Label: true,
	})

	require.Equal(t, 2, table.Len())
	// Ordered by code (01, 02) before labeling.
	assert.Equal(t, []string{"Yes"}, table.Rows[0].Groups)
	assert.Equal(t, 490.0, table.Rows[0].W)
	assert.Equal(t, []string{"No"}, table.Rows[1].Groups)
	assert.True(t, table.Meta.Label)
	assert.Equal(t, []string{"Driver status"}, table.Meta.ByLabels)
}

func TestSummarize_EqualReplicatesZeroSE(t *testing.T) {
	table := run(t, testutil.EqualReplicateDataset(t), request.Request{
		Agg: request.AggTripCount,
		By:  []string{"STRTTIME"},
	})

	require.NotEmpty(t, table.Rows)
	for _, row := range table.Rows {
		assert.Equal(t, 0.0, row.E, "group %v", row.Groups)
	}
}

func TestSummarize_ZeroSurvivingRows(t *testing.T) {
	ds := testutil.TinyDataset(t)
	subset := expr.Eq("HHSIZE", 99)

	counts, err := Summarize(ds, request.Request{Agg: request.AggHouseholdCount, Subset: subset})
	require.NoError(t, err)
	require.Equal(t, 1, counts.Len(), "implicit group still yields one row")
	assert.Equal(t, 0.0, counts.Rows[0].W)
	assert.Equal(t, 0, counts.Rows[0].N)

	avg, err := Summarize(ds, request.Request{Agg: request.AggAvg, AggVar: "HHSIZE", Subset: subset})
	require.NoError(t, err)
	require.Equal(t, 1, avg.Len())
	assert.True(t, math.IsNaN(avg.Rows[0].W), "empty mean is undefined, not an error")
	assert.True(t, math.IsNaN(avg.Rows[0].E))
}

func TestSummarize_ValidationErrors(t *testing.T) {
	ds := testutil.TinyDataset(t)

	_, err := Summarize(ds, request.Request{Agg: request.AggType("nope")})
	require.Error(t, err)
	assert.True(t, request.IsValidationError(err), "typed error survives wrapping")
	assert.Contains(t, err.Error(), "nope")

	_, err = Summarize(ds, request.Request{Agg: request.AggSum})
	assert.True(t, request.IsValidationError(err))

	_, err = Summarize(ds, request.Request{Agg: request.AggTripCount, By: []string{"GHOST"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHOST")
}

func TestSummarize_ExpressionErrors(t *testing.T) {
	ds := testutil.TinyDataset(t)

	_, err := Summarize(ds, request.Request{
		Agg:    request.AggHouseholdCount,
		Subset: expr.Gt("GHOST", 1),
	})
	require.Error(t, err)
	var ee *expr.ExpressionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "GHOST", ee.Variable)

	// A catalogued variable outside the joined levels is equally
	// unknown to this call's row schema.
	_, err = Summarize(ds, request.Request{
		Agg:    request.AggHouseholdCount,
		Subset: expr.OneOf("STRTTIME", "08"),
	})
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "STRTTIME", ee.Variable)
}

func TestSummarize_NilDataset(t *testing.T) {
	_, err := Summarize(nil, request.Request{Agg: request.AggHouseholdCount})
	assert.ErrorContains(t, err, "nil dataset")
}

func TestSummarize_ConcurrentCalls(t *testing.T) {
	ds := testutil.TinyDataset(t)
	eng := New(Options{})

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			table, err := eng.Summarize(ds, request.Request{
				Agg: request.AggTripCount,
				By:  []string{"STRTTIME"},
			})
			if err == nil && table.Len() != 3 {
				err = errors.New("unexpected row count")
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
