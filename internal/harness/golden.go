package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/svyest/svyest/engine"
)

// snapshot converts a scenario result to the map shape the canonical
// serializer accepts. Optional fields are omitted when zero so golden
// files stay small.
func snapshot(result *Result) map[string]any {
	tables := make([]any, len(result.Tables))
	for i, table := range result.Tables {
		tables[i] = snapshotTable(table)
	}
	return map[string]any{
		"scenario": result.Scenario.Name,
		"results":  tables,
	}
}

func snapshotTable(table *engine.SummaryTable) map[string]any {
	rows := make([]any, len(table.Rows))
	for i, row := range table.Rows {
		groups := make([]any, len(row.Groups))
		for j, g := range row.Groups {
			groups[j] = g
		}
		rows[i] = map[string]any{
			"groups": groups,
			"w":      row.W,
			"e":      row.E,
			"s":      row.S,
			"n":      row.N,
		}
	}

	out := map[string]any{
		"agg":   string(table.Meta.Agg),
		"rows":  rows,
		"token": table.Meta.CallToken,
	}
	if table.Meta.AggVar != "" {
		out["agg_var"] = table.Meta.AggVar
	}
	if len(table.By) > 0 {
		by := make([]any, len(table.By))
		for i, b := range table.By {
			by[i] = b
		}
		out["by"] = by
	}
	if table.Meta.Prop {
		out["prop"] = true
	}
	if len(table.Meta.Warnings) > 0 {
		warnings := make([]any, len(table.Meta.Warnings))
		for i, w := range table.Meta.Warnings {
			warnings[i] = w
		}
		out["warnings"] = warnings
	}
	return out
}

// RunWithGolden executes a scenario, fails the test on any expectation
// mismatch, and compares the canonical snapshot of the results against
// testdata/golden/{scenario.Name}.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	for _, failure := range result.Failures {
		t.Error(failure)
	}

	data, err := MarshalCanonical(snapshot(result))
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
