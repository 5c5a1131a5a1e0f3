package harness

import (
	"fmt"
	"strings"

	"github.com/svyest/svyest/engine"
)

// Result collects the outcome of running a scenario. Tables holds one
// summary per call that produced output; a call whose expect.error
// matched contributes no table. Failures lists every expectation that
// did not hold.
type Result struct {
	Scenario *Scenario
	Tables   []*engine.SummaryTable
	Failures []string
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool { return len(r.Failures) == 0 }

// Run builds the scenario's dataset and executes its calls in order.
// An error return means the scenario itself is broken (dataset does not
// build, or a call failed without declaring expect.error); expectation
// mismatches are recorded on the Result instead.
func Run(scenario *Scenario) (*Result, error) {
	ds, err := scenario.Dataset.BuildDataset()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build dataset: %w", scenario.Name, err)
	}

	result := &Result{Scenario: scenario}
	for i, call := range scenario.Calls {
		req, err := call.BuildRequest()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: calls[%d]: %w", scenario.Name, i, err)
		}

		// One generator per call so an expected failure does not shift
		// the tokens of the calls after it.
		eng := engine.New(engine.Options{Tokens: engine.NewFixedGenerator(call.Token)})
		table, err := eng.Summarize(ds, req)

		if call.Expect != nil && call.Expect.Error != "" {
			switch {
			case err == nil:
				result.Failures = append(result.Failures, fmt.Sprintf(
					"calls[%d] (%s): expected error containing %q, call succeeded", i, call.Token, call.Expect.Error))
			case !strings.Contains(err.Error(), call.Expect.Error):
				result.Failures = append(result.Failures, fmt.Sprintf(
					"calls[%d] (%s): expected error containing %q, got %q", i, call.Token, call.Expect.Error, err))
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %s: calls[%d] (%s): %w", scenario.Name, i, call.Token, err)
		}

		if call.Expect != nil && call.Expect.Rows != nil && table.Len() != *call.Expect.Rows {
			result.Failures = append(result.Failures, fmt.Sprintf(
				"calls[%d] (%s): expected %d rows, got %d", i, call.Token, *call.Expect.Rows, table.Len()))
		}
		result.Tables = append(result.Tables, table)
	}
	return result, nil
}
