package engine

import (
	"fmt"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/request"
)

// Options configures an Engine. The zero value is ready to use.
type Options struct {
	// AnnualDays overrides the dataset's annualization constant for
	// ratio aggregates. Zero keeps the dataset value.
	AnnualDays float64

	// Tokens mints call tokens; nil selects UUIDv7Generator.
	Tokens TokenGenerator
}

// Engine runs aggregation calls. It holds only configuration and no
// call retains state, so one Engine serves concurrent Summarize calls.
type Engine struct {
	opts Options
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	if opts.Tokens == nil {
		opts.Tokens = UUIDv7Generator{}
	}
	return &Engine{opts: opts}
}

// Summarize is the package-level convenience entry with default
// options.
func Summarize(ds *dataset.Dataset, req request.Request) (*SummaryTable, error) {
	return New(Options{}).Summarize(ds, req)
}

// Summarize runs one aggregation call: validate, resolve levels, join
// and filter, aggregate under the primary and every replicate weight,
// estimate standard errors, and assemble the labeled table.
//
// Structural problems (an unknown aggregate type, a variable missing
// from the catalog, an invalid subset predicate) fail the whole call
// with a typed error naming the offending input. Data sparsity never
// fails a call; affected cells carry NaN instead.
func (e *Engine) Summarize(ds *dataset.Dataset, req request.Request) (*SummaryTable, error) {
	if ds == nil {
		return nil, fmt.Errorf("summarize: nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if err := req.Validate(ds.Catalog); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	p, warnings, err := resolve(ds, req)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	filtered, err := joinAndFilter(ds, req, p)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	effectiveProp := req.Prop && req.Agg.IsFrequency()
	if req.Prop && !req.Agg.IsFrequency() {
		warnings = append(warnings, fmt.Sprintf(
			"prop=true ignored: proportions are undefined for %s", req.Agg))
		req.Prop = false
	}

	var stats []groupStat
	switch {
	case req.Agg.IsFrequency():
		stats, err = aggregateFrequency(ds, req, p, filtered)
	case req.Agg.IsNumeric():
		stats, err = aggregateNumeric(ds, req, p, filtered)
	default:
		stats, err = aggregateRatio(ds, req, p, filtered, e.annualDays(ds))
	}
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return assemble(ds, req, p, stats, e.opts.Tokens.Generate(), warnings, effectiveProp), nil
}

// annualDays picks the annualization constant: the engine option when
// set, the dataset's otherwise.
func (e *Engine) annualDays(ds *dataset.Dataset) float64 {
	if e.opts.AnnualDays > 0 {
		return e.opts.AnnualDays
	}
	return ds.AnnualDays
}
