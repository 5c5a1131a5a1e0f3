package engine

import (
	"fmt"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/expr"
	"github.com/svyest/svyest/internal/frame"
	"github.com/svyest/svyest/request"
)

// missingClause builds the exclusion predicate for one variable: the
// cell must be present and must not carry one of the variable's
// sentinel codes.
func missingClause(cat *dataset.Catalog, name string) expr.Predicate {
	preds := []expr.Predicate{expr.Present{Var: name}}
	if codes := cat.MissingCodes(name); len(codes) > 0 {
		preds = append(preds, expr.Not{Pred: expr.In{Var: name, Codes: codes}})
	}
	return expr.And{Preds: preds}
}

// buildFilter conjoins the request's subset predicate with the
// missing-value policy: the aggregated variable is always protected
// (numeric statistics never admit sentinel values), grouping variables
// only when ExcludeMissing is set.
func buildFilter(cat *dataset.Catalog, req request.Request, p *plan) expr.Predicate {
	var preds []expr.Predicate
	if req.Subset != nil {
		preds = append(preds, req.Subset)
	}
	if req.Agg.IsNumeric() {
		preds = append(preds,
			expr.ValidNumber{Var: req.AggVar},
			missingClause(cat, req.AggVar),
		)
	}
	if req.ExcludeMissing {
		for _, name := range p.by {
			preds = append(preds, missingClause(cat, name))
		}
	}
	return expr.And{Preds: preds}
}

// joinLevels full-outer-joins the entity tables of the plan's levels,
// coarsest first. Fan-out (several persons per household, several trips
// per person) is expected here and resolved by projection+dedup later.
func joinLevels(ds *dataset.Dataset, p *plan) *frame.Table {
	var joined *frame.Table
	for _, level := range p.levels {
		table, _ := ds.Table(level)
		ft := frame.FromEntity(table)
		if joined == nil {
			joined = ft
		} else {
			joined = joined.OuterJoin(ft)
		}
	}
	return joined
}

// joinAndFilter produces the filtered row set every aggregator starts
// from: the joined level tables with the compiled filter applied. The
// filter compiles against the joined schema, so a subset predicate
// referencing a variable outside the joined levels is an expression
// error naming that variable.
func joinAndFilter(ds *dataset.Dataset, req request.Request, p *plan) (*frame.Table, error) {
	joined := joinLevels(ds, p)

	ev, err := expr.Compile(buildFilter(ds.Catalog, req, p), joined.Has)
	if err != nil {
		return nil, err
	}
	return joined.Select(ev), nil
}

// projectDistinct narrows a row set to the given columns and removes
// duplicate rows. The dedup is what keeps a coarse-level attribute from
// being counted once per finer-level row it joined against.
func projectDistinct(t *frame.Table, cols []string) (*frame.Table, error) {
	proj, err := t.Project(dedupColumns(cols))
	if err != nil {
		return nil, fmt.Errorf("project row set: %w", err)
	}
	return proj.Dedup(), nil
}

// dedupColumns removes duplicate names while preserving order; the
// pkey, by, and agg_var column sets may overlap.
func dedupColumns(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
