package engine

import (
	"sort"
	"strconv"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/request"
)

// Row is one output row: the grouping cells (raw codes, or labels when
// labeling was requested) and the four statistics.
type Row struct {
	// Groups holds one cell per grouping variable, in By order.
	Groups []string

	// W is the weighted statistic under the primary weight.
	W float64

	// E is the jackknife standard error of W.
	E float64

	// S is the unweighted statistic.
	S float64

	// N is the sample size behind the row.
	N int
}

// Metadata describes how a summary table was produced.
type Metadata struct {
	Agg         request.AggType
	AggVar      string
	AggVarLabel string

	// By and ByLabels name the grouping variables and their catalog
	// labels, in column order.
	By       []string
	ByLabels []string

	// Prop reports whether the W and S columns are proportions. False
	// when the request asked for proportions on a non-frequency
	// aggregate (that request is ignored with a warning).
	Prop bool

	// Label reports whether grouping cells carry display labels.
	Label bool

	// CallToken identifies the engine call that produced this table.
	CallToken string

	// Warnings lists every recoverable problem encountered: grouping
	// variables dropped for level mismatch, ignored proportion flags.
	Warnings []string
}

// SummaryTable is the engine's output: one row per distinct grouping
// combination present after filtering, ordered ascending by the
// underlying codes, plus metadata.
type SummaryTable struct {
	By   []string
	Rows []Row
	Meta Metadata
}

// Len returns the number of result rows.
func (t *SummaryTable) Len() int { return len(t.Rows) }

// Row returns result row i.
func (t *SummaryTable) Row(i int) Row { return t.Rows[i] }

// Groups returns the grouping cells of every row, in row order.
func (t *SummaryTable) Groups() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Groups
	}
	return out
}

// assemble merges the per-group partials into the final table: compute
// each group's standard error from its replicate spread, order rows by
// raw code, then optionally swap codes for display labels. The three
// statistics travel together inside groupStat, so the group sets of W,
// S, and N agree by construction.
func assemble(ds *dataset.Dataset, req request.Request, p *plan, stats []groupStat, token string, warnings []string, effectiveProp bool) *SummaryTable {
	sort.SliceStable(stats, func(a, b int) bool {
		return compareCodes(stats[a].key, stats[b].key) < 0
	})

	rows := make([]Row, len(stats))
	for i, st := range stats {
		groups := st.key
		if req.Label {
			groups = make([]string, len(st.key))
			for j, code := range st.key {
				groups[j] = ds.Catalog.ValueLabel(p.by[j], code)
			}
		}
		rows[i] = Row{
			Groups: groups,
			W:      st.w,
			E:      jackknifeSE(st.w, st.reps, ds.JackknifeScale),
			S:      st.s,
			N:      st.n,
		}
	}

	meta := Metadata{
		Agg:       req.Agg,
		By:        p.by,
		ByLabels:  make([]string, len(p.by)),
		Prop:      effectiveProp,
		Label:     req.Label,
		CallToken: token,
		Warnings:  warnings,
	}
	for i, name := range p.by {
		meta.ByLabels[i] = ds.Catalog.Label(name)
	}
	if req.Agg.IsNumeric() {
		meta.AggVar = req.AggVar
		meta.AggVarLabel = ds.Catalog.Label(req.AggVar)
	}

	return &SummaryTable{By: p.by, Rows: rows, Meta: meta}
}

// compareCodes orders grouping keys ascending by underlying code:
// cell pairs that both parse as numbers compare numerically (so "2"
// sorts before "10"), anything else compares as text.
func compareCodes(a, b []string) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := compareCode(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

func compareCode(a, b string) int {
	av, aerr := strconv.ParseFloat(a, 64)
	bv, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
