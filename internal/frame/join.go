package frame

import (
	"github.com/svyest/svyest/dataset"
)

// OuterJoin natural-joins two tables with full-outer semantics on their
// shared columns. Multiple matches per key are permitted (hierarchy
// fan-out is expected and resolved later by Project+Dedup). Rows
// without a partner keep their own cells and read "" for the other
// side's columns. With no shared columns the result is the cartesian
// product, per natural-join convention.
func (t *Table) OuterJoin(other *Table) *Table {
	var shared []string
	for _, c := range t.cols {
		if other.Has(c) {
			shared = append(shared, c)
		}
	}

	outCols := append([]string{}, t.cols...)
	var rightExtra []string
	for _, c := range other.cols {
		if !t.Has(c) {
			rightExtra = append(rightExtra, c)
			outCols = append(outCols, c)
		}
	}

	leftKeyIdx := make([]int, len(shared))
	rightKeyIdx := make([]int, len(shared))
	for i, c := range shared {
		leftKeyIdx[i] = t.index[c]
		rightKeyIdx[i] = other.index[c]
	}
	rightExtraIdx := make([]int, len(rightExtra))
	for i, c := range rightExtra {
		rightExtraIdx[i] = other.index[c]
	}

	combine := func(left []string, rightRow int) []string {
		out := make([]string, 0, len(outCols))
		out = append(out, left...)
		for _, ci := range rightExtraIdx {
			if rightRow < 0 {
				out = append(out, "")
			} else {
				out = append(out, other.rows[rightRow][ci])
			}
		}
		return out
	}

	if len(shared) == 0 {
		// Cartesian product; degenerate for the fixed hierarchy but
		// kept for natural-join completeness.
		var rows [][]string
		if other.Len() == 0 {
			for i := range t.rows {
				rows = append(rows, combine(t.rows[i], -1))
			}
		} else {
			for i := range t.rows {
				for j := range other.rows {
					rows = append(rows, combine(t.rows[i], j))
				}
			}
		}
		return New(outCols, rows)
	}

	byKey := make(map[string][]int, other.Len())
	for j := range other.rows {
		k := other.rowKey(j, rightKeyIdx)
		byKey[k] = append(byKey[k], j)
	}

	matched := make([]bool, other.Len())
	rows := make([][]string, 0, t.Len())
	for i := range t.rows {
		k := t.rowKey(i, leftKeyIdx)
		partners := byKey[k]
		if len(partners) == 0 {
			rows = append(rows, combine(t.rows[i], -1))
			continue
		}
		for _, j := range partners {
			matched[j] = true
			rows = append(rows, combine(t.rows[i], j))
		}
	}

	// Right rows with no left partner: "" for left-only columns,
	// shared columns carry the right side's values.
	for j := range other.rows {
		if matched[j] {
			continue
		}
		left := make([]string, len(t.cols))
		for _, c := range shared {
			left[t.index[c]] = other.rows[j][other.index[c]]
		}
		rows = append(rows, combine(left, j))
	}

	return New(outCols, rows)
}

// Weighted couples a row set with the weight columns attached to it.
// Primary[i] and Replicates[i] align with table row i.
type Weighted struct {
	*Table
	Primary    []float64
	Replicates [][]float64
}

// AttachWeights inner-joins the table against a weight set on the weight
// set's key columns. Rows with any empty cell among requireNonEmpty
// (the stat level's full key chain) and rows with no matching weight,
// meaning unsampled or out-of-scope units, are dropped.
func (t *Table) AttachWeights(ws *dataset.WeightSet, requireNonEmpty []string) *Weighted {
	keyIdx := make([]int, len(ws.KeyColumns))
	for i, c := range ws.KeyColumns {
		ci, ok := t.index[c]
		if !ok {
			// Weight key column absent from the row set: nothing joins.
			return &Weighted{Table: New(t.cols, nil)}
		}
		keyIdx[i] = ci
	}
	reqIdx := make([]int, 0, len(requireNonEmpty))
	for _, c := range requireNonEmpty {
		if ci, ok := t.index[c]; ok {
			reqIdx = append(reqIdx, ci)
		}
	}

	var rows [][]string
	var primary []float64
	var replicates [][]float64
rowLoop:
	for i, row := range t.rows {
		for _, ci := range reqIdx {
			if row[ci] == "" {
				continue rowLoop
			}
		}
		key := make([]string, len(keyIdx))
		for j, ci := range keyIdx {
			key[j] = row[ci]
		}
		wi, ok := ws.Lookup(key)
		if !ok {
			continue
		}
		rows = append(rows, t.rows[i])
		primary = append(primary, ws.Primary[wi])
		replicates = append(replicates, ws.Replicates[wi])
	}
	return &Weighted{Table: New(t.cols, rows), Primary: primary, Replicates: replicates}
}
