package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/expr"
)

// cellSep joins cells into hash keys. The unit separator cannot occur
// in survey codes.
const cellSep = "\x1f"

// Table is an immutable column-named row set.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New builds a Table from column names and rows. Rows must be
// rectangular; New panics otherwise since the engine always constructs
// tables from validated inputs.
func New(cols []string, rows [][]string) *Table {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			panic(fmt.Sprintf("frame: row %d has %d cells, want %d", i, len(row), len(cols)))
		}
	}
	return &Table{cols: cols, index: index, rows: rows}
}

// FromEntity wraps an entity table's rows without copying cells.
func FromEntity(t *dataset.EntityTable) *Table {
	rows := make([][]string, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return New(t.Columns, rows)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return t.cols }

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table carries the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Cell returns row i's cell for col, "" when the column is absent.
func (t *Table) Cell(i int, col string) string {
	ci, ok := t.index[col]
	if !ok {
		return ""
	}
	return t.rows[i][ci]
}

// Float parses row i's cell for col as a number.
func (t *Table) Float(i int, col string) (float64, bool) {
	cell := t.Cell(i, col)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ValueFunc adapts row i for predicate evaluation.
func (t *Table) ValueFunc(i int) expr.ValueFunc {
	return func(col string) (string, bool) {
		ci, ok := t.index[col]
		if !ok {
			return "", false
		}
		return t.rows[i][ci], true
	}
}

// Select returns the rows satisfying a compiled predicate.
func (t *Table) Select(ev expr.Evaluator) *Table {
	kept := make([][]string, 0, len(t.rows))
	for i := range t.rows {
		if ev(t.ValueFunc(i)) {
			kept = append(kept, t.rows[i])
		}
	}
	return New(t.cols, kept)
}

// Project returns a table with exactly the named columns, in order.
// Projecting a column the table does not carry is a caller bug.
func (t *Table) Project(cols []string) (*Table, error) {
	src := make([]int, len(cols))
	for i, c := range cols {
		ci, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("frame: project: no column %q", c)
		}
		src[i] = ci
	}
	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		out := make([]string, len(cols))
		for i, ci := range src {
			out[i] = row[ci]
		}
		rows[r] = out
	}
	return New(cols, rows), nil
}

// Dedup removes exact duplicate rows, keeping first occurrences in
// order. This is what prevents a coarse-level attribute from being
// counted once per matching finer-level row after a fan-out join.
func (t *Table) Dedup() *Table {
	seen := make(map[string]struct{}, len(t.rows))
	kept := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		key := strings.Join(row, cellSep)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	return New(t.cols, kept)
}

// rowKey joins the cells of the named columns for hashing.
func (t *Table) rowKey(i int, cols []int) string {
	parts := make([]string, len(cols))
	for j, ci := range cols {
		parts[j] = t.rows[i][ci]
	}
	return strings.Join(parts, cellSep)
}
