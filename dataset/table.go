package dataset

import "fmt"

// EntityTable holds the rows for one hierarchy level. Cells are stored
// as raw survey codes (strings); numeric interpretation happens at
// aggregation time under the Catalog's missing-value rules.
//
// KeyColumns is the full primary-key chain for the level, ancestor keys
// first (e.g. trip: HOUSEID, PERSONID, TDTRPNUM). Every key column must
// appear in Columns.
type EntityTable struct {
	Level      Level
	KeyColumns []string
	Columns    []string

	rows  [][]string
	index map[string]int
}

// NewEntityTable builds an EntityTable and validates its shape: the
// level must be known, every key column must be present, and every row
// must have exactly one cell per column.
func NewEntityTable(level Level, keyColumns, columns []string, rows [][]string) (*EntityTable, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("entity table: unknown level %q", level)
	}
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("entity table %s: duplicate column %q", level, col)
		}
		index[col] = i
	}
	for _, key := range keyColumns {
		if _, ok := index[key]; !ok {
			return nil, fmt.Errorf("entity table %s: key column %q not in columns", level, key)
		}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("entity table %s: row %d has %d cells, want %d", level, i, len(row), len(columns))
		}
	}
	return &EntityTable{
		Level:      level,
		KeyColumns: keyColumns,
		Columns:    columns,
		rows:       rows,
		index:      index,
	}, nil
}

// Len returns the number of rows.
func (t *EntityTable) Len() int { return len(t.rows) }

// HasColumn reports whether the table carries the named column.
func (t *EntityTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the cell at row i for the named column. Unknown columns
// yield the empty string, which the Catalog treats as missing.
func (t *EntityTable) Cell(i int, column string) string {
	ci, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.rows[i][ci]
}

// Row returns the raw cells of row i. Callers must not mutate it.
func (t *EntityTable) Row(i int) []string { return t.rows[i] }
