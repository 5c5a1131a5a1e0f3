package frame

// Group is one group-by bucket: the grouping key cells and the indices
// of member rows in the source table.
type Group struct {
	Key  []string
	Rows []int
}

// GroupBy buckets rows by the named columns, in first-seen order. With
// no columns it returns a single group holding every row (the implicit
// whole-table group), even when the table is empty: degenerate inputs
// still produce one output row there.
func (t *Table) GroupBy(cols []string) []Group {
	if len(cols) == 0 {
		all := make([]int, t.Len())
		for i := range all {
			all[i] = i
		}
		return []Group{{Key: []string{}, Rows: all}}
	}

	colIdx := make([]int, len(cols))
	for i, c := range cols {
		ci, ok := t.index[c]
		if !ok {
			ci = -1
		}
		colIdx[i] = ci
	}

	byKey := make(map[string]int)
	var groups []Group
	for i := range t.rows {
		key := make([]string, len(cols))
		for j, ci := range colIdx {
			if ci >= 0 {
				key[j] = t.rows[i][ci]
			}
		}
		hk := joinKey(key)
		gi, ok := byKey[hk]
		if !ok {
			gi = len(groups)
			byKey[hk] = gi
			groups = append(groups, Group{Key: key})
		}
		groups[gi].Rows = append(groups[gi].Rows, i)
	}
	return groups
}

func joinKey(cells []string) string {
	out := ""
	for i, c := range cells {
		if i > 0 {
			out += cellSep
		}
		out += c
	}
	return out
}
