package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/svyest/svyest/dataset"
)

// LoadDataset materializes the whole file into a dataset.Dataset:
// replication constants, catalog, the entity table of every level
// present, and every <level>_weights table. The result is validated
// before it is returned.
func (s *Store) LoadDataset() (*dataset.Dataset, error) {
	replicates, scale, annualDays, err := s.loadMeta()
	if err != nil {
		return nil, err
	}
	levelKeys, err := s.loadLevelKeys()
	if err != nil {
		return nil, err
	}
	catalog, err := s.loadCatalog()
	if err != nil {
		return nil, err
	}

	ds := &dataset.Dataset{
		Tables:         make(map[dataset.Level]*dataset.EntityTable),
		Weights:        make(map[dataset.Level]*dataset.WeightSet),
		Catalog:        catalog,
		Replicates:     replicates,
		JackknifeScale: scale,
		AnnualDays:     annualDays,
	}

	for _, level := range dataset.Levels {
		present, err := s.hasTable(string(level))
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		keys, ok := levelKeys[level]
		if !ok {
			return nil, fmt.Errorf("load dataset: level_keys has no entry for %s", level)
		}
		table, err := s.loadEntityTable(level, keys)
		if err != nil {
			return nil, err
		}
		ds.Tables[level] = table

		weightTable := string(level) + "_weights"
		present, err = s.hasTable(weightTable)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		ws, err := s.loadWeightSet(level, keys, replicates)
		if err != nil {
			return nil, err
		}
		ds.Weights[level] = ws
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return ds, nil
}

// loadMeta reads the single-row meta table.
func (s *Store) loadMeta() (replicates int, scale, annualDays float64, err error) {
	err = s.db.QueryRow(
		`SELECT replicates, jackknife_scale, annual_days FROM meta`,
	).Scan(&replicates, &scale, &annualDays)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("load meta: %w", err)
	}
	return replicates, scale, annualDays, nil
}

// loadLevelKeys reads each level's ordered key-column chain.
func (s *Store) loadLevelKeys() (map[dataset.Level][]string, error) {
	rows, err := s.db.Query(
		`SELECT level, column_name FROM level_keys ORDER BY level, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("load level_keys: %w", err)
	}
	defer rows.Close()

	out := make(map[dataset.Level][]string)
	for rows.Next() {
		var levelName, column string
		if err := rows.Scan(&levelName, &column); err != nil {
			return nil, fmt.Errorf("load level_keys: %w", err)
		}
		level, err := dataset.ParseLevel(levelName)
		if err != nil {
			return nil, fmt.Errorf("load level_keys: %w", err)
		}
		out[level] = append(out[level], column)
	}
	return out, rows.Err()
}

// loadCatalog reads the codebook and the optional value_labels table.
func (s *Store) loadCatalog() (*dataset.Catalog, error) {
	labels := make(map[string]map[string]string)
	present, err := s.hasTable("value_labels")
	if err != nil {
		return nil, err
	}
	if present {
		rows, err := s.db.Query(`SELECT name, code, label FROM value_labels`)
		if err != nil {
			return nil, fmt.Errorf("load value_labels: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name, code, label string
			if err := rows.Scan(&name, &code, &label); err != nil {
				return nil, fmt.Errorf("load value_labels: %w", err)
			}
			if labels[name] == nil {
				labels[name] = make(map[string]string)
			}
			labels[name][code] = label
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.Query(`SELECT name, level, label, missing_codes FROM codebook`)
	if err != nil {
		return nil, fmt.Errorf("load codebook: %w", err)
	}
	defer rows.Close()

	var vars []dataset.Variable
	for rows.Next() {
		var name, levelName, label string
		var missing sql.NullString
		if err := rows.Scan(&name, &levelName, &label, &missing); err != nil {
			return nil, fmt.Errorf("load codebook: %w", err)
		}
		level, err := dataset.ParseLevel(levelName)
		if err != nil {
			return nil, fmt.Errorf("load codebook: variable %q: %w", name, err)
		}
		v := dataset.Variable{
			Name:        name,
			Level:       level,
			Label:       label,
			ValueLabels: labels[name],
		}
		if missing.Valid && missing.String != "" {
			v.MissingCodes = strings.Split(missing.String, ",")
		}
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.NewCatalog(vars...), nil
}

// loadEntityTable reads one level's table with all its columns. Cells
// arrive as strings regardless of SQLite storage class; NULL reads as
// the empty string, which the catalog treats as missing.
func (s *Store) loadEntityTable(level dataset.Level, keyColumns []string) (*dataset.EntityTable, error) {
	rows, err := s.db.Query(`SELECT * FROM ` + string(level))
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", level, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", level, err)
	}

	var data [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dests := make([]any, len(columns))
		for i := range cells {
			dests[i] = &cells[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("load %s table: %w", level, err)
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.NewEntityTable(level, keyColumns, columns, data)
}

// loadWeightSet reads <level>_weights: the key columns, the primary
// weight, and rep_1..rep_K in order.
func (s *Store) loadWeightSet(level dataset.Level, keyColumns []string, replicates int) (*dataset.WeightSet, error) {
	cols := make([]string, 0, len(keyColumns)+1+replicates)
	cols = append(cols, keyColumns...)
	cols = append(cols, "weight")
	for k := 1; k <= replicates; k++ {
		cols = append(cols, fmt.Sprintf("rep_%d", k))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s_weights`, strings.Join(cols, ", "), level)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("load %s weights: %w", level, err)
	}
	defer rows.Close()

	var keys [][]string
	var primary []float64
	var reps [][]float64
	for rows.Next() {
		keyCells := make([]sql.NullString, len(keyColumns))
		var w float64
		repCells := make([]float64, replicates)

		dests := make([]any, 0, len(cols))
		for i := range keyCells {
			dests = append(dests, &keyCells[i])
		}
		dests = append(dests, &w)
		for i := range repCells {
			dests = append(dests, &repCells[i])
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("load %s weights: %w", level, err)
		}

		key := make([]string, len(keyCells))
		for i, c := range keyCells {
			if c.Valid {
				key[i] = c.String
			}
		}
		keys = append(keys, key)
		primary = append(primary, w)
		reps = append(reps, repCells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.NewWeightSet(level, keyColumns, keys, primary, reps)
}
