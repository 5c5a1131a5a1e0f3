package dataset

import (
	"fmt"
	"strings"
)

// keySep joins key tuples into lookup strings. Unit separator never
// occurs in survey codes.
const keySep = "\x1f"

// WeightSet holds the primary weight and the ordered replicate weights
// for one level, keyed by that level's primary-key chain. Row i of Keys
// aligns with Primary[i] and Replicates[i].
type WeightSet struct {
	Level      Level
	KeyColumns []string
	Keys       [][]string
	Primary    []float64
	Replicates [][]float64

	byKey map[string]int
}

// NewWeightSet builds a WeightSet and its key index. Every row must
// carry the same replicate count and a complete key tuple; duplicate
// keys are rejected.
func NewWeightSet(level Level, keyColumns []string, keys [][]string, primary []float64, replicates [][]float64) (*WeightSet, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("weight set: unknown level %q", level)
	}
	if len(keys) != len(primary) || len(keys) != len(replicates) {
		return nil, fmt.Errorf("weight set %s: %d keys, %d primary, %d replicate rows", level, len(keys), len(primary), len(replicates))
	}
	reps := -1
	byKey := make(map[string]int, len(keys))
	for i, key := range keys {
		if len(key) != len(keyColumns) {
			return nil, fmt.Errorf("weight set %s: key row %d has %d cells, want %d", level, i, len(key), len(keyColumns))
		}
		for _, cell := range key {
			if cell == "" {
				return nil, fmt.Errorf("weight set %s: key row %d has an empty key cell", level, i)
			}
		}
		if reps == -1 {
			reps = len(replicates[i])
		} else if len(replicates[i]) != reps {
			return nil, fmt.Errorf("weight set %s: row %d has %d replicates, want %d", level, i, len(replicates[i]), reps)
		}
		jk := strings.Join(key, keySep)
		if _, dup := byKey[jk]; dup {
			return nil, fmt.Errorf("weight set %s: duplicate key %v", level, key)
		}
		byKey[jk] = i
	}
	return &WeightSet{
		Level:      level,
		KeyColumns: keyColumns,
		Keys:       keys,
		Primary:    primary,
		Replicates: replicates,
		byKey:      byKey,
	}, nil
}

// ReplicateCount returns the number of replicate weights per row, 0 for
// an empty set.
func (w *WeightSet) ReplicateCount() int {
	if len(w.Replicates) == 0 {
		return 0
	}
	return len(w.Replicates[0])
}

// Lookup finds the weight row for a key tuple.
func (w *WeightSet) Lookup(key []string) (int, bool) {
	i, ok := w.byKey[strings.Join(key, keySep)]
	return i, ok
}
