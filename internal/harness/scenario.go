package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/expr"
	"github.com/svyest/svyest/request"
)

// Scenario is one declarative conformance test: an inline dataset plus
// a sequence of engine calls with expected shapes.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Dataset declares the inline survey data the calls run against.
	Dataset DatasetSpec `yaml:"dataset"`

	// Calls lists the engine calls to run, in order.
	Calls []CallStep `yaml:"calls"`
}

// DatasetSpec declares an inline dataset.
type DatasetSpec struct {
	Replicates     int     `yaml:"replicates"`
	JackknifeScale float64 `yaml:"jackknife_scale"`
	AnnualDays     float64 `yaml:"annual_days"`

	Levels  []LevelSpec    `yaml:"levels"`
	Weights []WeightSpec   `yaml:"weights,omitempty"`
	Catalog []VariableSpec `yaml:"catalog,omitempty"`
}

// LevelSpec declares one entity table. Cells are written as strings so
// scenarios carry codes exactly as a survey file would.
type LevelSpec struct {
	Level   string     `yaml:"level"`
	Keys    []string   `yaml:"keys"`
	Columns []string   `yaml:"columns"`
	Rows    [][]string `yaml:"rows"`
}

// WeightSpec declares one level's weight set.
type WeightSpec struct {
	Level string      `yaml:"level"`
	Keys  []string    `yaml:"keys"`
	Rows  []WeightRow `yaml:"rows"`
}

// WeightRow is one weighted unit: its key tuple, primary weight, and
// ordered replicate weights.
type WeightRow struct {
	Key        []string  `yaml:"key"`
	Weight     float64   `yaml:"weight"`
	Replicates []float64 `yaml:"replicates"`
}

// VariableSpec declares one catalog entry.
type VariableSpec struct {
	Name    string            `yaml:"name"`
	Level   string            `yaml:"level"`
	Label   string            `yaml:"label,omitempty"`
	Missing []string          `yaml:"missing,omitempty"`
	Labels  map[string]string `yaml:"labels,omitempty"`
}

// CallStep is one engine call.
type CallStep struct {
	// Token is the fixed call token. Required: golden comparison needs
	// deterministic metadata.
	Token string `yaml:"token"`

	Agg            string         `yaml:"agg"`
	AggVar         string         `yaml:"agg_var,omitempty"`
	By             []string       `yaml:"by,omitempty"`
	Subset         []SubsetClause `yaml:"subset,omitempty"`
	Label          bool           `yaml:"label,omitempty"`
	Prop           bool           `yaml:"prop,omitempty"`
	PropBy         []string       `yaml:"prop_by,omitempty"`
	ExcludeMissing bool           `yaml:"exclude_missing,omitempty"`

	// Expect optionally validates the call's outcome beyond the golden
	// comparison.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// SubsetClause is one conjunct of the call's row-selection predicate.
// Comparison ops take value; "in" takes codes.
type SubsetClause struct {
	Var   string   `yaml:"var"`
	Op    string   `yaml:"op"`
	Value float64  `yaml:"value,omitempty"`
	Codes []string `yaml:"codes,omitempty"`
}

// ExpectClause validates a call's outcome. Error expects the call to
// fail with a message containing the given substring; Rows expects the
// result to have exactly that many rows.
type ExpectClause struct {
	Rows  *int   `yaml:"rows,omitempty"`
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so a typo fails the scenario instead of silently
// weakening it.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks the fields the harness itself needs. Dataset
// and request semantics are validated again by the packages that own
// them when the scenario runs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Dataset.Levels) == 0 {
		return fmt.Errorf("dataset.levels is required and must be non-empty")
	}
	if len(s.Calls) == 0 {
		return fmt.Errorf("calls list is required and must be non-empty")
	}
	for i, call := range s.Calls {
		if call.Token == "" {
			return fmt.Errorf("calls[%d]: token is required", i)
		}
		if call.Agg == "" {
			return fmt.Errorf("calls[%d]: agg is required", i)
		}
		for j, clause := range call.Subset {
			if clause.Var == "" {
				return fmt.Errorf("calls[%d].subset[%d]: var is required", i, j)
			}
			if _, err := clausePredicate(clause); err != nil {
				return fmt.Errorf("calls[%d].subset[%d]: %w", i, j, err)
			}
		}
		if call.Expect != nil && call.Expect.Rows != nil && *call.Expect.Rows < 0 {
			return fmt.Errorf("calls[%d].expect: rows must be non-negative", i)
		}
	}
	return nil
}

// BuildDataset materializes the inline dataset.
func (d DatasetSpec) BuildDataset() (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		Tables:         make(map[dataset.Level]*dataset.EntityTable),
		Weights:        make(map[dataset.Level]*dataset.WeightSet),
		Replicates:     d.Replicates,
		JackknifeScale: d.JackknifeScale,
		AnnualDays:     d.AnnualDays,
	}

	for _, spec := range d.Levels {
		level, err := dataset.ParseLevel(spec.Level)
		if err != nil {
			return nil, err
		}
		table, err := dataset.NewEntityTable(level, spec.Keys, spec.Columns, spec.Rows)
		if err != nil {
			return nil, err
		}
		ds.Tables[level] = table
	}

	for _, spec := range d.Weights {
		level, err := dataset.ParseLevel(spec.Level)
		if err != nil {
			return nil, err
		}
		keys := make([][]string, len(spec.Rows))
		primary := make([]float64, len(spec.Rows))
		replicates := make([][]float64, len(spec.Rows))
		for i, row := range spec.Rows {
			keys[i] = row.Key
			primary[i] = row.Weight
			replicates[i] = row.Replicates
		}
		ws, err := dataset.NewWeightSet(level, spec.Keys, keys, primary, replicates)
		if err != nil {
			return nil, err
		}
		ds.Weights[level] = ws
	}

	vars := make([]dataset.Variable, len(d.Catalog))
	for i, spec := range d.Catalog {
		level, err := dataset.ParseLevel(spec.Level)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", spec.Name, err)
		}
		vars[i] = dataset.Variable{
			Name:         spec.Name,
			Level:        level,
			Label:        spec.Label,
			MissingCodes: spec.Missing,
			ValueLabels:  spec.Labels,
		}
	}
	ds.Catalog = dataset.NewCatalog(vars...)

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// BuildRequest converts a call step into an engine request.
func (c CallStep) BuildRequest() (request.Request, error) {
	req := request.Request{
		Agg:            request.AggType(c.Agg),
		AggVar:         c.AggVar,
		By:             c.By,
		Label:          c.Label,
		Prop:           c.Prop,
		PropBy:         c.PropBy,
		ExcludeMissing: c.ExcludeMissing,
	}
	if len(c.Subset) > 0 {
		preds := make([]expr.Predicate, len(c.Subset))
		for i, clause := range c.Subset {
			p, err := clausePredicate(clause)
			if err != nil {
				return request.Request{}, err
			}
			preds[i] = p
		}
		if len(preds) == 1 {
			req.Subset = preds[0]
		} else {
			req.Subset = expr.AllOf(preds...)
		}
	}
	return req, nil
}

// clausePredicate maps one YAML clause to a predicate node.
func clausePredicate(c SubsetClause) (expr.Predicate, error) {
	switch c.Op {
	case "gt":
		return expr.Gt(c.Var, c.Value), nil
	case "ge":
		return expr.Ge(c.Var, c.Value), nil
	case "lt":
		return expr.Lt(c.Var, c.Value), nil
	case "le":
		return expr.Le(c.Var, c.Value), nil
	case "eq":
		return expr.Eq(c.Var, c.Value), nil
	case "ne":
		return expr.Ne(c.Var, c.Value), nil
	case "in":
		if len(c.Codes) == 0 {
			return nil, fmt.Errorf("op %q requires codes", c.Op)
		}
		return expr.OneOf(c.Var, c.Codes...), nil
	default:
		return nil, fmt.Errorf("unknown subset op %q", c.Op)
	}
}
