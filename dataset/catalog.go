package dataset

import "sort"

// Variable describes one survey variable: its name, the entity level it
// is defined at, a display label, the codes that mean "missing/not
// ascertained" for it, and an optional code-to-label map for display.
//
// Variables are immutable once handed to a Catalog.
type Variable struct {
	Name         string
	Level        Level
	Label        string
	MissingCodes []string
	ValueLabels  map[string]string
}

// Catalog maps variable names to their descriptors. It is built once
// per dataset (typically by the store loader) and is read-only afterwards.
type Catalog struct {
	vars map[string]Variable
}

// NewCatalog builds a Catalog from descriptors. A later descriptor with
// a duplicate name replaces the earlier one.
func NewCatalog(vars ...Variable) *Catalog {
	c := &Catalog{vars: make(map[string]Variable, len(vars))}
	for _, v := range vars {
		c.vars[v.Name] = v
	}
	return c
}

// Lookup returns the descriptor for name.
func (c *Catalog) Lookup(name string) (Variable, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Has reports whether name is catalogued at all.
func (c *Catalog) Has(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// Label returns the display label for name, falling back to the raw
// name when the variable is unknown or has no label.
func (c *Catalog) Label(name string) string {
	if v, ok := c.vars[name]; ok && v.Label != "" {
		return v.Label
	}
	return name
}

// MissingCodes returns the sentinel codes for name, nil when unknown.
func (c *Catalog) MissingCodes(name string) []string {
	if v, ok := c.vars[name]; ok {
		return v.MissingCodes
	}
	return nil
}

// IsMissing reports whether cell is a missing value for the named
// variable. An empty cell is always missing; otherwise the cell is
// missing when it matches one of the variable's sentinel codes.
func (c *Catalog) IsMissing(name, cell string) bool {
	if cell == "" {
		return true
	}
	for _, code := range c.MissingCodes(name) {
		if cell == code {
			return true
		}
	}
	return false
}

// ValueLabel maps a coded value of name to its display label, passing
// the raw code through when no mapping exists.
func (c *Catalog) ValueLabel(name, code string) string {
	if v, ok := c.vars[name]; ok {
		if label, ok := v.ValueLabels[code]; ok {
			return label
		}
	}
	return code
}

// Names returns all catalogued variable names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.vars))
	for name := range c.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
