package expr

// Predicate is the sealed interface for row-selection expressions.
// Only the node types in this package implement it.
type Predicate interface {
	pred() // sealed
}

// Op is a numeric comparison operator.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Valid reports whether the operator is one of the six comparisons.
func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Compare tests a variable's cell numerically against a constant.
// A cell that does not parse as a number never satisfies a Compare.
type Compare struct {
	Var   string
	Op    Op
	Value float64
}

func (Compare) pred() {}

// In tests a variable's cell for exact membership in a code set.
type In struct {
	Var   string
	Codes []string
}

func (In) pred() {}

// And is the conjunction of its operands; empty And is vacuously true.
type And struct {
	Preds []Predicate
}

func (And) pred() {}

// Or is the disjunction of its operands; empty Or is false.
type Or struct {
	Preds []Predicate
}

func (Or) pred() {}

// Not negates its operand.
type Not struct {
	Pred Predicate
}

func (Not) pred() {}

// Present tests that a variable's cell is non-empty.
type Present struct {
	Var string
}

func (Present) pred() {}

// ValidNumber tests that a variable's cell parses as a finite number.
type ValidNumber struct {
	Var string
}

func (ValidNumber) pred() {}

// Constructor helpers keep request-building code readable.

// Gt builds Var > Value.
func Gt(name string, v float64) Compare { return Compare{Var: name, Op: OpGt, Value: v} }

// Ge builds Var >= Value.
func Ge(name string, v float64) Compare { return Compare{Var: name, Op: OpGe, Value: v} }

// Lt builds Var < Value.
func Lt(name string, v float64) Compare { return Compare{Var: name, Op: OpLt, Value: v} }

// Le builds Var <= Value.
func Le(name string, v float64) Compare { return Compare{Var: name, Op: OpLe, Value: v} }

// Eq builds Var == Value.
func Eq(name string, v float64) Compare { return Compare{Var: name, Op: OpEq, Value: v} }

// Ne builds Var != Value.
func Ne(name string, v float64) Compare { return Compare{Var: name, Op: OpNe, Value: v} }

// OneOf builds membership of Var in codes.
func OneOf(name string, codes ...string) In { return In{Var: name, Codes: codes} }

// AllOf conjoins predicates.
func AllOf(preds ...Predicate) And { return And{Preds: preds} }

// AnyOf disjoins predicates.
func AnyOf(preds ...Predicate) Or { return Or{Preds: preds} }
