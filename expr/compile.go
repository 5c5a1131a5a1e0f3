package expr

import (
	"fmt"
	"math"
	"strconv"
)

// ExprErrorCode categorizes predicate compilation failures.
type ExprErrorCode string

const (
	// ErrCodeUnknownVariable indicates a reference to a variable that
	// is not part of the row schema.
	ErrCodeUnknownVariable ExprErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeInvalidOperator indicates a Compare with an operator
	// outside the six comparisons.
	ErrCodeInvalidOperator ExprErrorCode = "INVALID_OPERATOR"

	// ErrCodeEmptyMembership indicates an In node with no codes.
	ErrCodeEmptyMembership ExprErrorCode = "EMPTY_MEMBERSHIP"

	// ErrCodeNilPredicate indicates a nil node inside the expression.
	ErrCodeNilPredicate ExprErrorCode = "NIL_PREDICATE"
)

// ExpressionError reports an invalid subset predicate. It always names
// the offending variable or construct.
type ExpressionError struct {
	Code     ExprErrorCode
	Variable string
	Message  string
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s (variable %q)", e.Code, e.Message, e.Variable)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValueFunc resolves an unqualified variable name to the current row's
// cell. The boolean mirrors map access: false means the column is not
// part of the row at all.
type ValueFunc func(column string) (string, bool)

// Evaluator is a compiled predicate. It never fails; rows whose cells
// cannot satisfy the expression simply evaluate to false.
type Evaluator func(get ValueFunc) bool

// Known reports whether a variable name may be referenced.
type Known func(name string) bool

// Compile validates p against the row schema and returns an Evaluator.
// Every variable reference is checked up front so evaluation over
// millions of rows carries no error path.
func Compile(p Predicate, known Known) (Evaluator, error) {
	if p == nil {
		return nil, &ExpressionError{Code: ErrCodeNilPredicate, Message: "nil predicate"}
	}
	return compile(p, known)
}

func compile(p Predicate, known Known) (Evaluator, error) {
	switch node := p.(type) {
	case Compare:
		return compileCompare(node, known)
	case *Compare:
		return compileCompare(*node, known)
	case In:
		return compileIn(node, known)
	case *In:
		return compileIn(*node, known)
	case And:
		return compileJunction(node.Preds, known, true)
	case *And:
		return compileJunction(node.Preds, known, true)
	case Or:
		return compileJunction(node.Preds, known, false)
	case *Or:
		return compileJunction(node.Preds, known, false)
	case Not:
		return compileNot(node, known)
	case *Not:
		return compileNot(*node, known)
	case Present:
		return compilePresent(node.Var, known)
	case *Present:
		return compilePresent(node.Var, known)
	case ValidNumber:
		return compileValidNumber(node.Var, known)
	case *ValidNumber:
		return compileValidNumber(node.Var, known)
	case nil:
		return nil, &ExpressionError{Code: ErrCodeNilPredicate, Message: "nil predicate node"}
	default:
		return nil, &ExpressionError{Code: ErrCodeNilPredicate, Message: fmt.Sprintf("unsupported predicate type %T", p)}
	}
}

func checkVar(name string, known Known) error {
	if name == "" {
		return &ExpressionError{Code: ErrCodeUnknownVariable, Message: "empty variable name"}
	}
	if !known(name) {
		return &ExpressionError{
			Code:     ErrCodeUnknownVariable,
			Variable: name,
			Message:  "variable not in row schema",
		}
	}
	return nil
}

func compileCompare(c Compare, known Known) (Evaluator, error) {
	if err := checkVar(c.Var, known); err != nil {
		return nil, err
	}
	if !c.Op.Valid() {
		return nil, &ExpressionError{
			Code:     ErrCodeInvalidOperator,
			Variable: c.Var,
			Message:  fmt.Sprintf("invalid comparison operator %q", string(c.Op)),
		}
	}
	op, threshold := c.Op, c.Value
	return func(get ValueFunc) bool {
		cell, ok := get(c.Var)
		if !ok {
			return false
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) {
			return false
		}
		switch op {
		case OpEq:
			return v == threshold
		case OpNe:
			return v != threshold
		case OpLt:
			return v < threshold
		case OpLe:
			return v <= threshold
		case OpGt:
			return v > threshold
		default:
			return v >= threshold
		}
	}, nil
}

func compileIn(in In, known Known) (Evaluator, error) {
	if err := checkVar(in.Var, known); err != nil {
		return nil, err
	}
	if len(in.Codes) == 0 {
		return nil, &ExpressionError{
			Code:     ErrCodeEmptyMembership,
			Variable: in.Var,
			Message:  "membership test with no codes",
		}
	}
	set := make(map[string]struct{}, len(in.Codes))
	for _, code := range in.Codes {
		set[code] = struct{}{}
	}
	return func(get ValueFunc) bool {
		cell, ok := get(in.Var)
		if !ok {
			return false
		}
		_, hit := set[cell]
		return hit
	}, nil
}

func compileJunction(preds []Predicate, known Known, conjunction bool) (Evaluator, error) {
	evals := make([]Evaluator, len(preds))
	for i, p := range preds {
		ev, err := compile(p, known)
		if err != nil {
			return nil, err
		}
		evals[i] = ev
	}
	if conjunction {
		return func(get ValueFunc) bool {
			for _, ev := range evals {
				if !ev(get) {
					return false
				}
			}
			return true
		}, nil
	}
	return func(get ValueFunc) bool {
		for _, ev := range evals {
			if ev(get) {
				return true
			}
		}
		return false
	}, nil
}

func compileNot(n Not, known Known) (Evaluator, error) {
	inner, err := compile(n.Pred, known)
	if err != nil {
		return nil, err
	}
	return func(get ValueFunc) bool { return !inner(get) }, nil
}

func compilePresent(name string, known Known) (Evaluator, error) {
	if err := checkVar(name, known); err != nil {
		return nil, err
	}
	return func(get ValueFunc) bool {
		cell, ok := get(name)
		return ok && cell != ""
	}, nil
}

func compileValidNumber(name string, known Known) (Evaluator, error) {
	if err := checkVar(name, known); err != nil {
		return nil, err
	}
	return func(get ValueFunc) bool {
		cell, ok := get(name)
		if !ok || cell == "" {
			return false
		}
		v, err := strconv.ParseFloat(cell, 64)
		return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
	}, nil
}
