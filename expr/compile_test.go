package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowOf(cells map[string]string) ValueFunc {
	return func(column string) (string, bool) {
		v, ok := cells[column]
		return v, ok
	}
}

func knownOf(names ...string) Known {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

func TestCompile_Compare(t *testing.T) {
	ev, err := Compile(Gt("VEHAGE", 0), knownOf("VEHAGE"))
	require.NoError(t, err)

	assert.True(t, ev(rowOf(map[string]string{"VEHAGE": "5"})))
	assert.False(t, ev(rowOf(map[string]string{"VEHAGE": "0"})))
	assert.False(t, ev(rowOf(map[string]string{"VEHAGE": "-7"})))
	assert.False(t, ev(rowOf(map[string]string{"VEHAGE": "old"})), "non-numeric cell never satisfies a comparison")
	assert.False(t, ev(rowOf(map[string]string{})), "absent column never satisfies a comparison")
}

func TestCompile_CompareOperators(t *testing.T) {
	cases := []struct {
		op   Op
		cell string
		want bool
	}{
		{OpEq, "10", true},
		{OpEq, "11", false},
		{OpNe, "11", true},
		{OpLt, "9", true},
		{OpLt, "10", false},
		{OpLe, "10", true},
		{OpGt, "11", true},
		{OpGe, "10", true},
	}
	for _, tc := range cases {
		ev, err := Compile(Compare{Var: "X", Op: tc.op, Value: 10}, knownOf("X"))
		require.NoError(t, err)
		assert.Equal(t, tc.want, ev(rowOf(map[string]string{"X": tc.cell})), "X %s 10 with X=%s", tc.op, tc.cell)
	}
}

func TestCompile_In(t *testing.T) {
	ev, err := Compile(OneOf("DRIVER", "01", "02"), knownOf("DRIVER"))
	require.NoError(t, err)

	assert.True(t, ev(rowOf(map[string]string{"DRIVER": "01"})))
	assert.False(t, ev(rowOf(map[string]string{"DRIVER": "1"})), "membership is exact code match")
	assert.False(t, ev(rowOf(map[string]string{"DRIVER": ""})))
}

func TestCompile_Logic(t *testing.T) {
	p := AllOf(
		Gt("ANNMILES", 500),
		Lt("ANNMILES", 200000),
		Not{Pred: OneOf("VEHTYPE", "97")},
	)
	ev, err := Compile(p, knownOf("ANNMILES", "VEHTYPE"))
	require.NoError(t, err)

	assert.True(t, ev(rowOf(map[string]string{"ANNMILES": "12000", "VEHTYPE": "01"})))
	assert.False(t, ev(rowOf(map[string]string{"ANNMILES": "12000", "VEHTYPE": "97"})))
	assert.False(t, ev(rowOf(map[string]string{"ANNMILES": "300", "VEHTYPE": "01"})))
}

func TestCompile_Or(t *testing.T) {
	ev, err := Compile(AnyOf(Eq("A", 1), Eq("B", 1)), knownOf("A", "B"))
	require.NoError(t, err)
	assert.True(t, ev(rowOf(map[string]string{"A": "0", "B": "1"})))
	assert.False(t, ev(rowOf(map[string]string{"A": "0", "B": "0"})))

	empty, err := Compile(Or{}, knownOf())
	require.NoError(t, err)
	assert.False(t, empty(rowOf(nil)), "empty disjunction is false")
}

func TestCompile_EmptyAndIsSelectAll(t *testing.T) {
	ev, err := Compile(And{}, knownOf())
	require.NoError(t, err)
	assert.True(t, ev(rowOf(nil)))
}

func TestCompile_PresentAndValidNumber(t *testing.T) {
	present, err := Compile(Present{Var: "X"}, knownOf("X"))
	require.NoError(t, err)
	assert.True(t, present(rowOf(map[string]string{"X": "0"})))
	assert.False(t, present(rowOf(map[string]string{"X": ""})))

	num, err := Compile(ValidNumber{Var: "X"}, knownOf("X"))
	require.NoError(t, err)
	assert.True(t, num(rowOf(map[string]string{"X": "-3.5"})))
	assert.False(t, num(rowOf(map[string]string{"X": "n/a"})))
	assert.False(t, num(rowOf(map[string]string{"X": ""})))
}

func TestCompile_UnknownVariable(t *testing.T) {
	_, err := Compile(Gt("NOPE", 1), knownOf("VEHAGE"))
	require.Error(t, err)

	var ee *ExpressionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeUnknownVariable, ee.Code)
	assert.Equal(t, "NOPE", ee.Variable)
	assert.Contains(t, err.Error(), "NOPE", "error must name the offending variable")
}

func TestCompile_InvalidOperator(t *testing.T) {
	_, err := Compile(Compare{Var: "X", Op: Op("~"), Value: 1}, knownOf("X"))
	var ee *ExpressionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeInvalidOperator, ee.Code)
}

func TestCompile_EmptyMembership(t *testing.T) {
	_, err := Compile(In{Var: "X"}, knownOf("X"))
	var ee *ExpressionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeEmptyMembership, ee.Code)
}

func TestCompile_NilPredicate(t *testing.T) {
	_, err := Compile(nil, knownOf())
	var ee *ExpressionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeNilPredicate, ee.Code)

	_, err = Compile(And{Preds: []Predicate{nil}}, knownOf())
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeNilPredicate, ee.Code)
}
