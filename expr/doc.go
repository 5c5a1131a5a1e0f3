// Package expr defines the typed row-selection predicate language used
// by aggregation requests: numeric comparisons, code-set membership,
// and logical composition, referencing survey variables by unqualified
// name.
//
// Predicates are plain values. Compile validates every variable
// reference against the row schema up front and returns an Evaluator
// closure; evaluation itself can no longer fail, it only selects rows.
package expr
