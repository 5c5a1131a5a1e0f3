package request

import (
	"errors"
	"fmt"

	"github.com/svyest/svyest/dataset"
)

// ValidationCode categorizes request validation failures.
type ValidationCode string

const (
	// ErrCodeUnknownAggType indicates an unrecognized aggregate type.
	ErrCodeUnknownAggType ValidationCode = "UNKNOWN_AGG_TYPE"

	// ErrCodeMissingAggVar indicates a numeric aggregate without AggVar.
	ErrCodeMissingAggVar ValidationCode = "MISSING_AGG_VAR"

	// ErrCodeUnknownVariable indicates a variable absent from the
	// catalog entirely. (Present-but-wrong-level is recoverable and
	// handled by the engine's resolver, not here.)
	ErrCodeUnknownVariable ValidationCode = "UNKNOWN_VARIABLE"

	// ErrCodePropByNotInBy indicates a PropBy variable outside By.
	ErrCodePropByNotInBy ValidationCode = "PROP_BY_NOT_IN_BY"
)

// ValidationError reports a structurally invalid request. It names the
// exact offending value so callers can fix their input.
type ValidationError struct {
	Code  ValidationCode
	Field string
	Value string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Code {
	case ErrCodeUnknownAggType:
		return fmt.Sprintf("%s: unknown aggregate type %q", e.Code, e.Value)
	case ErrCodeMissingAggVar:
		return fmt.Sprintf("%s: aggregate type %q requires agg_var", e.Code, e.Value)
	case ErrCodeUnknownVariable:
		return fmt.Sprintf("%s: %s variable %q not in catalog", e.Code, e.Field, e.Value)
	case ErrCodePropByNotInBy:
		return fmt.Sprintf("%s: prop_by variable %q not in by", e.Code, e.Value)
	}
	return fmt.Sprintf("%s: %s=%q", e.Code, e.Field, e.Value)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the structural validity of a request against the
// catalog. It fails fast on the first problem; recoverable level
// mismatches are deliberately not checked here.
func (r Request) Validate(cat *dataset.Catalog) error {
	if !r.Agg.Valid() {
		return &ValidationError{Code: ErrCodeUnknownAggType, Field: "agg", Value: string(r.Agg)}
	}
	if r.Agg.IsNumeric() {
		if r.AggVar == "" {
			return &ValidationError{Code: ErrCodeMissingAggVar, Field: "agg_var", Value: string(r.Agg)}
		}
		if !cat.Has(r.AggVar) {
			return &ValidationError{Code: ErrCodeUnknownVariable, Field: "agg_var", Value: r.AggVar}
		}
	}
	for _, name := range r.By {
		if !cat.Has(name) {
			return &ValidationError{Code: ErrCodeUnknownVariable, Field: "by", Value: name}
		}
	}
	bylist := make(map[string]struct{}, len(r.By))
	for _, name := range r.By {
		bylist[name] = struct{}{}
	}
	for _, name := range r.PropBy {
		if _, ok := bylist[name]; !ok {
			return &ValidationError{Code: ErrCodePropByNotInBy, Field: "prop_by", Value: name}
		}
	}
	return nil
}
