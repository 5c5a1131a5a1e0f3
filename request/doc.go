// Package request defines the aggregation request accepted by the
// engine and its structural validation against the variable catalog.
//
// Validation distinguishes fatal problems (unknown aggregate type,
// numeric aggregate without a variable, a grouping variable absent from
// the catalog entirely) from recoverable ones. The recoverable cases
// (grouping variables at the wrong level, proportion flags on
// non-frequency aggregates) are the engine's job and surface as
// warnings there, not here.
package request
