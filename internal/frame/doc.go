// Package frame implements the in-memory row set the engine threads
// between the entity joiner and the aggregators: a small columnar table
// of string cells with natural full-outer joins, projection, full-row
// deduplication, weight attachment, and stable group-by.
//
// Tables are value-semantics: every operation returns a new Table and
// never mutates its receiver, so intermediate results cannot alias
// across pipeline stages. All cells are raw survey codes; numeric
// interpretation happens at the caller via Float.
package frame
