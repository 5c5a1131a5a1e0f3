// Package store loads a dataset.Dataset from a SQLite file.
//
// The file layout is one table per entity level (household, person,
// vehicle, trip) whose column names are the variable names, one weight
// table per weighted level (<level>_weights with the key columns, a
// weight column, and rep_1..rep_K), a level_keys table declaring each
// level's key-column chain, a codebook table (plus optional
// value_labels) feeding the variable catalog, and a single-row meta
// table carrying the replicate count, jackknife scale, and
// annualization constant.
//
// The store is strictly a read-only source: it materializes everything
// into memory and the engine never writes back. Raw survey-file
// parsing and download are out of scope; producing the SQLite file is
// the data-preparation pipeline's job.
package store
