// Package engine computes weighted population estimates with jackknife
// standard errors from a multi-level survey dataset.
//
// One call to Summarize runs the whole pipeline synchronously: resolve
// the entity levels a request touches, join and filter the level tables
// without double counting, compute the requested statistic per group
// under the primary weight and under every replicate weight, convert
// the replicate spread into a standard error, and assemble a labeled
// summary table.
//
// The engine holds no state between calls and never mutates its
// inputs, so one Dataset may serve any number of concurrent Summarize
// calls.
package engine
