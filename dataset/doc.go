// Package dataset defines the read-only data model consumed by the
// estimation engine: the fixed household/person/vehicle/trip hierarchy,
// per-level entity tables, per-level replicate weight sets, and the
// variable catalog (owning level, display label, missing-value codes,
// code-to-label maps).
//
// A Dataset and everything it contains is immutable once constructed.
// The engine never writes through it, so one Dataset may be shared by
// any number of concurrent aggregation calls.
package dataset
