// Package harness runs declarative conformance scenarios against the
// aggregation engine.
//
// A scenario is a YAML file that declares a small inline dataset and a
// sequence of engine calls, each with a fixed call token so repeated
// runs produce identical output. Results are serialized to canonical
// JSON and compared against golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	dataset:
//	  replicates: 2
//	  jackknife_scale: 1.0
//	  annual_days: 365
//	  levels:
//	    - level: household
//	      keys: [HOUSEID]
//	      columns: [HOUSEID, HHSTATE]
//	      rows:
//	        - ["H1", "37"]
//	  weights:
//	    - level: household
//	      keys: [HOUSEID]
//	      rows:
//	        - key: ["H1"]
//	          weight: 100
//	          replicates: [103, 96]
//	  catalog:
//	    - name: HHSTATE
//	      level: household
//	      label: "Home state"
//	calls:
//	  - token: call-01
//	    agg: household_count
//	    by: [HHSTATE]
//	    expect:
//	      rows: 2
//
// # Deterministic Output
//
// Every call must declare a token, which replaces the UUIDv7 generator
// for that call. Result rows are already ordered by the engine, and the
// canonical serializer sorts object keys and normalizes strings, so a
// golden file pins the complete observable output of a scenario.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
