// Package harness runs scripted ledger sessions against the real engine
// and checks their receipts, trace and final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	params: params.cue          # optional, relative to the scenario file
//	start: 1700000000           # optional Unix time of the first transition
//	setup:
//	  - kind: initialize
//	    caller: authority
//	flow:
//	  - kind: createActivity
//	    caller: alice
//	    args: { category: elderly, description: "...", estimated_hours: 4 }
//	    save: { act: activity }
//	  - kind: verifyActivity
//	    caller: bob
//	    args: { activity: $act, verified: true }
//	    advance: 60
//	    expect:
//	      outcome: ok
//	      result: { verification_count: 1 }
//	assertions:
//	  - type: trace_count
//	    kind: verifyActivity
//	    count: 1
//	  - type: record
//	    ref: $act
//	    expect: { status: pending }
//
// # Assertion Types
//
//   - trace_contains: a transition of kind (and caller, outcome, code) exists
//   - trace_order: the listed kinds appear in order, not necessarily adjacent
//   - trace_count: exactly count transitions of kind (and outcome)
//   - record: the stored record at ref matches expect
//   - profile: the profile of owner matches expect
//   - dao: the DAO singleton matches expect
//   - list_count: exactly count records of record_kind (and status)
//   - replay: re-executing the journal on a fresh store reproduces it
//
// # Deterministic Testing
//
// Every scenario runs on a fresh in-memory store with a scripted clock and
// sequential request ids, so its trace is identical across runs and can be
// compared against golden files.
package harness
