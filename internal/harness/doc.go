// Package harness runs narration conformance scenarios.
//
// A scenario names a payload, optional builder edits applied through an
// Editor, and the narration, validity, issue codes and migration rules
// the pipeline must produce. Results are also compared against golden
// snapshots in testdata/golden.
//
// # Scenario Format
//
//	name: older_than_18
//	description: "A steady-state payload narrates with catalog labels"
//	language: de            # optional; default en
//	without_catalog: false  # optional; narrate from slugs and aliases
//	payload: |
//	  {"graph_slug": "person", ...}
//	edits:                  # optional, applied in order
//	  - op: add_clause
//	  - op: set_clause
//	    index: 1
//	    clause: {type: LITERAL, quantifier: ANY, subject: [[person, name]], operator: LIKE, operands: [{type: LITERAL, value: Ann}]}
//	  - op: toggle_logic
//	    group: [0]          # child index path; default is the root
//	expect:
//	  narration: "Find all Person instances where ..."
//	  valid: true
//	  issues: [Q006]        # distinct issue codes, sorted
//	  migrations: [colon-path]
//
// # Catalog
//
// Scenarios narrate against testutil.Catalog unless without_catalog is
// set, so golden files stay stable across machines.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/older_than_18.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
