// Package harness runs reconciliation scenarios against the engine.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	kinds: kinds/            # optional CUE kinds directory
//	given:                   # seed fixture, see store.Fixture
//	  categories:
//	    - {id: 13, parent_id: 11, name: Tops, path: men/tops-men}
//	  roots:
//	    - {store_id: 1, category_id: 2}
//	  assignments:
//	    - {entity_id: 61413, categories: [13]}
//	  rewrites: []
//	steps:
//	  - rows:
//	      - {entity_id: 61413, url_key: bruno-compete-hoodie, store_id: 1}
//	    expect: {creates: 2, updates: 0}
//	assertions:
//	  - type: final_state
//	    table: url_rewrite
//	    where: {request_path: bruno-compete-hoodie.html, store_id: 1}
//	    expect: {target_path: catalog/product/view/id/61413}
//	  - type: row_count
//	    table: url_rewrite
//	    where: {entity_id: 61413}
//	    count: 2
//	  - type: resolves_to
//	    request_path: bruno-compete-hoodie-old.html
//	    store_id: 1
//	    target: catalog/product/view/id/61413
//
// # Assertion Types
//
//   - final_state: Queries exactly one row of a table and verifies expected values
//   - row_count: Counts rows of a table matching a where clause
//   - resolves_to: Follows redirects from a request path to its final target
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite database with a
// single batch worker and sequential run ids ("run-0001", ...), so the
// step snapshot is byte-identical across runs and can be compared with a
// golden file (see Snapshot and GoldenPath).
package harness
