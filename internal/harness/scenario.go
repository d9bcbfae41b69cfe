package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/store"
)

// Scenario defines a reconciliation test scenario: a catalog and rewrite
// table to start from, batches of rows to reconcile, and assertions on the
// resulting rewrite table.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Kinds is an optional directory of CUE kind definitions. Relative
	// paths are resolved against the base path given to the loader.
	// Without it the built-in product convention is used.
	Kinds string `yaml:"kinds,omitempty"`

	// RunIDPrefix seeds deterministic run ids ("<prefix>-0001", ...).
	// Defaults to "run".
	RunIDPrefix string `yaml:"run_id_prefix,omitempty"`

	// Given is the starting state, in seed fixture format.
	Given store.Fixture `yaml:"given"`

	// Steps are executed in order, each as one batch run.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	// Supported types: final_state, row_count, resolves_to
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one batch of rows.
type Step struct {
	Rows   []engine.Row `yaml:"rows"`
	DryRun bool         `yaml:"dry_run,omitempty"`

	// Expect checks the batch totals. If nil, no validation is performed.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect specifies expected batch totals. Nil counters are not checked.
type StepExpect struct {
	Creates *int `yaml:"creates,omitempty"`
	Updates *int `yaml:"updates,omitempty"`
	Failed  *int `yaml:"failed,omitempty"`

	// Error is a substring expected in some row's error.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": Query one row of a table and verify expected values
	// - "row_count": Count rows of a table matching Where
	// - "resolves_to": Follow redirects from RequestPath to Target
	Type string `yaml:"type"`

	// Table is the table name (used by final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state, row_count).
	// All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of rows (used by row_count).
	Count int `yaml:"count,omitempty"`

	// RequestPath and StoreID select the start of a redirect chain
	// (used by resolves_to).
	RequestPath string `yaml:"request_path,omitempty"`
	StoreID     int64  `yaml:"store_id,omitempty"`

	// Target is the expected final target (used by resolves_to).
	Target string `yaml:"target,omitempty"`

	// Hops, when non-zero, is the expected number of records traversed
	// (used by resolves_to).
	Hops int `yaml:"hops,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertRowCount   = "row_count"
	AssertResolvesTo = "resolves_to"
)

// LoadScenario reads and parses a scenario YAML file. A relative kinds
// directory is resolved against the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the kinds directory relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Kinds != "" && !filepath.IsAbs(scenario.Kinds) && basePath != "" {
		scenario.Kinds = filepath.Join(basePath, scenario.Kinds)
	}

	applyDefaults(&scenario)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// applyDefaults fills in the product entity type for rows that omit it.
func applyDefaults(s *Scenario) {
	for i := range s.Steps {
		for j := range s.Steps[i].Rows {
			if s.Steps[i].Rows[j].EntityType == "" {
				s.Steps[i].Rows[j].EntityType = "product"
			}
		}
	}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Kinds != "" {
		if info, err := os.Stat(s.Kinds); err != nil || !info.IsDir() {
			return fmt.Errorf("kinds directory not found: %s", s.Kinds)
		}
	}

	for i, step := range s.Steps {
		if len(step.Rows) == 0 {
			return fmt.Errorf("steps[%d]: rows list is required and must be non-empty", i)
		}
		for j, row := range step.Rows {
			if row.EntityID <= 0 {
				return fmt.Errorf("steps[%d].rows[%d]: entity_id must be positive", i, j)
			}
		}
		if e := step.Expect; e != nil {
			for name, v := range map[string]*int{"creates": e.Creates, "updates": e.Updates, "failed": e.Failed} {
				if v != nil && *v < 0 {
					return fmt.Errorf("steps[%d].expect: %s must be non-negative", i, name)
				}
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertResolvesTo:
		if a.RequestPath == "" {
			return fmt.Errorf("assertions[%d]: request_path is required for resolves_to", index)
		}
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for resolves_to", index)
		}
		if a.Hops < 0 {
			return fmt.Errorf("assertions[%d]: hops must be non-negative for resolves_to", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
