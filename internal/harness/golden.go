package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/amenk/import-product/internal/ir"
)

// GoldenDir is where golden snapshots live, relative to the test package.
const GoldenDir = "testdata/golden"

// Snapshot renders the step traces of a result as canonical JSON. Equal
// results always produce byte-identical snapshots.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	steps := make(ir.IRArray, 0, len(result.Steps))
	for _, step := range result.Steps {
		rows := make(ir.IRArray, 0, len(step.Rows))
		for _, row := range step.Rows {
			obj := ir.IRObject{
				"entity":  ir.IRString(row.Entity),
				"creates": stringArray(row.Creates),
				"updates": stringArray(row.Updates),
			}
			if len(row.Conflicts) > 0 {
				obj["conflicts"] = stringArray(row.Conflicts)
			}
			if row.Error != "" {
				obj["error"] = ir.IRString(row.Error)
			}
			if row.Skipped {
				obj["skipped"] = ir.IRBool(true)
			}
			rows = append(rows, obj)
		}
		steps = append(steps, ir.IRObject{
			"run_id":  ir.IRString(step.RunID),
			"dry_run": ir.IRBool(step.DryRun),
			"creates": ir.IRInt(step.Creates),
			"updates": ir.IRInt(step.Updates),
			"failed":  ir.IRInt(step.Failed),
			"skipped": ir.IRInt(step.Skipped),
			"rows":    rows,
		})
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario_name": ir.IRString(scenarioName),
		"steps":         steps,
	})
}

func stringArray(ss []string) ir.IRArray {
	arr := make(ir.IRArray, 0, len(ss))
	for _, s := range ss {
		arr = append(arr, ir.IRString(s))
	}
	return arr
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
