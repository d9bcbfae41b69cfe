package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	result := NewResult()
	result.Steps = []StepTrace{{
		RunID:   "run-0001",
		Creates: 1,
		Failed:  1,
		Rows: []RowTrace{
			{Entity: "product:5@1", Creates: []string{"tee.html -> catalog/product/view/id/5 [none]"}, Updates: []string{}},
			{Entity: "product:6@1", Creates: []string{}, Updates: []string{}, Error: "INVALID_INPUT: url key is empty"},
		},
	}}

	data, err := Snapshot("mini", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"mini","steps":[{"creates":1,"dry_run":false,"failed":1,"rows":[`+
			`{"creates":["tee.html -> catalog/product/view/id/5 [none]"],"entity":"product:5@1","updates":[]},`+
			`{"creates":[],"entity":"product:6@1","error":"INVALID_INPUT: url key is empty","updates":[]}`+
			`],"run_id":"run-0001","skipped":0,"updates":0}]}`,
		string(data))
}

func TestSnapshot_MatchesCommittedGolden(t *testing.T) {
	for _, name := range []string{"new_product", "slug_change", "manual_conflict"} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(scenariosDir, name+".yaml")
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			result, err := Run(scenario)
			require.NoError(t, err)

			got, err := Snapshot(scenario.Name, result)
			require.NoError(t, err)
			want, err := os.ReadFile(GoldenPath(file))
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "golden", "slug.golden"), GoldenPath(filepath.Join("a", "b", "slug.yaml")))
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := FindScenarioFiles(scenariosDir, "")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"cms_pages.yaml", "manual_conflict.yaml", "new_product.yaml", "slug_change.yaml"}, names)

	files, err = FindScenarioFiles(scenariosDir, "*_product")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new_product.yaml", filepath.Base(files[0]))

	_, err = FindScenarioFiles(scenariosDir, "[")
	require.Error(t, err)
}

func TestRunSuite(t *testing.T) {
	suite, err := RunSuite(context.Background(), scenariosDir, SuiteOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, suite.Total)
	assert.Equal(t, 4, suite.Passed, "outcomes: %+v", suite.Scenarios)
	assert.Equal(t, 0, suite.Failed)

	golden := map[string]string{}
	for _, o := range suite.Scenarios {
		golden[o.Name] = o.Golden
	}
	assert.Equal(t, map[string]string{
		"cms_pages":       "",
		"manual_conflict": "match",
		"new_product":     "match",
		"slug_change":     "match",
	}, golden)
}

func TestRunSuite_UpdateThenMismatch(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join(scenariosDir, "new_product.yaml"))
	require.NoError(t, err)
	file := filepath.Join(dir, "new_product.yaml")
	require.NoError(t, os.WriteFile(file, src, 0o644))

	suite, err := RunSuite(context.Background(), dir, SuiteOptions{Update: true})
	require.NoError(t, err)
	require.Len(t, suite.Scenarios, 1)
	assert.Equal(t, "updated", suite.Scenarios[0].Golden)
	assert.FileExists(t, GoldenPath(file))

	suite, err = RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "match", suite.Scenarios[0].Golden)
	assert.Equal(t, 1, suite.Passed)

	require.NoError(t, os.WriteFile(GoldenPath(file), []byte(`{"scenario_name":"new_product","steps":[]}`), 0o644))
	suite, err = RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "mismatch", suite.Scenarios[0].Golden)
	assert.Equal(t, 1, suite.Failed)
	assert.Contains(t, suite.Scenarios[0].Errors, "steps do not match golden file (run with --update to regenerate)")
}

func TestRunSuite_LoadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [\n"), 0o644))

	suite, err := RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	require.Len(t, suite.Scenarios, 1)
	assert.False(t, suite.Scenarios[0].Pass)
	assert.Equal(t, "broken.yaml", suite.Scenarios[0].Name)
	assert.Contains(t, suite.Scenarios[0].Errors[0], "failed to load scenario")
}
