package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amenk/import-product/internal/compiler"
	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/store"
	"github.com/amenk/import-product/internal/testutil"
)

// Harness runs scenarios against the real engine over a fresh in-memory
// SQLite store.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Run ids are sequential and the batch uses a single worker, so traces
// are byte-identical across runs.
//
// Execution flow:
// 1. Create fresh in-memory database and seed the given state
// 2. Load CUE kinds if the scenario names a directory
// 3. Execute each step as a batch run, checking step expectations
// 4. Evaluate assertions against the final database
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if _, err := st.Seed(ctx, &scenario.Given); err != nil {
		return nil, fmt.Errorf("failed to seed given state: %w", err)
	}

	kinds, err := loadKinds(scenario.Kinds)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.DiscardHandler)
	h := &Harness{
		store: st,
		engine: engine.New(st, st, kinds,
			engine.WithJournal(st),
			engine.WithLogger(logger),
			engine.WithWorkers(1),
			engine.WithRunIDGenerator(testutil.NewSequentialRunIDs(scenario.RunIDPrefix))),
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func loadKinds(dir string) (*engine.Kinds, error) {
	if dir == "" {
		return engine.DefaultKinds(), nil
	}
	convs, err := compiler.LoadKindsDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load kinds: %w", err)
	}
	kinds, err := engine.NewKinds(convs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load kinds: %w", err)
	}
	return kinds, nil
}

// executeStep runs one step as a batch and checks its expectations.
// An aborted batch is a harness error; failed rows are not.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	report, err := h.engine.RunBatch(ctx, step.Rows, step.DryRun)
	if err != nil {
		return fmt.Errorf("step %d: batch aborted: %w", index, err)
	}
	trace := result.AddStep(report)

	h.logger.Info("step completed",
		"step", index,
		"run_id", trace.RunID,
		"creates", trace.Creates,
		"updates", trace.Updates,
		"failed", trace.Failed)

	for _, msg := range checkStep(index, step.Expect, trace) {
		result.AddError(msg)
	}
	return nil
}

// checkStep compares a step trace with its expectation.
func checkStep(index int, expect *StepExpect, trace StepTrace) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("step %d: expected %d %s, got %d", index, *want, name, got))
		}
	}
	check("creates", expect.Creates, trace.Creates)
	check("updates", expect.Updates, trace.Updates)
	check("failed", expect.Failed, trace.Failed)

	if expect.Error != "" {
		found := false
		for _, row := range trace.Rows {
			if strings.Contains(row.Error, expect.Error) {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Sprintf("step %d: expected a row error containing %q", index, expect.Error))
		}
	}
	return errs
}
