package harness

import (
	"fmt"

	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/ir"
)

// RowTrace is what one row of a step did. Operations are rendered as
// "<request_path> -> <target_path> [<redirect>]" so traces read like the
// rewrite table.
type RowTrace struct {
	Entity    string   `json:"entity"`
	Creates   []string `json:"creates"`
	Updates   []string `json:"updates"`
	Conflicts []string `json:"conflicts,omitempty"`
	Error     string   `json:"error,omitempty"`
	Skipped   bool     `json:"skipped,omitempty"`
}

// StepTrace is the outcome of one batch step.
type StepTrace struct {
	RunID   string     `json:"run_id"`
	DryRun  bool       `json:"dry_run"`
	Creates int        `json:"creates"`
	Updates int        `json:"updates"`
	Failed  int        `json:"failed"`
	Skipped int        `json:"skipped"`
	Rows    []RowTrace `json:"rows"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Steps holds one trace per executed step, in order.
	Steps []StepTrace `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records a batch report as the next step trace.
func (r *Result) AddStep(report *engine.BatchReport) StepTrace {
	step := StepTrace{
		RunID:   report.Run.ID,
		DryRun:  report.Run.DryRun,
		Creates: report.Run.Creates,
		Updates: report.Run.Updates,
		Failed:  report.Run.Failed,
		Skipped: report.Run.Skipped,
		Rows:    make([]RowTrace, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		step.Rows = append(step.Rows, rowTrace(res))
	}
	r.Steps = append(r.Steps, step)
	return step
}

func rowTrace(res engine.RowResult) RowTrace {
	rt := RowTrace{
		Entity:  res.Row.Key().String(),
		Creates: []string{},
		Updates: []string{},
		Error:   res.Error,
		Skipped: res.Skipped,
	}
	if res.Plan == nil {
		return rt
	}
	for _, rec := range res.Plan.ToCreate {
		rt.Creates = append(rt.Creates, FormatOp(rec))
	}
	for _, rec := range res.Plan.ToUpdate {
		rt.Updates = append(rt.Updates, FormatOp(rec))
	}
	for _, c := range res.Plan.Conflicts {
		rt.Conflicts = append(rt.Conflicts, fmt.Sprintf("%s held by #%d", c.RequestPath, c.HeldBy))
	}
	return rt
}

// FormatOp renders a planned write.
func FormatOp(rec ir.RewriteRecord) string {
	return fmt.Sprintf("%s -> %s [%s]", rec.RequestPath, rec.TargetPath, rec.RedirectType)
}
