package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/amenk/import-product/internal/ir"
)

// RowResult is the outcome of one row in a batch.
type RowResult struct {
	Row     Row      `json:"row"`
	Plan    *ir.Plan `json:"plan,omitempty"`
	Error   string   `json:"error,omitempty"`
	Skipped bool     `json:"skipped,omitempty"`

	Err error `json:"-"`
}

// BatchReport summarizes a batch. Results are in submission order.
type BatchReport struct {
	Run     ir.Run      `json:"run"`
	Results []RowResult `json:"results"`
}

// RunBatch reconciles rows with a bounded worker pool. With dryRun set
// rows are only planned and nothing is journaled.
//
// A failing row is logged, reported and counted against the failure budget;
// the batch continues until the budget trips. Cancellation stops workers
// from taking new rows. Rows never started are reported as skipped and can
// be resubmitted safely.
//
// The returned error is non-nil only when the batch was aborted (budget
// exceeded or ctx done, or the journal failed); the report is returned
// either way.
func (e *Engine) RunBatch(ctx context.Context, rows []Row, dryRun bool) (*BatchReport, error) {
	runID := e.runIDs.Generate()
	journaled := e.journal != nil && !dryRun
	report := &BatchReport{
		Run: ir.Run{
			ID:     runID,
			Status: ir.RunStatusRunning,
			DryRun: dryRun,
			Rows:   len(rows),
		},
		Results: make([]RowResult, len(rows)),
	}

	if journaled {
		if err := e.journal.BeginRun(ctx, report.Run); err != nil {
			return report, NewStoreError(EntityKey{}, "begin run", err)
		}
	}

	e.logger.Info("batch starting",
		"run_id", runID,
		"rows", len(rows),
		"workers", e.workers,
		"dry_run", dryRun)

	q := newRowQueue(len(rows))
	for i, r := range rows {
		q.Enqueue(queuedRow{index: i, row: r})
	}
	q.Close()

	started := make([]bool, len(rows))
	budget := NewFailureBudget(e.maxFailures)

	g, gctx := errgroup.WithContext(ctx)
	workers := min(e.workers, max(len(rows), 1))
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				qr, ok := q.Next(gctx)
				if !ok {
					return nil
				}
				started[qr.index] = true

				var plan *ir.Plan
				var err error
				if dryRun {
					plan, err = e.Plan(gctx, qr.row)
				} else {
					plan, err = e.reconcileRow(gctx, runID, qr.row)
				}
				res := RowResult{Row: qr.row, Plan: plan, Err: err}
				if err != nil {
					res.Error = err.Error()
				}
				report.Results[qr.index] = res

				if err != nil {
					e.logger.Warn("row failed",
						"run_id", runID,
						"entity", qr.row.Key().String(),
						"error", err)
					if berr := budget.Fail(runID); berr != nil {
						return berr
					}
				}
			}
		})
	}

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	for i := range report.Results {
		res := &report.Results[i]
		if !started[i] {
			res.Row = rows[i]
			res.Skipped = true
			report.Run.Skipped++
			continue
		}
		if res.Err != nil {
			report.Run.Failed++
			continue
		}
		if res.Plan != nil {
			report.Run.Creates += len(res.Plan.ToCreate)
			report.Run.Updates += len(res.Plan.ToUpdate)
		}
	}

	report.Run.Status = ir.RunStatusCompleted
	if err != nil {
		report.Run.Status = ir.RunStatusAborted
	}

	if journaled {
		if ferr := e.journal.FinishRun(context.WithoutCancel(ctx), report.Run); ferr != nil {
			err = errors.Join(err, NewStoreError(EntityKey{}, "finish run", ferr))
		}
	}

	e.logger.Info("batch finished",
		"run_id", runID,
		"status", string(report.Run.Status),
		"creates", report.Run.Creates,
		"updates", report.Run.Updates,
		"failed", report.Run.Failed,
		"skipped", report.Run.Skipped)
	return report, err
}
