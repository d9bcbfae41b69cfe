package engine

import (
	"errors"
	"fmt"
	"sync"
)

// FailureBudget counts failed rows in a batch and trips once more than
// maxFailures rows have failed. A budget of zero is unlimited.
//
// Failures below the budget are skipped and reported; the batch continues.
// Thread-safety: safe for concurrent use by batch workers.
type FailureBudget struct {
	mu          sync.Mutex
	maxFailures int
	failed      int
}

// NewFailureBudget creates a budget with the given limit.
func NewFailureBudget(maxFailures int) *FailureBudget {
	return &FailureBudget{maxFailures: maxFailures}
}

// Fail records one failed row. It returns BudgetExceededError when the
// failure count goes past the limit.
func (b *FailureBudget) Fail(runID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failed++
	if b.maxFailures > 0 && b.failed > b.maxFailures {
		return &BudgetExceededError{
			RunID:  runID,
			Failed: b.failed,
			Limit:  b.maxFailures,
		}
	}
	return nil
}

// Failed returns the number of recorded failures.
func (b *FailureBudget) Failed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

// MaxFailures returns the configured limit.
func (b *FailureBudget) MaxFailures() int {
	return b.maxFailures
}

// BudgetExceededError aborts a batch. Rows already reconciled stay
// committed; rows not yet started are reported as skipped.
type BudgetExceededError struct {
	RunID  string
	Failed int
	Limit  int
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded failure budget: %d failed rows > %d allowed",
		e.RunID, e.Failed, e.Limit)
}

// IsBudgetExceeded returns true if the error is a BudgetExceededError.
// Uses errors.As to handle wrapped errors.
func IsBudgetExceeded(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}
