package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amenk/import-product/internal/ir"
)

// BeginRun records the start of a batch run. Run ids are unique; beginning
// the same run twice is an error.
func (s *Store) BeginRun(ctx context.Context, run ir.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewrite_run (id, status, dry_run, row_count)
		VALUES (?, ?, ?, ?)
	`, run.ID, string(run.Status), run.DryRun, run.Rows)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, run ir.Run) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rewrite_run SET
			status = ?, row_count = ?, creates = ?, updates = ?, failed = ?, skipped = ?
		WHERE id = ?
	`, string(run.Status), run.Rows, run.Creates, run.Updates, run.Failed, run.Skipped, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: rows affected: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// AppendJournal records one applied write. Seq must be unique across the
// journal; callers resume their clock from LastJournalSeq.
func (s *Store) AppendJournal(ctx context.Context, e ir.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewrite_journal
		(seq, run_id, op, rewrite_id, entity_type, entity_id, store_id,
		 request_path, target_path, redirect_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.Seq,
		e.RunID,
		string(e.Op),
		e.RewriteID,
		e.EntityType,
		e.EntityID,
		e.StoreID,
		e.RequestPath,
		e.TargetPath,
		int64(e.RedirectType),
	)
	if err != nil {
		return fmt.Errorf("append journal seq %d: %w", e.Seq, err)
	}
	return nil
}

// ReadJournal returns the entries of a run ordered by seq.
// Returns an empty slice (not nil) if the run wrote nothing.
func (s *Store) ReadJournal(ctx context.Context, runID string) ([]ir.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, run_id, op, rewrite_id, entity_type, entity_id, store_id,
		       request_path, target_path, redirect_type
		FROM rewrite_journal
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	entries := []ir.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// ReadRun returns a run by id. A missing run wraps ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, runID string) (ir.Run, error) {
	var run ir.Run
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, status, dry_run, row_count, creates, updates, failed, skipped
		FROM rewrite_run
		WHERE id = ?
	`, runID).Scan(&run.ID, &status, &run.DryRun, &run.Rows, &run.Creates, &run.Updates, &run.Failed, &run.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", runID, err)
	}
	run.Status = ir.RunStatus(status)
	return run, nil
}

// LastJournalSeq returns the highest journal seq, or 0 for an empty journal.
func (s *Store) LastJournalSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM rewrite_journal`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last journal seq: %w", err)
	}
	return seq.Int64, nil
}
