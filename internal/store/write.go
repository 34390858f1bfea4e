package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertPending creates a new Pending record for an attempt that is
// about to run and returns its generated id.
//
// logicalTime is the point in time the eventual result is valid for,
// distinct from the insertion timestamp the database assigns.
func (s *Store) InsertPending(ctx context.Context, fingerprint string, branch int, logicalTime float64) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("insert pending: generate id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, branch, fingerprint, logical_time, status)
		VALUES (?, ?, ?, ?, ?)
	`, id.String(), branch, fingerprint, logicalTime, int(StatusPending))
	if err != nil {
		return "", fmt.Errorf("insert pending: %w", err)
	}

	return id.String(), nil
}

// MarkDone transitions the record with the given id to a terminal
// status and attaches the serialized result.
//
// The update only matches while the record is still Pending, so a
// terminal record is never mutated again. A lost race (another writer
// finished the same record first) is silently ignored: readers converge
// on whichever terminal state landed.
func (s *Store) MarkDone(ctx context.Context, id string, status Status, result []byte) error {
	if !status.Terminal() {
		return fmt.Errorf("mark done: status %s is not terminal", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET status = ?, result = ?
		WHERE id = ? AND status = ?
	`, int(status), result, id, int(StatusPending))
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}

	return nil
}

// MarkDoneWhere transitions every Pending record matching
// (fingerprint, branch, window) to a terminal status.
//
// Deprecated: the filter can match multiple still-pending rows that
// represent distinct attempts, stamping them all with the same result.
// Callers that hold the record id from InsertPending must use MarkDone.
// This form is retained only for tooling that repairs abandoned rows.
func (s *Store) MarkDoneWhere(ctx context.Context, fingerprint string, branch int, w Window, status Status, result []byte) error {
	if !status.Terminal() {
		return fmt.Errorf("mark done where: status %s is not terminal", status)
	}

	query := `
		UPDATE records
		SET status = ?, result = ?
		WHERE fingerprint = ? AND branch = ? AND status = ? AND logical_time >= ?
	`
	args := []any{int(status), result, fingerprint, branch, int(StatusPending), w.Start}
	if !w.Unbounded() {
		query += " AND logical_time <= ?"
		args = append(args, w.End)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark done where: %w", err)
	}

	return nil
}
