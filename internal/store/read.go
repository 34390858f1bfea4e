package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExistsWithStatus reports whether at least one record with the given
// status exists for (fingerprint, branch) inside the window.
func (s *Store) ExistsWithStatus(ctx context.Context, fingerprint string, branch int, w Window, status Status) (bool, error) {
	query := `
		SELECT COUNT(*) FROM records
		WHERE fingerprint = ? AND branch = ? AND status = ? AND logical_time >= ?
	`
	args := []any{fingerprint, branch, int(status), w.Start}
	if !w.Unbounded() {
		query += " AND logical_time <= ?"
		args = append(args, w.End)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("exists with status: %w", err)
	}

	return count > 0, nil
}

// Best returns the single highest-priority, earliest-inserted record
// for (fingerprint, branch) inside the window, or nil if none matches.
//
// Priority is Completed > Pending > Failed. Among equal statuses the
// earliest insertion wins, with id as the final tie-break so results
// are deterministic.
//
// An optional status filter restricts the match to exactly that status.
func (s *Store) Best(ctx context.Context, fingerprint string, branch int, w Window, statusFilter ...Status) (*Record, error) {
	query := `
		SELECT id, branch, fingerprint, inserted_at, logical_time, status, payload, result
		FROM records
		WHERE fingerprint = ? AND branch = ? AND logical_time >= ?
	`
	args := []any{fingerprint, branch, w.Start}
	if !w.Unbounded() {
		query += " AND logical_time <= ?"
		args = append(args, w.End)
	}
	for _, st := range statusFilter {
		query += " AND status = ?"
		args = append(args, int(st))
	}
	query += " ORDER BY status DESC, inserted_at ASC, id ASC LIMIT 1"

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve best: %w", err)
	}

	return rec, nil
}

// Get retrieves a single record by id, or nil if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := scanRecord(s.db.QueryRowContext(ctx, `
		SELECT id, branch, fingerprint, inserted_at, logical_time, status, payload, result
		FROM records
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	return rec, nil
}

// ListFilter narrows List output. Zero values mean "no constraint",
// except Fingerprint which is required by retrieval semantics to be
// explicit when Branch or Window are set.
type ListFilter struct {
	Fingerprint string
	Branch      *int
	Window      *Window
	Status      *Status
}

// List returns every record matching the filter in deterministic order
// (insertion time, then id). Used by inspection tooling; the
// coordinator itself only ever needs Best.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Record, error) {
	var conds []string
	var args []any

	if f.Fingerprint != "" {
		conds = append(conds, "fingerprint = ?")
		args = append(args, f.Fingerprint)
	}
	if f.Branch != nil {
		conds = append(conds, "branch = ?")
		args = append(args, *f.Branch)
	}
	if f.Window != nil {
		conds = append(conds, "logical_time >= ?")
		args = append(args, f.Window.Start)
		if !f.Window.Unbounded() {
			conds = append(conds, "logical_time <= ?")
			args = append(args, f.Window.End)
		}
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, int(*f.Status))
	}

	query := `
		SELECT id, branch, fingerprint, inserted_at, logical_time, status, payload, result
		FROM records
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY inserted_at ASC, id ASC"

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Stats returns the number of records per status across the whole log.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM records GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := map[Status]int{
		StatusFailed:    0,
		StatusPending:   0,
		StatusCompleted: 0,
	}
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		stats[Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	return stats, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one record row, parsing the millisecond insertion
// timestamp written by the schema default.
func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		insertedAt string
		status     int
		payload    sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&rec.Branch,
		&rec.Fingerprint,
		&insertedAt,
		&rec.LogicalTime,
		&status,
		&payload,
		&rec.Result,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = Status(status)
	rec.Payload = payload.String

	rec.InsertedAt, err = time.Parse(insertedAtLayout, insertedAt)
	if err != nil {
		return nil, fmt.Errorf("parse inserted_at %q: %w", insertedAt, err)
	}

	return &rec, nil
}
