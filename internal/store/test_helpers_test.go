package store

import (
	"path/filepath"
	"testing"
)

// openTestStore opens a fresh store in a temp directory and closes it
// when the test ends.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// insertRaw inserts a record with explicit id and inserted_at, bypassing
// InsertPending. Used to pin insertion order for tie-break tests.
func insertRaw(t *testing.T, s *Store, id, fingerprint string, branch int, insertedAt string, logicalTime float64, status Status, result []byte) {
	t.Helper()

	_, err := s.db.Exec(`
		INSERT INTO records (id, branch, fingerprint, inserted_at, logical_time, status, result)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, branch, fingerprint, insertedAt, logicalTime, int(status), result)
	if err != nil {
		t.Fatalf("insertRaw(%s): %v", id, err)
	}
}
