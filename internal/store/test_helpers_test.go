package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
	"github.com/roach88/snaphist/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testInput returns two objects and their attributes; object 2 never terminates.
func testInput() ([]ir.Object, []ir.Attribute) {
	objects := []ir.Object{
		testutil.Object(2, "2020-01-01 00:00:00", "infinity"),
		testutil.Object(1, "2020-01-01 00:00:00", "2020-03-01 00:00:00"),
	}
	attrs := []ir.Attribute{
		testutil.Attr(10, 1, "color", "red", "2020-01-01 00:00:00", "2020-01-31 23:59:59"),
		testutil.Attr(11, 1, "color", "blue", "2020-02-01 00:00:00", "infinity"),
		testutil.Attr(12, 2, "size", "L", "2020-01-15 12:30:00.25", "infinity"),
		testutil.Attr(13, 99, "orphan", "x", "2020-01-01 00:00:00", "infinity"),
	}
	return objects, attrs
}

// testHistory reconstructs testInput.
func testHistory() *history.History {
	objects, attrs := testInput()
	return history.Reconstruct(objects, attrs, history.Options{})
}
