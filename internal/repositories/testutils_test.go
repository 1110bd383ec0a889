package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/whodunit/internal/sqlite"
	"github.com/myrjola/whodunit/internal/testhelpers"
)

// newTestDB creates a new in-memory database with the application schema.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Error(err)
		}
	})
	return db
}
