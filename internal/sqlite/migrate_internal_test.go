package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

const (
	sessionsV1 = "CREATE TABLE game_sessions (id TEXT PRIMARY KEY, case_id TEXT NOT NULL)"
	sessionsV2 = "CREATE TABLE game_sessions (id TEXT PRIMARY KEY, case_id TEXT NOT NULL, started TEXT)"
	exchanges  = `CREATE TABLE exchanges (
    id         INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES game_sessions (id),
    "order"    INTEGER NOT NULL,
    question   TEXT NOT NULL
)`
	exchangesWithAnswer = `CREATE TABLE exchanges (
    id         INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES game_sessions (id),
    "order"    INTEGER NOT NULL,
    question   TEXT NOT NULL,
    answer     TEXT NOT NULL DEFAULT ''
)`
	closedGuard = `CREATE TRIGGER exchanges_guard BEFORE INSERT ON exchanges
    BEGIN SELECT RAISE(FAIL, 'case closed'); END;`
	openGuard = `CREATE TRIGGER exchanges_guard BEFORE INSERT ON exchanges
    BEGIN SELECT 1; END;`
)

func TestDatabase_migrateTo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name              string
		schemaDefinitions []string
		testQueries       []string
		wantErr           bool
	}{
		{
			name:              "empty schema",
			schemaDefinitions: []string{""},
			testQueries:       []string{"SELECT * FROM sqlite_schema"},
		},
		{
			name:              "create table",
			schemaDefinitions: []string{sessionsV1},
			testQueries: []string{
				"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'mansion_murder_01')",
				"SELECT * FROM game_sessions",
			},
		},
		{
			name:              "drop table",
			schemaDefinitions: []string{sessionsV1, ""},
			testQueries:       []string{"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'c')"},
			wantErr:           true,
		},
		{
			name:              "add column",
			schemaDefinitions: []string{sessionsV1, sessionsV2},
			testQueries:       []string{"INSERT INTO game_sessions (id, case_id, started) VALUES ('s1', 'c', 'now')"},
		},
		{
			name:              "remove column",
			schemaDefinitions: []string{sessionsV1, sessionsV2, sessionsV1},
			testQueries:       []string{"INSERT INTO game_sessions (id, case_id, started) VALUES ('s1', 'c', 'now')"},
			wantErr:           true,
		},
		{
			name: "add column to table with keyword column",
			schemaDefinitions: []string{
				sessionsV1 + ";" + exchanges,
				sessionsV1 + ";" + exchangesWithAnswer,
			},
			testQueries: []string{
				"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'c')",
				`INSERT INTO exchanges (session_id, "order", question, answer) VALUES ('s1', 1, 'Where?', 'Here.')`,
			},
		},
		{
			name: "create index",
			schemaDefinitions: []string{
				sessionsV1 + "; CREATE INDEX sessions_case_idx ON game_sessions (case_id)",
			},
			testQueries: []string{"DROP INDEX sessions_case_idx"},
		},
		{
			name: "drop index",
			schemaDefinitions: []string{
				sessionsV1 + "; CREATE INDEX sessions_case_idx ON game_sessions (case_id)",
				sessionsV1,
			},
			testQueries: []string{"DROP INDEX sessions_case_idx"},
			wantErr:     true,
		},
		{
			name: "update index",
			schemaDefinitions: []string{
				sessionsV1 + "; CREATE INDEX sessions_case_idx ON game_sessions (case_id)",
				sessionsV1 + "; CREATE INDEX sessions_case_idx ON game_sessions (case_id, id)",
			},
			testQueries: []string{"DROP INDEX sessions_case_idx"},
		},
		{
			name:              "create trigger",
			schemaDefinitions: []string{sessionsV1 + ";" + exchanges + ";" + closedGuard},
			testQueries: []string{
				"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'c')",
				`INSERT INTO exchanges (session_id, "order", question) VALUES ('s1', 1, 'Where?')`,
			},
			wantErr: true,
		},
		{
			name: "delete trigger",
			schemaDefinitions: []string{
				sessionsV1 + ";" + exchanges + ";" + closedGuard,
				sessionsV1 + ";" + exchanges,
			},
			testQueries: []string{
				"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'c')",
				`INSERT INTO exchanges (session_id, "order", question) VALUES ('s1', 1, 'Where?')`,
			},
		},
		{
			name: "update trigger",
			schemaDefinitions: []string{
				sessionsV1 + ";" + exchanges + ";" + closedGuard,
				sessionsV1 + ";" + exchanges + ";" + openGuard,
			},
			testQueries: []string{
				"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'c')",
				`INSERT INTO exchanges (session_id, "order", question) VALUES ('s1', 1, 'Where?')`,
			},
		},
		{
			name:              "application schema",
			schemaDefinitions: []string{schemaDefinition, schemaDefinition},
			testQueries: []string{
				"INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'mansion_murder_01')",
				`INSERT INTO exchanges (session_id, suspect_id, "order", question, answer)
                 VALUES ('s1', 's1', 1, 'Where were you?', 'In the library.')`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			logger := testhelpers.NewLogger(io.Discard)
			db, err := connect(":memory:", logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			for _, schema := range tt.schemaDefinitions {
				logger.LogAttrs(ctx, slog.LevelInfo, "migrating", slog.String("schema", schema))
				require.NoError(t, db.migrateTo(ctx, schema))
			}
			var lastErr error
			for _, query := range tt.testQueries {
				if _, lastErr = db.ReadWrite.ExecContext(ctx, query); lastErr != nil {
					break
				}
			}
			if tt.wantErr {
				require.Error(t, lastErr)
			} else {
				require.NoError(t, lastErr)
			}
		})
	}
}

func TestDatabase_migrateToKeepsRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := connect(":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.migrateTo(ctx, sessionsV1))
	_, err = db.ReadWrite.ExecContext(ctx, "INSERT INTO game_sessions (id, case_id) VALUES ('s1', 'mansion_murder_01')")
	require.NoError(t, err)
	require.NoError(t, db.migrateTo(ctx, sessionsV2))

	var caseID string
	require.NoError(t, db.ReadOnly.GetContext(ctx, &caseID, "SELECT case_id FROM game_sessions WHERE id = 's1'"))
	require.Equal(t, "mansion_murder_01", caseID)
}

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var tables []string
	require.NoError(t, db.ReadOnly.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_schema WHERE type = 'table' ORDER BY name"))
	require.Equal(t, []string{"exchanges", "game_sessions", "sessions", "verdicts"}, tables)
}

func TestDatabase_RunOptimizer(t *testing.T) {
	t.Parallel()
	db, err := NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- db.RunOptimizer(ctx, time.Millisecond) }()
	time.Sleep(5 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
