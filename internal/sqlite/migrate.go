package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/whodunit/internal/errors"
)

// migrateTo makes the database schema match schemaDefinition.
//
// The migration is declarative. The target schema is created in a scratch in-memory database that is attached to
// the transaction, and the two sqlite_schema tables are compared:
//
//  1. Tables missing from the target are dropped.
//  2. New tables are created.
//  3. Changed tables go through the 12-step procedure in https://www.sqlite.org/lang_altertable.html#otheralter.
//  4. Indexes and triggers that differ are dropped and recreated.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	// Foreign keys must be off for table recreation and the pragma is a no-op inside a transaction.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "re-enable foreign key validation"))
		}
	}()

	targetDSN := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	target, err := sql.Open("sqlite3", targetDSN)
	if err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "close schema target database",
				errors.SlogError(errors.Wrap(closeErr, "close")))
		}
	}()
	if strings.TrimSpace(schemaDefinition) != "" {
		if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
			return errors.Wrap(err, "create schema target database")
		}
	} else if err = target.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping schema target database")
	}

	var tx *sqlx.Tx
	if tx, err = db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "rollback migration", errors.SlogError(rbErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", targetDSN); err != nil {
		return errors.Wrap(err, "attach schema target database")
	}
	if err = db.migrateTables(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	if err = db.migrateSchemaObjects(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate indexes and triggers")
	}
	var violations []string
	if err = tx.SelectContext(ctx, &violations, `SELECT "table" FROM pragma_foreign_key_check`); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations", slog.Any("tables", violations))
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); err != nil {
		return errors.Wrap(err, "detach schema target database")
	}
	return nil
}

type changedTable struct {
	Name       string `db:"name"`
	CurrentSQL string `db:"current_sql"`
	NewSQL     string `db:"new_sql"`
}

func (db *Database) migrateTables(ctx context.Context, tx *sqlx.Tx) error {
	var deleted []string
	if err := tx.SelectContext(ctx, &deleted, `SELECT current.name
FROM main.sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND target.type IS NULL AND current.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query deleted tables")
	}
	for _, table := range deleted {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE "%s"`, table)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table))
		}
	}

	var created []string
	if err := tx.SelectContext(ctx, &created, `SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type = 'table' AND current.type IS NULL AND target.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query new tables")
	}
	for _, query := range created {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", query))
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return errors.Wrap(err, "create table", slog.String("query", query))
		}
	}

	var changed []changedTable
	if err := tx.SelectContext(ctx, &changed, `SELECT current.name AS name, current.sql AS current_sql,
       target.sql AS new_sql
FROM main.sqlite_schema AS current
JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND current.name NOT LIKE 'sqlite_%' AND current.sql <> target.sql`); err != nil {
		return errors.Wrap(err, "query changed tables")
	}
	for _, table := range changed {
		if err := db.recreateTable(ctx, tx, table); err != nil {
			return errors.Wrap(err, "recreate table", slog.String("table", table.Name))
		}
	}
	return nil
}

// recreateTable copies the common columns of a changed table into a table created with the new definition.
func (db *Database) recreateTable(ctx context.Context, tx *sqlx.Tx, table changedTable) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.Name),
		slog.String("current_sql", table.CurrentSQL),
		slog.String("new_sql", table.NewSQL))

	tempName := table.Name + "_migration_temp"
	if _, err := tx.ExecContext(ctx, strings.Replace(table.NewSQL, table.Name, tempName, 1)); err != nil {
		return errors.Wrap(err, "create table with temporary name")
	}

	var columns []string
	// Quote column names to handle SQLite keywords such as "order".
	if err := tx.SelectContext(ctx, &columns, `SELECT '"' || target.name || '"'
FROM pragma_table_info(:table_name) AS current
JOIN pragma_table_info(:table_name, 'schemaTarget') AS target ON target.name = current.name`,
		sql.Named("table_name", table.Name)); err != nil {
		return errors.Wrap(err, "query common columns")
	}
	if len(columns) > 0 {
		common := strings.Join(columns, ", ")
		copySQL := fmt.Sprintf(`INSERT INTO "%s" (%s) SELECT %s FROM "%s"`, tempName, common, common, table.Name)
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data", slog.String("query", copySQL))
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE "%s"`, table.Name)); err != nil {
		return errors.Wrap(err, "drop old table")
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE "%s" RENAME TO "%s"`, tempName, table.Name)); err != nil {
		return errors.Wrap(err, "rename new table")
	}
	return nil
}

type schemaObject struct {
	Type string `db:"type"`
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

// migrateSchemaObjects synchronizes explicitly created indexes and triggers. Automatic indexes have no SQL and are
// managed by SQLite.
func (db *Database) migrateSchemaObjects(ctx context.Context, tx *sqlx.Tx) error {
	var stale []schemaObject
	if err := tx.SelectContext(ctx, &stale, `SELECT current.type AS type, current.name AS name, current.sql AS sql
FROM main.sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type IN ('index', 'trigger') AND current.sql IS NOT NULL
  AND (target.sql IS NULL OR target.sql <> current.sql)`); err != nil {
		return errors.Wrap(err, "query stale schema objects")
	}
	for _, obj := range stale {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping schema object",
			slog.String("type", obj.Type), slog.String("name", obj.Name))
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP %s "%s"`, strings.ToUpper(obj.Type), obj.Name)); err != nil {
			return errors.Wrap(err, "drop schema object", slog.String("name", obj.Name))
		}
	}

	var missing []schemaObject
	if err := tx.SelectContext(ctx, &missing, `SELECT target.type AS type, target.name AS name, target.sql AS sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type IN ('index', 'trigger') AND target.sql IS NOT NULL AND current.type IS NULL`); err != nil {
		return errors.Wrap(err, "query missing schema objects")
	}
	for _, obj := range missing {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating schema object",
			slog.String("type", obj.Type), slog.String("name", obj.Name))
		if _, err := tx.ExecContext(ctx, obj.SQL); err != nil {
			return errors.Wrap(err, "create schema object", slog.String("query", obj.SQL))
		}
	}
	return nil
}
