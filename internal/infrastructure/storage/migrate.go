package storage

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const bootstrapMigration = "000_create_schema_migrations"

type migration struct {
	version string
	body    string
}

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations. Each migration runs in its own transaction.
func (d *DB) Migrate(ctx context.Context, log *logging.Logger) (int, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.version == bootstrapMigration {
			if err := execStatements(ctx, d.SQL, m.body); err != nil {
				return applied, errors.Wrap(err, "bootstrap schema_migrations")
			}
			continue
		}

		done, err := d.migrationApplied(ctx, m.version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		if err := d.applyMigration(ctx, m); err != nil {
			return applied, errors.Wrapf(err, "apply migration %s", m.version)
		}
		log.Info("migration applied", "version", m.version)
		applied++
	}

	return applied, nil
}

func (d *DB) migrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := d.Builder.Select("COUNT(*)").
		From("schema_migrations").
		Where("version = ?", version).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "build migration lookup")
	}

	var count int
	if err := d.SQL.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "lookup migration %s", version)
	}
	return count > 0, nil
}

func (d *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if err := execStatements(ctx, tx, m.body); err != nil {
		return err
	}

	_, err = d.Builder.Insert("schema_migrations").
		Columns("version", "applied_at_ms").
		Values(m.version, toMillis(time.Now())).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "record migration")
	}

	return errors.Wrap(tx.Commit(), "commit migration")
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execStatements(ctx context.Context, db execer, body string) error {
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "exec %q", firstLine(stmt))
		}
	}
	return nil
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	out := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		body, err := fs.ReadFile(migrationFiles, "migrations/"+entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", entry.Name())
		}
		out = append(out, migration{
			version: strings.TrimSuffix(entry.Name(), ".sql"),
			body:    string(body),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
