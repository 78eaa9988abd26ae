package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"JobFeed/internal/logging"
)

// Supported drivers; the names match config.Driver*.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver is returned by Open for anything but postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// ErrNotFound is returned when a keyed lookup has no row.
var ErrNotFound = errors.New("not found")

// DB is the storage handle shared by all repositories within a process.
type DB struct {
	SQL     *sql.DB
	Driver  string
	Builder sq.StatementBuilderType
}

// New wraps an already opened pool, choosing the placeholder style of the driver.
func New(pool *sql.DB, driver string) *DB {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &DB{SQL: pool, Driver: driver, Builder: builder}
}

// Open connects to Postgres (pgx) or SQLite (modernc) and verifies the connection.
func Open(ctx context.Context, driver, dsn string, log *logging.Logger) (*DB, error) {
	var (
		pool *sql.DB
		err  error
	)

	switch driver {
	case DriverPostgres:
		pool, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		pool.SetMaxOpenConns(10)
		pool.SetMaxIdleConns(5)
	case DriverSQLite:
		pool, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		// sqlite wants a single writer
		pool.SetMaxOpenConns(1)
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", driver)
	}
	pool.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}

	log.Info("database opened", "driver", driver)
	return New(pool, driver), nil
}

// Close releases the underlying pool.
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

func sqliteDSN(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
