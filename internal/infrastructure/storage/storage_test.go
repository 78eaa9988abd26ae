package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging/loggingtest"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	log := loggingtest.New(t)
	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "jobs.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Migrate(ctx, log)
	require.NoError(t, err)
	return db
}

func listing(title, company, location, platform string, postedAt time.Time) domain.Listing {
	return domain.Listing{
		Title:    title,
		Company:  company,
		Location: location,
		Platform: platform,
		URL:      "https://jobs.example.org/" + platform + "/" + title,
		PostedAt: postedAt,
	}
}
