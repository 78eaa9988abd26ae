package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobFeed/internal/domain"
)

func seedListings(t *testing.T, db *DB, listings ...domain.Listing) []string {
	t.Helper()

	res, err := NewListingStore(db, WithClock(fixedClock)).InsertBatch(context.Background(), listings)
	require.NoError(t, err)
	require.Len(t, res.InsertedHashes, len(listings))
	return res.InsertedHashes
}

func TestMarkIsAtMostOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	hashes := seedListings(t, db, listing("Backend", "Acme", "Remote", "rss", testNow))
	ledger := NewDeliveryLedger(db, WithClock(fixedClock))

	ok, err := ledger.Mark(ctx, 42, hashes[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Mark(ctx, 42, hashes[0])
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ledger.Mark(ctx, 7, hashes[0])
	require.NoError(t, err)
	assert.True(t, ok)

	recs, err := ledger.ForListing(ctx, hashes[0])
	require.NoError(t, err)
	require.Len(t, recs, 2)

	mine, err := ledger.DeliveredTo(ctx, 42)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, hashes[0], mine[0].ListingHash)
	assert.True(t, testNow.Equal(mine[0].SentAt))
}

func TestMarkRejectsUnknownListing(t *testing.T) {
	t.Parallel()

	_, err := NewDeliveryLedger(newTestDB(t)).Mark(context.Background(), 1, Hash(domain.Listing{Title: "ghost"}))
	require.Error(t, err)
}

func TestUnsentForHonoursWindowLedgerAndLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	hashes := seedListings(t, db,
		listing("Newest", "Acme", "Remote", "rss", testNow.Add(-time.Hour)),
		listing("Middle", "Acme", "Remote", "rss", testNow.Add(-10*time.Hour)),
		listing("Oldest", "Acme", "Remote", "rss", testNow.Add(-20*time.Hour)),
		listing("Stale", "Acme", "Remote", "rss", testNow.Add(-100*time.Hour)),
	)
	ledger := NewDeliveryLedger(db, WithClock(fixedClock))

	recs, err := ledger.UnsentFor(ctx, 42, 72*time.Hour, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"Newest", "Middle", "Oldest"}, titles(recs))

	_, err = ledger.Mark(ctx, 42, hashes[0])
	require.NoError(t, err)

	recs, err = ledger.UnsentFor(ctx, 42, 72*time.Hour, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Middle"}, titles(recs))

	// other users are unaffected by 42's ledger
	recs, err = ledger.UnsentFor(ctx, 7, 72*time.Hour, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func titles(recs []domain.ListingRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Listing.Title
	}
	return out
}
