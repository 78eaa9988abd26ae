package storage

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/ports"
)

// DeliveryLedger records (user, listing) deliveries. The composite primary
// key on deliveries guarantees at most one record per pair.
type DeliveryLedger struct {
	db   *DB
	opts options
}

var _ ports.DeliveryLedger = (*DeliveryLedger)(nil)

// NewDeliveryLedger wires the ledger over the shared handle.
func NewDeliveryLedger(db *DB, opts ...Option) *DeliveryLedger {
	return &DeliveryLedger{db: db, opts: buildOptions(opts)}
}

// UnsentFor returns listings posted within window that the user has not been
// sent yet, newest first. A non-positive limit means no cap.
func (l *DeliveryLedger) UnsentFor(ctx context.Context, userID int64, window time.Duration, limit int) ([]domain.ListingRecord, error) {
	cutoff := toMillis(l.opts.now().Add(-window))

	q := l.db.Builder.Select(prefixed("l", listingColumns)...).
		From("listings l").
		Where(sq.GtOrEq{"l.posted_at_ms": cutoff}).
		Where("NOT EXISTS (SELECT 1 FROM deliveries d WHERE d.user_id = ? AND d.listing_hash = l.hash)", userID).
		OrderBy("l.posted_at_ms DESC", "l.hash")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build unsent query")
	}

	rows, err := l.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query unsent for user %d", userID)
	}
	return scanListingRecords(rows)
}

// Mark creates the delivery record for (userID, hash). It reports false when
// the record already existed, in which case the caller must not send.
func (l *DeliveryLedger) Mark(ctx context.Context, userID int64, hash string) (bool, error) {
	res, err := l.db.Builder.Insert("deliveries").
		Columns("user_id", "listing_hash", "sent_at_ms").
		Values(userID, hash, toMillis(l.opts.now())).
		Suffix("ON CONFLICT (user_id, listing_hash) DO NOTHING").
		RunWith(l.db.SQL).
		ExecContext(ctx)
	if err != nil {
		return false, errors.Wrapf(err, "mark delivery %d/%s", userID, hash)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected == 1, nil
}

// DeliveredTo lists the deliveries of one user, most recent first.
func (l *DeliveryLedger) DeliveredTo(ctx context.Context, userID int64) ([]domain.DeliveryRecord, error) {
	return l.queryDeliveries(ctx, sq.Eq{"user_id": userID})
}

// ForListing lists every user a listing was delivered to.
func (l *DeliveryLedger) ForListing(ctx context.Context, hash string) ([]domain.DeliveryRecord, error) {
	return l.queryDeliveries(ctx, sq.Eq{"listing_hash": hash})
}

func (l *DeliveryLedger) queryDeliveries(ctx context.Context, where sq.Eq) ([]domain.DeliveryRecord, error) {
	query, args, err := l.db.Builder.Select("user_id", "listing_hash", "sent_at_ms").
		From("deliveries").
		Where(where).
		OrderBy("sent_at_ms DESC", "user_id", "listing_hash").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build deliveries query")
	}

	rows, err := l.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query deliveries")
	}

	var out []domain.DeliveryRecord
	for rows.Next() {
		var (
			rec    domain.DeliveryRecord
			sentAt int64
		)
		if err := rows.Scan(&rec.UserID, &rec.ListingHash, &sentAt); err != nil {
			_ = rows.Close()
			return nil, errors.Wrap(err, "scan delivery")
		}
		rec.SentAt = fromMillis(sentAt)
		out = append(out, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, errors.Wrap(rowsErr, "rows iteration")
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, errors.Wrap(closeErr, "close rows")
	}

	return out, nil
}

func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
