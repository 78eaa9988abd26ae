package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/ports"
)

var listingColumns = []string{
	"hash",
	"title",
	"company",
	"location",
	"platform",
	"url",
	"posted_at_ms",
	"seniority",
	"tech_stack",
	"employment_type",
	"created_at_ms",
}

// Option tunes a repository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now for created/sent timestamps and recency cutoffs.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ListingStore is the deduplication store; the listing hash is the primary key.
type ListingStore struct {
	db   *DB
	opts options
}

var _ ports.ListingStore = (*ListingStore)(nil)

// NewListingStore wires a listing store over the shared handle.
func NewListingStore(db *DB, opts ...Option) *ListingStore {
	return &ListingStore{db: db, opts: buildOptions(opts)}
}

// InsertIfAbsent stores the listing unless its hash is already present.
func (s *ListingStore) InsertIfAbsent(ctx context.Context, listing domain.Listing) (bool, string, error) {
	hash := Hash(listing)
	inserted, err := s.insert(ctx, s.db.SQL, hash, listing)
	if err != nil {
		return false, hash, err
	}
	return inserted, hash, nil
}

// InsertBatch inserts every listing inside a single transaction. Any storage
// error rolls the whole batch back. Repeats inside the batch count as duplicates.
func (s *ListingStore) InsertBatch(ctx context.Context, listings []domain.Listing) (domain.BatchResult, error) {
	result := domain.BatchResult{
		InsertedHashes:  []string{},
		DuplicateHashes: []string{},
	}
	if len(listings) == 0 {
		return result, nil
	}

	tx, err := s.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return domain.BatchResult{}, errors.Wrap(err, "begin batch")
	}
	defer func() { _ = tx.Rollback() }()

	for _, listing := range listings {
		hash := Hash(listing)
		inserted, err := s.insert(ctx, tx, hash, listing)
		if err != nil {
			return domain.BatchResult{}, err
		}
		if inserted {
			result.InsertedHashes = append(result.InsertedHashes, hash)
		} else {
			result.DuplicateHashes = append(result.DuplicateHashes, hash)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.BatchResult{}, errors.Wrap(err, "commit batch")
	}
	return result, nil
}

// Recent lists stored listings newest first, optionally for one platform.
func (s *ListingStore) Recent(ctx context.Context, platform string, limit int) ([]domain.ListingRecord, error) {
	q := s.db.Builder.Select(listingColumns...).
		From("listings").
		OrderBy("posted_at_ms DESC", "hash")
	if platform != "" {
		q = q.Where(sq.Eq{"platform": platform})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build recent query")
	}

	rows, err := s.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query recent listings")
	}
	return scanListingRecords(rows)
}

func (s *ListingStore) insert(ctx context.Context, runner sq.BaseRunner, hash string, l domain.Listing) (bool, error) {
	stack, err := json.Marshal(nonNil(l.TechStack))
	if err != nil {
		return false, errors.Wrap(err, "encode tech stack")
	}

	res, err := s.db.Builder.Insert("listings").
		Columns(listingColumns...).
		Values(
			hash,
			l.Title,
			l.Company,
			l.Location,
			l.Platform,
			l.URL,
			toMillis(l.PostedAt),
			string(l.Seniority),
			string(stack),
			l.EmploymentType,
			toMillis(s.opts.now()),
		).
		Suffix("ON CONFLICT (hash) DO NOTHING").
		RunWith(runner).
		ExecContext(ctx)
	if err != nil {
		return false, errors.Wrapf(err, "insert listing %s", hash)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (domain.ListingRecord, error) {
	var (
		rec       domain.ListingRecord
		postedAt  int64
		createdAt int64
		seniority string
		stack     string
	)
	l := &rec.Listing
	err := row.Scan(
		&rec.Hash,
		&l.Title,
		&l.Company,
		&l.Location,
		&l.Platform,
		&l.URL,
		&postedAt,
		&seniority,
		&stack,
		&l.EmploymentType,
		&createdAt,
	)
	if err != nil {
		return domain.ListingRecord{}, errors.Wrap(err, "scan listing")
	}

	l.PostedAt = fromMillis(postedAt)
	l.Seniority = domain.Seniority(seniority)
	rec.CreatedAt = fromMillis(createdAt)
	if stack != "" {
		if err := json.Unmarshal([]byte(stack), &l.TechStack); err != nil {
			return domain.ListingRecord{}, errors.Wrapf(err, "decode tech stack of %s", rec.Hash)
		}
	}
	if len(l.TechStack) == 0 {
		l.TechStack = nil
	}
	return rec, nil
}

func scanListingRecords(rows *sql.Rows) ([]domain.ListingRecord, error) {
	var out []domain.ListingRecord
	for rows.Next() {
		rec, err := scanListing(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
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

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
