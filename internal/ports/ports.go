package ports

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
)

// ErrLeaseHeld is returned by RunLease.TryAcquire while another run owns the lease.
var ErrLeaseHeld = errors.New("run lease is held by another run")

// SourceAdapter pulls raw postings from one external platform.
type SourceAdapter interface {
	ID() string
	Fetch(ctx context.Context, since time.Time) ([]domain.RawPosting, error)
}

// ListingStore owns listing identity and deduplicates by content hash.
type ListingStore interface {
	InsertIfAbsent(ctx context.Context, listing domain.Listing) (inserted bool, hash string, err error)
	InsertBatch(ctx context.Context, listings []domain.Listing) (domain.BatchResult, error)
	Recent(ctx context.Context, platform string, limit int) ([]domain.ListingRecord, error)
}

// DeliveryLedger records which listings were delivered to which users.
type DeliveryLedger interface {
	UnsentFor(ctx context.Context, userID int64, window time.Duration, limit int) ([]domain.ListingRecord, error)
	Mark(ctx context.Context, userID int64, hash string) (bool, error)
}

// UserRepository stores notification recipients.
type UserRepository interface {
	Upsert(ctx context.Context, user domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
}

// Notifier sends a rendered message to a chat on the notification channel.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// RunLease prevents two pipeline runs from overlapping.
type RunLease interface {
	TryAcquire() (release func(), err error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
