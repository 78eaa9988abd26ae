package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
)

type fakeSource struct {
	id    string
	items []domain.RawPosting
	err   error
	panic bool
	calls int
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Fetch(ctx context.Context, _ time.Time) ([]domain.RawPosting, error) {
	f.calls++
	if f.panic {
		panic("scraper exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, ctx.Err()
}

type blockingSource struct{ id string }

func (b blockingSource) ID() string { return b.id }

func (b blockingSource) Fetch(ctx context.Context, _ time.Time) ([]domain.RawPosting, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
	onSend  func(chatID int64, text string)
}

func (n *fakeNotifier) Send(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.onSend != nil {
		n.onSend(chatID, text)
	}
	for needle := range n.failFor {
		if containsFold(text, needle) {
			return errors.New("telegram unavailable")
		}
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type deliveryKey struct {
	user int64
	hash string
}

type fakeLedger struct {
	mu       sync.Mutex
	marks    map[deliveryKey]int
	failMark map[string]bool
	unsent   map[int64][]domain.ListingRecord
	failUser map[int64]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{marks: map[deliveryKey]int{}}
}

func (l *fakeLedger) UnsentFor(_ context.Context, userID int64, _ time.Duration, _ int) ([]domain.ListingRecord, error) {
	if l.failUser[userID] {
		return nil, errors.New("ledger unavailable")
	}
	return l.unsent[userID], nil
}

func (l *fakeLedger) Mark(_ context.Context, userID int64, hash string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failMark[hash] {
		return false, errors.New("constraint check failed")
	}
	k := deliveryKey{userID, hash}
	l.marks[k]++
	return l.marks[k] == 1, nil
}

func (l *fakeLedger) marked(userID int64, hash string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.marks[deliveryKey{userID, hash}] > 0
}

type fakeUsers struct {
	users   map[int64]domain.User
	failErr error
}

func (u *fakeUsers) Upsert(_ context.Context, user domain.User) error {
	if u.failErr != nil {
		return u.failErr
	}
	if u.users == nil {
		u.users = map[int64]domain.User{}
	}
	u.users[user.ID] = user
	return nil
}

func (u *fakeUsers) List(context.Context) ([]domain.User, error) {
	if u.failErr != nil {
		return nil, u.failErr
	}
	var out []domain.User
	for _, user := range u.users {
		out = append(out, user)
	}
	return out, nil
}

func (u *fakeUsers) Get(_ context.Context, id int64) (domain.User, error) {
	user, ok := u.users[id]
	if !ok {
		return domain.User{}, errors.New("not found")
	}
	return user, nil
}

type heldLease struct{ err error }

func (h heldLease) TryAcquire() (func(), error) { return nil, h.err }

type countingLease struct{ acquired, released int }

func (c *countingLease) TryAcquire() (func(), error) {
	c.acquired++
	return func() { c.released++ }, nil
}

func record(title, hash string) domain.ListingRecord {
	return domain.ListingRecord{
		Listing: domain.Listing{
			Title:    title,
			Company:  "Acme",
			Location: "Remote",
			Platform: "greenhouse",
			URL:      "https://jobs.example.org/" + hash,
			PostedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Hash: hash,
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
