package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
)

// Dispatcher delivers listings to one user at most once each.
type Dispatcher struct {
	ledger      ports.DeliveryLedger
	notifier    ports.Notifier
	maxPerUser  int
	sendTimeout time.Duration
	logger      *logging.Logger
}

// NewDispatcher wires the ledger and the outbound channel.
func NewDispatcher(ledger ports.DeliveryLedger, notifier ports.Notifier, maxPerUser int, sendTimeout time.Duration, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		ledger:      ledger,
		notifier:    notifier,
		maxPerUser:  maxPerUser,
		sendTimeout: sendTimeout,
		logger:      log,
	}
}

// Dispatch marks each listing as delivered and only then sends it. A listing
// already marked for the user is skipped. Failures are logged per item.
// It returns how many sends completed without error.
func (d *Dispatcher) Dispatch(ctx context.Context, user domain.User, listings []domain.ListingRecord) int {
	if d.maxPerUser > 0 && len(listings) > d.maxPerUser {
		listings = listings[:d.maxPerUser]
	}

	sent := 0
	for _, rec := range listings {
		ok, err := d.deliver(ctx, user, rec)
		if err != nil {
			d.logger.Warn("delivery failed", "user_id", user.ID, "hash", rec.Hash, "error", err)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}

func (d *Dispatcher) deliver(ctx context.Context, user domain.User, rec domain.ListingRecord) (sent bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			sent = false
			err = errors.Newf("delivery panicked: %v", r)
		}
	}()

	marked, err := d.ledger.Mark(ctx, user.ID, rec.Hash)
	if err != nil {
		return false, errors.Wrap(err, "mark")
	}
	if !marked {
		d.logger.Debug("already delivered", "user_id", user.ID, "hash", rec.Hash)
		return false, nil
	}

	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := d.notifier.Send(sendCtx, user.ID, FormatListing(rec.Listing)); err != nil {
		return false, errors.Wrap(err, "send")
	}
	return true, nil
}

// FormatListing renders a listing as a Telegram HTML message.
func FormatListing(l domain.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(l.Title))
	fmt.Fprintf(&b, "%s · %s\n", html.EscapeString(l.Company), html.EscapeString(l.Location))

	var meta []string
	if l.Seniority != domain.SeniorityUnknown {
		meta = append(meta, string(l.Seniority))
	}
	if l.EmploymentType != "" {
		meta = append(meta, l.EmploymentType)
	}
	if len(l.TechStack) > 0 {
		meta = append(meta, strings.Join(l.TechStack, ", "))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(strings.Join(meta, " | ")))
	}

	fmt.Fprintf(&b, "Posted %s via %s\n", l.PostedAt.UTC().Format("2006-01-02"), html.EscapeString(l.Platform))
	if l.URL != "" {
		fmt.Fprintf(&b, `<a href="%s">Open posting</a>`, html.EscapeString(l.URL))
	}
	return strings.TrimRight(b.String(), "\n")
}
