package usecase

import (
	"context"
	"fmt"
	"html"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
)

const helpText = "I send new job postings that match the configured filters.\n\n" +
	"/register - start receiving postings\n" +
	"/help - show this message"

// Registrar handles inbound registration events from the chat channel.
type Registrar struct {
	users    ports.UserRepository
	notifier ports.Notifier
	logger   *logging.Logger
}

// NewRegistrar wires the user store and the reply channel. notifier may be nil.
func NewRegistrar(users ports.UserRepository, notifier ports.Notifier, log *logging.Logger) *Registrar {
	return &Registrar{users: users, notifier: notifier, logger: log}
}

// Handle upserts the sender on register. Any other kind is answered with help
// and changes nothing. Reply failures are logged, not returned.
func (r *Registrar) Handle(ctx context.Context, ev domain.RegistrationEvent) error {
	if ev.Kind != domain.EventRegister {
		r.reply(ctx, ev.ChatID, helpText)
		return nil
	}

	user := ev.User
	if user.ID == 0 {
		user.ID = ev.ChatID
	}
	if err := r.users.Upsert(ctx, user); err != nil {
		return errors.Wrapf(err, "register user %d", user.ID)
	}
	r.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	r.reply(ctx, ev.ChatID, fmt.Sprintf("Welcome%s! You will now receive new job postings.", greeting(name)))
	return nil
}

func (r *Registrar) reply(ctx context.Context, chatID int64, text string) {
	if r.notifier == nil || chatID == 0 {
		return
	}
	if err := r.notifier.Send(ctx, chatID, text); err != nil {
		r.logger.Warn("registration reply failed", "chat_id", chatID, "error", err)
	}
}

func greeting(name string) string {
	if name == "" {
		return ""
	}
	return ", " + html.EscapeString(name)
}
