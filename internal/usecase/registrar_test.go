package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging/loggingtest"
)

func TestRegistrarRegisterUpsertsAndWelcomes(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{}
	notifier := &fakeNotifier{}
	r := NewRegistrar(users, notifier, loggingtest.New(t))

	err := r.Handle(context.Background(), domain.RegistrationEvent{
		Kind:   domain.EventRegister,
		ChatID: 99,
		User:   domain.User{ID: 99, Username: "gopher", FirstName: "Rob"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gopher", users.users[99].Username)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(99), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "Welcome, Rob!")
}

func TestRegistrarHelpChangesNothing(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{}
	notifier := &fakeNotifier{}
	r := NewRegistrar(users, notifier, loggingtest.New(t))

	for _, kind := range []domain.RegistrationKind{domain.EventHelp, "sticker"} {
		require.NoError(t, r.Handle(context.Background(), domain.RegistrationEvent{Kind: kind, ChatID: 5, User: domain.User{ID: 5}}))
	}

	assert.Empty(t, users.users)
	require.Len(t, notifier.sent, 2)
	assert.Contains(t, notifier.sent[0].text, "/register")
}

func TestRegistrarSurfacesStorageFaults(t *testing.T) {
	t.Parallel()

	r := NewRegistrar(&fakeUsers{failErr: errors.New("db down")}, nil, loggingtest.New(t))
	err := r.Handle(context.Background(), domain.RegistrationEvent{Kind: domain.EventRegister, ChatID: 1, User: domain.User{ID: 1}})
	require.Error(t, err)
}

func TestRegistrarIgnoresReplyFailure(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{}
	notifier := &fakeNotifier{failFor: map[string]bool{"welcome": true}}
	r := NewRegistrar(users, notifier, loggingtest.New(t))

	require.NoError(t, r.Handle(context.Background(), domain.RegistrationEvent{Kind: domain.EventRegister, ChatID: 3, User: domain.User{ID: 3}}))
	assert.Contains(t, users.users, int64(3))
}
