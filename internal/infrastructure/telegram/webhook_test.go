package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobFeed/internal/domain"
)

func TestParseUpdate(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.RegistrationKind{
		"/start":                 domain.EventRegister,
		"/register":              domain.EventRegister,
		"/Register@JobFeedBot x": domain.EventRegister,
		"/help":                  domain.EventHelp,
		"hello there":            domain.EventHelp,
		"":                       domain.EventHelp,
	}

	for text, want := range cases {
		body := `{"update_id":1,"message":{"text":"` + text + `","from":{"id":7,"username":"gopher","first_name":"Rob","last_name":"Pike"},"chat":{"id":7}}}`
		ev, err := ParseUpdate([]byte(body))
		require.NoError(t, err, text)
		assert.Equal(t, want, ev.Kind, text)
		assert.Equal(t, int64(7), ev.ChatID)
		assert.Equal(t, domain.User{ID: 7, Username: "gopher", FirstName: "Rob", LastName: "Pike"}, ev.User)
	}
}

func TestParseUpdateRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseUpdate([]byte(`{not json`))
	require.Error(t, err)

	_, err = ParseUpdate([]byte(`{"update_id":2,"edited_message":{"text":"/start"}}`))
	require.ErrorIs(t, err, ErrNoMessage)
}
