package telegram

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
)

// ErrNoMessage is returned for updates that carry no chat message
// (edited messages, callbacks, channel posts).
var ErrNoMessage = errors.New("update has no message")

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Text string `json:"text"`
	From *struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"from"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// ParseUpdate maps a webhook update to a registration event. /start and
// /register register the sender; everything else is a help request.
func ParseUpdate(body []byte) (domain.RegistrationEvent, error) {
	var u update
	if err := json.Unmarshal(body, &u); err != nil {
		return domain.RegistrationEvent{}, errors.Wrap(err, "decode update")
	}
	if u.Message == nil || u.Message.Chat.ID == 0 {
		return domain.RegistrationEvent{}, ErrNoMessage
	}

	ev := domain.RegistrationEvent{
		Kind:   commandKind(u.Message.Text),
		ChatID: u.Message.Chat.ID,
		User:   domain.User{ID: u.Message.Chat.ID},
	}
	if from := u.Message.From; from != nil {
		ev.User.Username = from.Username
		ev.User.FirstName = from.FirstName
		ev.User.LastName = from.LastName
	}
	return ev, nil
}

func commandKind(text string) domain.RegistrationKind {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.EventHelp
	}

	// "/register@JobFeedBot" in group chats
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start", "/register":
		return domain.EventRegister
	default:
		return domain.EventHelp
	}
}
