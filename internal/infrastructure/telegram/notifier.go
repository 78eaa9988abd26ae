package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/ports"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// ErrMisconfigured is returned by Send when no bot token is set.
var ErrMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier sends HTML messages to Telegram chats via the bot API.
type Notifier struct {
	botToken string
	baseURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the bot token; an empty baseURL means api.telegram.org.
func NewNotifier(botToken, baseURL string) *Notifier {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Notifier{
		botToken: botToken,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send posts an HTML message with link previews disabled.
func (n *Notifier) Send(ctx context.Context, chatID int64, text string) error {
	if n.botToken == "" || n.client == nil {
		return ErrMisconfigured
	}

	endpoint := n.baseURL + "/bot" + n.botToken + "/sendMessage"
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		// the token is part of the URL, keep it out of the error
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apiResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
		if body.Description != "" {
			return errors.Newf("telegram error: %s: %s", resp.Status, body.Description)
		}
		return errors.Newf("telegram error: %s", resp.Status)
	}

	return nil
}
