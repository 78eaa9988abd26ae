package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/infrastructure/telegram"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
)

const maxWebhookBody = 1 << 20

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

// EventHandler consumes inbound registration events.
type EventHandler interface {
	Handle(ctx context.Context, ev domain.RegistrationEvent) error
}

type runResponse struct {
	OK      bool              `json:"ok"`
	Summary domain.RunSummary `json:"summary"`
}

// RunHandler serves the trigger endpoint.
type RunHandler struct {
	Runner  Runner
	Token   string
	// Timeout bounds a triggered run; zero means no deadline.
	Timeout time.Duration
	Logger  *logging.Logger
}

// Run rejects bad credentials before any pipeline work, then runs synchronously.
// The run outlives the caller's connection: a disconnect never cancels it.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Token != "" && !secretsEqual(bearerToken(r), h.Token) {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	summary, err := h.Runner.Run(ctx)
	switch {
	case errors.Is(err, ports.ErrLeaseHeld):
		writeFailure(w, http.StatusConflict, "a run is already in progress")
	case err != nil:
		h.Logger.Error("triggered run failed",
			"request_id", RequestIDFrom(r.Context()),
			"run_id", summary.RunID,
			"error", err,
		)
		writeFailure(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, runResponse{OK: true, Summary: summary})
	}
}

// WebhookHandler serves Telegram webhook updates.
type WebhookHandler struct {
	Events EventHandler
	Secret string
	Logger *logging.Logger
}

// Update parses the update and hands it to the registrar. Updates without a
// message are acknowledged and ignored so Telegram stops redelivering them.
func (h WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" && !secretsEqual(r.Header.Get("X-Telegram-Bot-Api-Secret-Token"), h.Secret) {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ev, err := telegram.ParseUpdate(body)
	switch {
	case errors.Is(err, telegram.ErrNoMessage):
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	case err != nil:
		writeFailure(w, http.StatusBadRequest, "malformed update")
		return
	}

	if err := h.Events.Handle(r.Context(), ev); err != nil {
		h.Logger.Error("registration failed",
			"request_id", RequestIDFrom(r.Context()),
			"chat_id", ev.ChatID,
			"error", err,
		)
		// non-2xx makes Telegram redeliver; the upsert is idempotent
		writeFailure(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
