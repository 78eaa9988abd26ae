package httpapi

import (
	"net/http"
	"time"

	"JobFeed/internal/logging"
)

// Deps wires the handlers.
type Deps struct {
	Runner        Runner
	Events        EventHandler
	TriggerToken  string
	WebhookSecret string
	RunTimeout    time.Duration
	Logger        *logging.Logger
}

// NewRouter returns the full handler with middleware applied.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	rh := RunHandler{Runner: d.Runner, Token: d.TriggerToken, Timeout: d.RunTimeout, Logger: d.Logger}
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Run,
		http.MethodGet:  rh.Run,
	}))

	if d.Events != nil {
		wh := WebhookHandler{Events: d.Events, Secret: d.WebhookSecret, Logger: d.Logger}
		mux.HandleFunc("/telegram/webhook", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: wh.Update,
		}))
	}

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: Health,
	}))

	return Chain(mux, RequestID, Recover(d.Logger), AccessLog(d.Logger))
}
