// Package web exposes a small diagnostics HTTP surface: liveness and a
// status snapshot mirroring the <status> admin command. It observes the
// session store and model selector; nothing here mutates relay state.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chatrelay/chatrelay/completion"
	"github.com/chatrelay/chatrelay/session"
)

// Status is the /status response body.
type Status struct {
	Model      string `json:"model"`
	Channels   int    `json:"channels"`
	TotalTurns int    `json:"total_turns"`
	UptimeSecs int64  `json:"uptime_secs"`
}

// NewRouter wires the diagnostic routes.
func NewRouter(store session.Store, models *completion.ModelSelector) http.Handler {
	started := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		st := store.Stats()
		respondJSON(w, Status{
			Model:      models.Current(),
			Channels:   st.Channels,
			TotalTurns: st.TotalTurns,
			UptimeSecs: int64(time.Since(started).Seconds()),
		})
	})

	return r
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
