package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/onnwee/kc-tender/session"
	"github.com/onnwee/kc-tender/telemetry"
)

// submitResultTimeout bounds how long POST /submit waits for the session
// loop to pick the input up.
const submitResultTimeout = 5 * time.Second

// statsResponse is the body of GET /stats/{player}.
type statsResponse struct {
	Player        string         `json:"player"`
	KillCounts    map[string]int `json:"kill_counts"`
	PersonalBests map[string]int `json:"personal_bests"`
}

// HandleStats returns every stored kill count and personal best of a player.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(r.PathValue("player"))
	if player == "" {
		http.Error(w, "player required", http.StatusBadRequest)
		return
	}

	kcs, err := h.stats.KillCounts(r.Context(), player)
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("list kill counts", slog.String("player", player), slog.Any("err", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pbs, err := h.stats.PersonalBests(r.Context(), player)
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("list personal bests", slog.String("player", player), slog.Any("err", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Player: player, KillCounts: kcs, PersonalBests: pbs})
}

// submitRequest is the body of POST /submit. Wait holds the response until
// the submission has finished.
type submitRequest struct {
	Text string `json:"text"`
	Wait bool   `json:"wait"`
}

type submitResponse struct {
	Initiated bool   `json:"initiated"`
	TaskID    string `json:"task_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleSubmit confirms sending a chat command as the local player, which
// pushes the matching local statistics to the remote service first.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitResultTimeout)
	defer cancel()

	result := make(chan session.Submission, 1)
	if err := h.sessions.Enqueue(ctx, session.Input{Text: req.Text, Result: result}); err != nil {
		telemetry.LoggerWithCorr(ctx).Warn("enqueue submit", slog.Any("err", err))
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	var sub session.Submission
	select {
	case sub = <-result:
	case <-ctx.Done():
		http.Error(w, "session busy", http.StatusServiceUnavailable)
		return
	}

	resp := submitResponse{Initiated: sub.Initiated}
	if sub.Task != nil {
		resp.TaskID = sub.Task.ID
		if req.Wait {
			if err := sub.Task.Wait(r.Context()); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				resp.Error = err.Error()
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
