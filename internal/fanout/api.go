package fanout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/charleschow/arcade-hockey/internal/config"
	"github.com/charleschow/arcade-hockey/internal/core/playerid"
	"github.com/charleschow/arcade-hockey/internal/core/progression"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/core/state/store"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

type createMatchRequest struct {
	Preset string `json:"preset"`
	Seed   *int64 `json:"seed"` // omitted → random
}

type createMatchResponse struct {
	MatchID string `json:"match_id"`
	Preset  string `json:"preset"`
	Seed    int64  `json:"seed"`
}

type matchResponse struct {
	MatchID  string `json:"match_id"`
	Preset   string `json:"preset"`
	Seed     int64  `json:"seed"`
	Finished bool   `json:"finished"`
	match.View
}

// API serves the match and player HTTP endpoints next to the WebSocket.
type API struct {
	ws       *Server
	profiles singleflight.Group
}

func NewAPI(ws *Server) *API {
	return &API{ws: ws}
}

// Routes registers every endpoint on a fresh mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /matches", a.createMatch)
	mux.HandleFunc("GET /matches/{id}", a.getMatch)
	mux.HandleFunc("GET /players/{id}", a.getPlayer)
	mux.HandleFunc("GET /ws", a.ws.HandleWS)
	return mux
}

// HTTPServer builds the listener for addr. The caller owns ListenAndServe
// and Shutdown.
func (a *API) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *API) createMatch(w http.ResponseWriter, r *http.Request) {
	if a.ws.launcher == nil {
		http.Error(w, "match creation disabled", http.StatusServiceUnavailable)
		return
	}

	var req createMatchRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	mc, err := a.ws.launcher.Launch(req.Preset, req.Seed)
	switch {
	case errors.Is(err, config.ErrUnknownPreset):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, store.ErrTooManyMatches):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		telemetry.Errorf("api: launch match: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, createMatchResponse{
		MatchID: mc.ID,
		Preset:  mc.Settings.Preset,
		Seed:    mc.Settings.Start.Seed,
	})
}

func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	mc, err := a.ws.sessions.Lookup(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{
		MatchID:  mc.ID,
		Preset:   mc.Settings.Preset,
		Seed:     mc.Settings.Start.Seed,
		Finished: mc.Finished(),
		View:     mc.View(),
	})
}

// getPlayer collapses concurrent lookups of the same player into one
// query; scoreboards poll this for every skater at final.
func (a *API) getPlayer(w http.ResponseWriter, r *http.Request) {
	if a.ws.ledger == nil {
		http.Error(w, "progression disabled", http.StatusServiceUnavailable)
		return
	}
	id := playerid.Normalize(r.PathValue("id"))
	if id == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}

	v, err, _ := a.profiles.Do(id, func() (any, error) {
		return a.ws.ledger.Store().PlayerProfile(id)
	})
	if err != nil {
		telemetry.Errorf("api: profile %s: %v", id, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, v.(progression.Profile))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("api: encode response: %v", err)
	}
}

// Addr formats host and port for HTTPServer.
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
