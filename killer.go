/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type missionResponse struct {
	OK bool `json:"ok"`
	*MissionView
}

type missionDoneResponse struct {
	OK          bool `json:"ok"`
	MissionDone bool `json:"mission_done"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type resetResponse struct {
	OK      bool `json:"ok"`
	Reset   bool `json:"reset"`
	Players int  `json:"players"`
}

type missionDoneRequest struct {
	PlayerID      string `json:"player_id"`
	PlayerDisplay string `json:"player_display"`
}

type guessRequest struct {
	PlayerID             string `json:"player_id"`
	PlayerDisplay        string `json:"player_display"`
	AccusedKillerID      string `json:"accused_killer_id"`
	AccusedKillerDisplay string `json:"accused_killer_display"`
	GuessedMission       string `json:"guessed_mission"`
}

type resetRequest struct {
	Password string `json:"password"`
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// decodeBody fills v from a JSON request body. An empty or unreadable body
// leaves v zeroed, which the game then rejects as missing fields.
func decodeBody(r *http.Request, v any) {
	_ = json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) int {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logf(cfg, "ERROR: Encoding response failed: %v", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"ok":false,"error":"internal server error"}` + "\n")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	written, _ := w.Write(buf.Bytes())

	return written
}

// publicMessage hides storage and encoding details from clients; only the
// game's own error kinds are worth showing to a player.
func publicMessage(err error) string {
	for _, known := range []error{ErrMissingField, ErrPlayerNotFound, ErrInvalidAssignmentsFormat, ErrUnauthorized} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return "internal server error"
}

func writeError(cfg *Config, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logf(cfg, "ERROR: %v", err)
	}

	writeJSON(cfg, w, status, errorResponse{Error: publicMessage(err)})
}

func logServed(cfg *Config, r *http.Request, what string, written int, startTime time.Time) {
	logf(cfg, "SERVE: %s (%s) to %s in %s",
		what,
		humanReadableSize(int64(written)),
		realIP(r),
		time.Since(startTime).Round(time.Microsecond),
	)
}

func servePlayers(cfg *Config, game *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		roster, err := game.records.Roster(r.Context())
		if err != nil {
			writeError(cfg, w, err)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, roster)

		logServed(cfg, r, "Player roster", written, startTime)
	}
}

func serveMission(cfg *Config, game *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		view, err := game.Mission(r.Context(), r.URL.Query().Get("player"))
		if err != nil {
			writeError(cfg, w, err)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, missionResponse{OK: true, MissionView: view})

		logServed(cfg, r, "Mission for "+strconv.Quote(view.Player.ID), written, startTime)
	}
}

func serveMissionDone(cfg *Config, game *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req missionDoneRequest
		decodeBody(r, &req)

		if err := game.MarkMissionDone(r.Context(), firstNonBlank(req.PlayerID, req.PlayerDisplay)); err != nil {
			writeError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, missionDoneResponse{OK: true, MissionDone: true})
	}
}

func serveGuess(cfg *Config, game *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req guessRequest
		decodeBody(r, &req)

		err := game.SubmitGuess(r.Context(),
			firstNonBlank(req.PlayerID, req.PlayerDisplay),
			firstNonBlank(req.AccusedKillerID, req.AccusedKillerDisplay),
			req.GuessedMission,
		)
		if err != nil {
			writeError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, okResponse{OK: true})
	}
}

func serveLeaderboard(cfg *Config, game *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		rows, err := game.Leaderboard(r.Context())
		if err != nil {
			writeError(cfg, w, err)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, rows)

		logServed(cfg, r, "Leaderboard", written, startTime)
	}
}

func serveAdminReset(cfg *Config, game *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req resetRequest
		decodeBody(r, &req)

		players, err := game.Reset(r.Context(), req.Password)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				logf(cfg, "GAMES: Rejected reset attempt from %s", realIP(r))
			}
			writeError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, resetResponse{OK: true, Reset: true, Players: players})
	}
}

// registerKillerGame sets up routes so that:
//   - $prefix/api/players             → roster, as stored
//   - $prefix/api/mission?player=     → a killer's target and mission
//   - $prefix/api/mission_done        → mark own mission complete
//   - $prefix/api/guess               → accuse a killer
//   - $prefix/api/leaderboard         → standings, roster order
//   - $prefix/api/leaderboard/ws      → standings, pushed on every change
//   - $prefix/api/admin/reset         → wipe progress
//   - $prefix/api/qr                  → PNG QR code of the frontend
func registerKillerGame(cfg *Config, mux *httprouter.Router, game *Game, hub *leaderboardHub, errs chan<- error) {
	mux.GET(cfg.prefix+"/api/players", servePlayers(cfg, game))
	mux.GET(cfg.prefix+"/api/mission", serveMission(cfg, game))
	mux.POST(cfg.prefix+"/api/mission_done", serveMissionDone(cfg, game))
	mux.POST(cfg.prefix+"/api/guess", serveGuess(cfg, game))
	mux.GET(cfg.prefix+"/api/leaderboard", serveLeaderboard(cfg, game))
	mux.GET(cfg.prefix+"/api/leaderboard/ws", serveLeaderboardFeed(cfg, game, hub))
	mux.POST(cfg.prefix+"/api/admin/reset", serveAdminReset(cfg, game))
	mux.GET(cfg.prefix+"/api/qr", serveQRCode(cfg, errs))
}
