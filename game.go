/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
)

// placeholder is shown in place of a mission or target the table leaves blank.
const placeholder = "—"

type PlayerRef struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

type MissionText struct {
	Text string `json:"text"`
}

type TargetRef struct {
	Display string `json:"display"`
}

// MissionView is what a killer sees when they look up their assignment.
type MissionView struct {
	Player      PlayerRef   `json:"player"`
	Mission     MissionText `json:"mission"`
	Target      TargetRef   `json:"target"`
	MissionDone bool        `json:"mission_done"`
}

type LeaderboardRow struct {
	Display            string `json:"display"`
	Points             int    `json:"points"`
	MissionDone        bool   `json:"mission_done"`
	DiscoveredByTarget bool   `json:"discovered_by_target"`
	FoundKiller        bool   `json:"found_killer"`
	GuessKillerDisplay string `json:"guess_killer_display"`
	GuessMission       string `json:"guess_mission"`
}

// Game applies player and admin actions to the stored documents. Every
// operation is a full load, change and save of the progress document.
type Game struct {
	cfg     *Config
	records *Records
	hub     *leaderboardHub
}

func newGame(cfg *Config, records *Records, hub *leaderboardHub) *Game {
	return &Game{
		cfg:     cfg,
		records: records,
		hub:     hub,
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// Mission looks up the assignment for the named killer. A player seen for
// the first time gets a default progress entry, which is saved even though
// this is a read.
func (g *Game) Mission(ctx context.Context, name string) (*MissionView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player", ErrMissingField)
	}

	assignments, err := g.records.Assignments(ctx)
	if err != nil {
		return nil, err
	}

	key, assignment, err := assignments.resolveKiller(name)
	if err != nil {
		return nil, err
	}

	var (
		done    bool
		created bool
	)

	err = g.records.UpdateProgress(ctx, func(p Progress) (bool, error) {
		var state *PlayerState
		state, created = p.entry(key)
		done = state.MissionDone

		return created, nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		logf(g.cfg, "GAMES: First visit from %q", key)
		g.publish(ctx)
	}

	return &MissionView{
		Player:      PlayerRef{ID: key, Display: key},
		Mission:     MissionText{Text: orPlaceholder(assignment.Mission)},
		Target:      TargetRef{Display: orPlaceholder(assignment.Target)},
		MissionDone: done,
	}, nil
}

// MarkMissionDone latches the player's mission as done. Repeating it changes
// nothing but the save.
func (g *Game) MarkMissionDone(ctx context.Context, playerID string) error {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return fmt.Errorf("%w: player_id", ErrMissingField)
	}

	err := g.records.UpdateProgress(ctx, func(p Progress) (bool, error) {
		state, _ := p.entry(playerID)
		state.MissionDone = true

		return true, nil
	})
	if err != nil {
		return err
	}

	logf(g.cfg, "GAMES: %q completed their mission", playerID)
	g.publish(ctx)

	return nil
}

// SubmitGuess records who the player thinks is hunting them, replacing any
// earlier accusation. The accused name is stored as typed.
func (g *Game) SubmitGuess(ctx context.Context, playerID, accused, mission string) error {
	playerID = strings.TrimSpace(playerID)
	accused = strings.TrimSpace(accused)
	mission = strings.TrimSpace(mission)

	switch {
	case playerID == "":
		return fmt.Errorf("%w: player_id", ErrMissingField)
	case accused == "":
		return fmt.Errorf("%w: accused_killer_id", ErrMissingField)
	case mission == "":
		return fmt.Errorf("%w: guessed_mission", ErrMissingField)
	}

	err := g.records.UpdateProgress(ctx, func(p Progress) (bool, error) {
		state, _ := p.entry(playerID)
		state.Guess = &GuessRecord{
			KillerID:      accused,
			KillerDisplay: accused,
			Mission:       mission,
		}

		return true, nil
	})
	if err != nil {
		return err
	}

	logf(g.cfg, "GAMES: %q accused %q", playerID, accused)
	g.publish(ctx)

	return nil
}

// Leaderboard lists every roster player in roster order. Players with no
// progress yet show defaults, which are not saved.
func (g *Game) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	roster, err := g.records.Roster(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := g.records.Progress(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(roster))
	for _, player := range roster {
		if player.ID == "" {
			continue
		}

		state := progress[player.ID]
		if state == nil {
			state = &PlayerState{}
		}

		row := LeaderboardRow{
			Display:            player.ID,
			Points:             state.Points,
			MissionDone:        state.MissionDone,
			DiscoveredByTarget: state.DiscoveredByTarget,
		}
		if state.Guess != nil {
			row.FoundKiller = true
			row.GuessKillerDisplay = state.Guess.KillerDisplay
			row.GuessMission = state.Guess.Mission
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Reset throws away all progress and starts every roster player over. It
// returns the number of players in the new progress document.
func (g *Game) Reset(ctx context.Context, password string) (int, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.cfg.adminPassword)) != 1 {
		return 0, ErrUnauthorized
	}

	roster, err := g.records.Roster(ctx)
	if err != nil {
		return 0, err
	}

	progress := make(Progress, len(roster))
	for _, player := range roster {
		if player.ID == "" {
			continue
		}
		progress[player.ID] = &PlayerState{}
	}

	if err := g.records.ReplaceProgress(ctx, progress); err != nil {
		return 0, err
	}

	logf(g.cfg, "GAMES: Progress reset for %d players", len(progress))
	g.publish(ctx)

	return len(progress), nil
}

// publish pushes the current leaderboard to live viewers, if any.
func (g *Game) publish(ctx context.Context) {
	if g.hub == nil {
		return
	}

	rows, err := g.Leaderboard(ctx)
	if err != nil {
		logf(g.cfg, "ERROR: Leaderboard refresh failed: %v", err)

		return
	}

	g.hub.publish(rows)
}
