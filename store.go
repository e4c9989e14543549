/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore loads and saves whole JSON documents by name.
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// Player is one roster entry. Whatever else the roster file holds for the
// player is kept and written back untouched.
type Player struct {
	ID string

	raw json.RawMessage
}

func (p *Player) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var id string
	if raw, ok := fields["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}

	p.ID = id
	p.raw = append(json.RawMessage(nil), data...)

	return nil
}

func (p Player) MarshalJSON() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}

	return json.Marshal(struct {
		ID string `json:"id"`
	}{p.ID})
}

type Roster []Player

// GuessRecord is a player's accusation: who they think is hunting them, and
// with which mission.
type GuessRecord struct {
	KillerID      string `json:"killer_id"`
	KillerDisplay string `json:"killer_display"`
	Mission       string `json:"mission"`
}

type PlayerState struct {
	MissionDone        bool         `json:"mission_done"`
	Guess              *GuessRecord `json:"guess"`
	Points             int          `json:"points"`
	DiscoveredByTarget bool         `json:"discovered_by_target"`
}

// Progress maps a player's canonical name to their state.
type Progress map[string]*PlayerState

// entry returns the state for key, creating a default one if the player has
// none yet. created reports whether the map changed.
func (p Progress) entry(key string) (state *PlayerState, created bool) {
	if state, ok := p[key]; ok && state != nil {
		return state, false
	}

	state = &PlayerState{}
	p[key] = state

	return state, true
}

// Records gives typed access to the three game documents. Missing documents
// read as empty. The progress document is only ever written while holding
// progressMu.
type Records struct {
	cfg   *Config
	store DocumentStore

	playersDoc     string
	assignmentsDoc string
	progressDoc    string

	progressMu sync.Mutex
}

func newRecords(cfg *Config, store DocumentStore) *Records {
	return &Records{
		cfg:            cfg,
		store:          store,
		playersDoc:     cfg.playersFile,
		assignmentsDoc: cfg.assignmentsFile,
		progressDoc:    cfg.stateFile,
	}
}

func (r *Records) load(ctx context.Context, name string, v any) error {
	data, err := r.store.Load(ctx, name)
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("load %s: %w", name, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	return nil
}

func (r *Records) save(ctx context.Context, name string, v any) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := r.store.Save(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	logf(r.cfg, "STORE: Saved %s (%s)", name, humanReadableSize(int64(buf.Len())))

	return nil
}

func (r *Records) Roster(ctx context.Context) (Roster, error) {
	roster := Roster{}
	if err := r.load(ctx, r.playersDoc, &roster); err != nil {
		return nil, err
	}
	if roster == nil {
		roster = Roster{}
	}

	return roster, nil
}

func (r *Records) Assignments(ctx context.Context) (Assignments, error) {
	assignments := newKeyedAssignments()
	if err := r.load(ctx, r.assignmentsDoc, &assignments); err != nil {
		return Assignments{}, err
	}

	return assignments, nil
}

func (r *Records) loadProgress(ctx context.Context) (Progress, error) {
	progress := Progress{}
	if err := r.load(ctx, r.progressDoc, &progress); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = Progress{}
	}

	return progress, nil
}

// Progress returns a snapshot of the progress document.
func (r *Records) Progress(ctx context.Context) (Progress, error) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()

	return r.loadProgress(ctx)
}

// UpdateProgress runs one read-modify-write cycle on the progress document.
// fn reports whether it changed anything; the document is saved only then.
func (r *Records) UpdateProgress(ctx context.Context, fn func(Progress) (bool, error)) error {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()

	progress, err := r.loadProgress(ctx)
	if err != nil {
		return err
	}

	changed, err := fn(progress)
	if err != nil || !changed {
		return err
	}

	return r.save(ctx, r.progressDoc, progress)
}

// ReplaceProgress overwrites the progress document wholesale.
func (r *Records) ReplaceProgress(ctx context.Context, progress Progress) error {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()

	return r.save(ctx, r.progressDoc, progress)
}
