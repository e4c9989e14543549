/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPassword = "hunter2"

func testConfig(t *testing.T) *Config {
	t.Helper()

	return &Config{
		adminPassword:   testPassword,
		allowedOrigins:  []string{"https://lucasveiga02.github.io/killergame-frontend/"},
		assignmentsFile: "assignments.json",
		bind:            "127.0.0.1",
		dataDir:         t.TempDir(),
		frontendURL:     "https://lucasveiga02.github.io/killergame-frontend/",
		playersFile:     "players.json",
		port:            8080,
		stateFile:       "state.json",
		storage:         storageFile,
	}
}

func writeDoc(t *testing.T, cfg *Config, name, body string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.dataDir, name), []byte(body), 0o644))
}

func readProgress(t *testing.T, cfg *Config) Progress {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(cfg.dataDir, cfg.stateFile))
	require.NoError(t, err)

	var progress Progress
	require.NoError(t, json.Unmarshal(data, &progress))

	return progress
}

func stateExists(t *testing.T, cfg *Config) bool {
	t.Helper()

	_, err := os.Stat(filepath.Join(cfg.dataDir, cfg.stateFile))

	return err == nil
}

func newTestGame(t *testing.T, cfg *Config) *Game {
	t.Helper()

	store, err := newFileStore(cfg.dataDir)
	require.NoError(t, err)

	return newGame(cfg, newRecords(cfg, store), nil)
}

// seedGame writes the two-player game used across the api tests.
func seedGame(t *testing.T, cfg *Config) {
	t.Helper()

	writeDoc(t, cfg, cfg.playersFile, `[{"id":"A"},{"id":"B"}]`)
	writeDoc(t, cfg, cfg.assignmentsFile, `{"A":{"target":"B","mission":"steal pen"}}`)
}

type testServer struct {
	cfg     *Config
	handler http.Handler
}

func newTestServer(t *testing.T, cfg *Config) *testServer {
	t.Helper()

	errs := make(chan error, 64)

	return &testServer{
		cfg:     cfg,
		handler: newRouter(cfg, newTestGame(t, cfg), newLeaderboardHub(cfg), errs),
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return body
}
