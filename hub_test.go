/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFeedServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()

	store, err := newFileStore(cfg.dataDir)
	require.NoError(t, err)

	hub := newLeaderboardHub(cfg)
	go hub.run(t.Context())

	game := newGame(cfg, newRecords(cfg, store), hub)

	srv := httptest.NewServer(newRouter(cfg, game, hub, make(chan error, 64)))
	t.Cleanup(srv.Close)

	return srv
}

func feedURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/leaderboard/ws"
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) LeaderboardMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg LeaderboardMessage
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestLeaderboardFeed(t *testing.T) {
	cfg := testConfig(t)
	seedGame(t, cfg)
	srv := startFeedServer(t, cfg)

	conn, _, err := websocket.DefaultDialer.Dial(feedURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readLeaderboard(t, conn)
	assert.Equal(t, "leaderboard", msg.Type)
	require.Len(t, msg.Rows, 2)
	assert.False(t, msg.Rows[0].MissionDone)

	resp, err := http.Post(srv.URL+"/api/mission_done", "application/json", strings.NewReader(`{"player_id":"A"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg = readLeaderboard(t, conn)
	require.Len(t, msg.Rows, 2)
	assert.True(t, msg.Rows[0].MissionDone)
	assert.Equal(t, "A", msg.Rows[0].Display)
}

func TestLeaderboardFeedRejectsUnknownOrigin(t *testing.T) {
	cfg := testConfig(t)
	srv := startFeedServer(t, cfg)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")

	_, resp, err := websocket.DefaultDialer.Dial(feedURL(srv), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://lucasveiga02.github.io")

	conn, _, err := websocket.DefaultDialer.Dial(feedURL(srv), header)
	require.NoError(t, err)
	defer conn.Close()

	msg := readLeaderboard(t, conn)
	assert.Empty(t, msg.Rows)
}

func TestPublishDoesNotBlock(t *testing.T) {
	hub := newLeaderboardHub(testConfig(t))

	for range cap(hub.broadcast) + 4 {
		hub.publish(nil)
	}

	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}
