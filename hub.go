/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// LeaderboardMessage is the only thing the live feed ever sends.
type LeaderboardMessage struct {
	Type string           `json:"type"` // "leaderboard"
	Rows []LeaderboardRow `json:"rows"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

// leaderboardHub fans leaderboard snapshots out to every connected viewer.
type leaderboardHub struct {
	cfg *Config

	clients map[*Client]bool

	register  chan *Client
	unreg     chan *Client
	broadcast chan []LeaderboardRow
	done      chan struct{}
}

func newLeaderboardHub(cfg *Config) *leaderboardHub {
	return &leaderboardHub{
		cfg:       cfg,
		clients:   make(map[*Client]bool),
		register:  make(chan *Client),
		unreg:     make(chan *Client),
		broadcast: make(chan []LeaderboardRow, 16),
		done:      make(chan struct{}),
	}
}

func (h *leaderboardHub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()

			return

		case c := <-h.register:
			h.clients[c] = true
			logf(h.cfg, "SERVE: Leaderboard viewer connected (%d watching)", len(h.clients))

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case rows := <-h.broadcast:
			msg := LeaderboardMessage{Type: "leaderboard", Rows: rows}

			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// publish queues a snapshot for broadcast. Snapshots are dropped rather than
// blocking a request when the hub is backed up; the next one supersedes them.
func (h *leaderboardHub) publish(rows []LeaderboardRow) {
	select {
	case h.broadcast <- rows:
	default:
		logf(h.cfg, "SERVE: Leaderboard feed backed up, dropping update")
	}
}

func (h *leaderboardHub) closeAll() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func newUpgrader(cfg *Config) *websocket.Upgrader {
	allowed := cfg.origins()

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

func serveLeaderboardFeed(cfg *Config, game *Game, hub *leaderboardHub) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		rows, err := game.Leaderboard(r.Context())
		if err != nil {
			writeError(cfg, w, err)

			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade from %s failed: %v", realIP(r), err)

			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		client.send <- LeaderboardMessage{Type: "leaderboard", Rows: rows}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()

			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

// readPump only watches for the viewer going away; viewers never send
// anything meaningful.
func (c *Client) readPump(h *leaderboardHub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
