package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/vladimirvolkov/palmbreak/internal/middleware"
)

// maxMessageBytes bounds incoming frames; hand samples and actions are tiny.
const maxMessageBytes = 1024

// RoomCreator starts a single-player game for a freshly accepted connection.
type RoomCreator interface {
	CreateRoom(conn *Conn)
}

// HubStats holds live server metrics.
type HubStats struct {
	ActiveRooms      int64  `json:"activeRooms"`
	TotalConnections uint64 `json:"totalConnections"`
	RejectedFull     uint64 `json:"rejectedFull"`
}

// Hub accepts websocket upgrades and gives every player their own room.
type Hub struct {
	creator  RoomCreator
	nextID   atomic.Uint64
	maxRooms int64

	activeRooms      atomic.Int64
	totalConnections atomic.Uint64
	rejectedFull     atomic.Uint64

	limiter        *middleware.IPRateLimiter
	originPatterns []string
}

func NewHub(creator RoomCreator, limiter *middleware.IPRateLimiter, originPatterns []string, maxRooms int) *Hub {
	return &Hub{
		creator:        creator,
		limiter:        limiter,
		originPatterns: originPatterns,
		maxRooms:       int64(maxRooms),
	}
}

// Stats returns a snapshot of current server metrics.
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveRooms:      h.activeRooms.Load(),
		TotalConnections: h.totalConnections.Load(),
		RejectedFull:     h.rejectedFull.Load(),
	}
}

// RoomEnded decrements the active room counter. Call when a room's loop exits.
func (h *Hub) RoomEnded() {
	h.activeRooms.Add(-1)
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	release := func() {
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
	}

	acceptOpts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		acceptOpts.OriginPatterns = h.originPatterns
	}

	c, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		release()
		log.Printf("ws accept error: %v", err)
		return
	}
	c.SetReadLimit(maxMessageBytes)

	// Reserve a room slot before any game state exists.
	if n := h.activeRooms.Add(1); h.maxRooms > 0 && n > h.maxRooms {
		h.activeRooms.Add(-1)
		h.rejectedFull.Add(1)
		release()
		log.Printf("max rooms reached, rejecting %s", ip)
		c.Close(websocket.StatusTryAgainLater, "server full")
		return
	}

	h.totalConnections.Add(1)
	id := fmt.Sprintf("player-%d", h.nextID.Add(1))
	conn := NewConn(c, id, ip, h.limiter)
	log.Printf("new connection: %s from %s (total: %d)", id, ip, h.totalConnections.Load())

	// The connection outlives the HTTP handler's request context.
	go conn.WriteLoop(context.Background())

	h.creator.CreateRoom(conn)

	// The handler must outlive the game so the hijacked TCP connection stays open.
	<-conn.Done()
	release()
	log.Printf("connection closed: %s", id)
}
