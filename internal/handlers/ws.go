package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/teamspace/collab-api/internal/events"
	"github.com/teamspace/collab-api/internal/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin must be checked in production
	},
}

// EventFeedHandler streams workspace domain events over WebSocket. Each
// connection receives the events of exactly one workspace; slow clients
// miss events rather than block the feed.
type EventFeedHandler struct {
	mu   sync.RWMutex
	subs map[uint64]map[*wsClient]struct{}
}

type wsClient struct {
	send chan events.Event
}

// NewEventFeedHandler creates the handler and subscribes it to the bus.
func NewEventFeedHandler(bus *events.Bus) *EventFeedHandler {
	h := &EventFeedHandler{
		subs: make(map[uint64]map[*wsClient]struct{}),
	}
	bus.Subscribe(h.broadcast)
	return h
}

func (h *EventFeedHandler) broadcast(e events.Event) {
	h.mu.RLock()
	clients := h.subs[e.WorkspaceID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.send <- e:
		default:
			// Client is not keeping up; drop the event for it.
		}
	}
}

func (h *EventFeedHandler) attach(workspaceID uint64, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[workspaceID] == nil {
		h.subs[workspaceID] = make(map[*wsClient]struct{})
	}
	h.subs[workspaceID][client] = struct{}{}
}

func (h *EventFeedHandler) detach(workspaceID uint64, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[workspaceID], client)
	if len(h.subs[workspaceID]) == 0 {
		delete(h.subs, workspaceID)
	}
}

// HandleEvents upgrades the connection and streams the workspace's events
// until the client disconnects. Must run behind RequireWorkspaceAccess.
func (h *EventFeedHandler) HandleEvents(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Workspace access required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	client := &wsClient{send: make(chan events.Event, 32)}
	h.attach(ws.ID, client)
	defer h.detach(ws.ID, client)

	// Reader goroutine: we never expect client messages, but reading is
	// required to observe close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e := <-client.send:
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
