package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	EventExportProgress = "export_progress"
	EventNodesChanged   = "nodes_changed"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the envelope every message pushed to a client uses.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ExportProgress struct {
	ExportID string `json:"export_id"`
	Percent  int    `json:"percent"`
	Message  string `json:"message"`
}

type NodesChanged struct {
	Op       string  `json:"op"`
	FolderID *string `json:"folder_id,omitempty"`
}

// Hub fans events out to every connection of a user.
type Hub struct {
	clients    map[int64]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
	done       chan struct{}
	Register   chan *Client
	Unregister chan *Client
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger.With("component", "ws_hub"),
		done:       make(chan struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run serves registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	h.logger.Debug("client registered", "user_id", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if userClients, ok := h.clients[client.UserID]; ok {
		if _, ok := userClients[client]; ok {
			delete(userClients, client)
			close(client.send)
			if len(userClients) == 0 {
				delete(h.clients, client.UserID)
			}
			h.logger.Debug("client unregistered", "user_id", client.UserID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.done)
	for userID, userClients := range h.clients {
		for client := range userClients {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

// ClientCount returns how many connections a user has open.
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) PublishEvent(userID int64, event Event) {
	eventData, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if userClients, ok := h.clients[userID]; ok {
		for client := range userClients {
			select {
			case client.send <- eventData:
			default:
				h.logger.Warn("client send buffer is full, dropping event", "user_id", userID, "type", event.Type)
			}
		}
	}
}

func (h *Hub) PublishExportProgress(userID int64, exportID string, percent int, message string) {
	h.PublishEvent(userID, Event{
		Type:    EventExportProgress,
		Payload: ExportProgress{ExportID: exportID, Percent: percent, Message: message},
	})
}

func (h *Hub) PublishNodesChanged(userID int64, op string, folderID *string) {
	h.PublishEvent(userID, Event{
		Type:    EventNodesChanged,
		Payload: NodesChanged{Op: op, FolderID: folderID},
	})
}
