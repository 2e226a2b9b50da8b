package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tourguard/models"
)

// Hub fans alert events out to connected authority clients.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Outbound events
	broadcast chan models.WSMessage

	logger logrus.FieldLogger

	// Hub statistics
	stats HubStats

	mutex sync.RWMutex

	// Context for shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

type HubStats struct {
	TotalConnections  int64     `json:"totalConnections"`
	ActiveConnections int       `json:"activeConnections"`
	MessagesSent      int64     `json:"messagesSent"`
	MessagesDropped   int64     `json:"messagesDropped"`
	StartTime         time.Time `json:"startTime"`
}

func NewHub(logger logrus.FieldLogger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.WSMessage, 256),
		logger:     logger,
		stats: HubStats{
			StartTime: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (h *Hub) Run() {
	h.logger.Info("WebSocket Hub starting...")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)

		case <-h.ctx.Done():
			h.logger.Info("WebSocket Hub shutting down...")
			h.closeAll()
			return
		}
	}
}

// Shutdown stops Run and disconnects every client.
func (h *Hub) Shutdown() {
	h.cancel()
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.stats.ActiveConnections++
	h.stats.TotalConnections++

	h.logger.WithFields(logrus.Fields{
		"user_id": client.identity.ID,
		"role":    client.identity.Role,
		"active":  h.stats.ActiveConnections,
	}).Info("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.stats.ActiveConnections--

		h.logger.WithFields(logrus.Fields{
			"user_id": client.identity.ID,
			"active":  h.stats.ActiveConnections,
		}).Info("Client unregistered")
	}
}

func (h *Hub) broadcastToClients(message models.WSMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
			h.stats.MessagesSent++
		default:
			// Slow consumer; drop it rather than stall every other client.
			delete(h.clients, client)
			close(client.send)
			h.stats.ActiveConnections--
			h.stats.MessagesDropped++
			h.logger.WithField("user_id", client.identity.ID).Warn("Client send buffer full, disconnecting")
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.stats.ActiveConnections = 0
}

// BroadcastAlert queues an alert event and returns the number of clients
// connected at the time it was queued.
func (h *Hub) BroadcastAlert(eventType string, alert *models.Alert) int {
	message := models.WSMessage{
		Type:      eventType,
		Data:      models.NewWSAlertEvent(alert),
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.WithField("alert_id", alert.ID.Hex()).Warn("Broadcast channel full, dropping alert event")
		return 0
	}

	return h.ClientCount()
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetStats() HubStats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.stats
}
