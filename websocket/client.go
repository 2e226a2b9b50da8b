package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tourguard/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Buffer size for client send channel
	sendBufferSize = 64
)

const inboundTypePing = "ping"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one authority connection. The feed is server to client; the only
// inbound message honored is an application level ping.
type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	identity models.UserIdentity
	logger   logrus.FieldLogger

	// Buffered channel of outbound messages, closed by the hub
	send chan models.WSMessage

	connectedAt time.Time
}

type inboundMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
}

// ServeWS upgrades the request and attaches the connection to the hub. The
// caller has already authenticated identity.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, identity models.UserIdentity) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		conn:        conn,
		hub:         hub,
		identity:    identity,
		logger:      hub.logger.WithField("user_id", identity.ID),
		send:        make(chan models.WSMessage, sendBufferSize),
		connectedAt: time.Now(),
	}

	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
		c.logger.WithField("duration", time.Since(c.connectedAt).String()).Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("WebSocket read error")
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.WithError(err).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != inboundTypePing {
		c.reply(models.WSMessage{
			Type:      models.WSTypeError,
			Data:      map[string]string{"message": "Only ping messages are accepted"},
			Timestamp: time.Now(),
			RequestID: msg.RequestID,
		})
		return
	}

	c.reply(models.WSMessage{
		Type:      models.WSTypePong,
		Timestamp: time.Now(),
		RequestID: msg.RequestID,
	})
}

// reply goes through the hub so the send channel is only ever written while
// the hub still owns it.
func (c *Client) reply(message models.WSMessage) {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()

	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}
