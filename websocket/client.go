package websocket

import (
	"alertrelay/models"
	"alertrelay/utils"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for client send channel
	sendBufferSize = 256
)

type Client struct {
	// WebSocket connection
	conn *websocket.Conn

	// Connection metadata
	id          string
	connectedAt time.Time
	ipAddress   string
	userAgent   string

	// Buffered channel of encoded outbound messages. Only the hub closes it.
	send chan []byte

	hub *Hub

	rateLimiter *utils.RateLimiter
}

func NewClient(conn *websocket.Conn, hub *Hub, r *http.Request) *Client {
	return &Client{
		conn:        conn,
		hub:         hub,
		id:          utils.GenerateUUID(),
		connectedAt: time.Now(),
		ipAddress:   getClientIP(r),
		userAgent:   r.UserAgent(),
		send:        make(chan []byte, sendBufferSize),
		rateLimiter: utils.NewRateLimiter(hub.eventsPerMinute, time.Minute),
	}
}

// ReadPump forwards inbound frames to the hub until the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		logrus.WithFields(logrus.Fields{
			"connId":   c.id,
			"duration": time.Since(c.connectedAt).Round(time.Second).String(),
		}).Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageData, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("connId", c.id).Errorf("WebSocket error: %v", err)
			}
			return
		}

		// Over-budget events are dropped without telling the client.
		if !c.rateLimiter.Allow() {
			logrus.WithField("connId", c.id).Debug("Inbound rate limit exceeded")
			continue
		}

		request, ok := parseRequest(messageData)
		if !ok {
			logrus.WithField("connId", c.id).Debug("Dropping unparseable frame")
			continue
		}

		select {
		case c.hub.inbound <- inboundEvent{client: c, request: request}:
		case <-c.hub.done:
			return
		}
	}
}

// WritePump drains the send channel and keeps the connection alive with pings.
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

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("connId", c.id).Errorf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.WithField("connId", c.id).Warn("Ping failed, disconnecting")
				return
			}
		}
	}
}

// parseRequest accepts {"type": ..., "data": ..., "requestId": ...}. A frame with no
// type is rejected.
func parseRequest(messageData []byte) (models.WSRequest, bool) {
	var request models.WSRequest
	if err := json.Unmarshal(messageData, &request); err != nil {
		return models.WSRequest{}, false
	}
	if request.Type == "" {
		return models.WSRequest{}, false
	}
	return request, true
}

func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
