package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// NewUpgrader accepts browser origins from allowedOrigins. Requests without an
// Origin header (sensors, native apps) are always accepted, as is everything when
// the list contains "*".
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAll || allowed[strings.TrimRight(origin, "/")] {
				return true
			}
			logrus.Debugf("WebSocket connection rejected for origin: %s", origin)
			return false
		},
	}
}

// ServeWS upgrades the request and starts the client's pumps.
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, hub, r)
	if !hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()

	logrus.WithFields(logrus.Fields{
		"connId":    client.id,
		"ip":        client.ipAddress,
		"userAgent": client.userAgent,
	}).Info("WebSocket connection established")
	return nil
}
