package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// HandleWebSocket upgrades the request and registers the socket for userID,
// already authenticated by the route middleware.
func HandleWebSocket(c echo.Context, hub *Hub, userID string, allowedOrigins []string) error {
	upgrader := websocket.Upgrader{
		CheckOrigin: originChecker(allowedOrigins),
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{UserID: userID, Conn: conn}
	if !hub.add(client) {
		conn.Close()
		return nil
	}

	client.WriteJSON(Message{
		Type:    MessageTypeConnected,
		Message: "WebSocket connection established",
		UserID:  userID,
	})

	// Reads only detect disconnection; clients never send payloads.
	go func() {
		defer hub.remove(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

// originChecker accepts any origin when none are configured, which is the
// case for native mobile clients.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
