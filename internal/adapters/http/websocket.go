package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/websocket/v2"

	"github.com/dhifafaz/tactical-monitor/internal/tracking"
)

// TrackingWebSocketHandler upgrades a dashboard connection and hands it
// to a tracking session. The client id comes from the URL path; a second
// connection with the same id replaces the first in the registry.
func TrackingWebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		clientID := c.Params("client_id")
		if clientID == "" {
			slog.Warn("ws connection rejected: missing client id", "remote", c.RemoteAddr().String())
			_ = c.Close()
			return
		}

		session := tracking.NewSession(clientID, c, deps.Registry, deps.Listener)
		session.Run(context.Background())
		_ = c.Close()
	}
}
