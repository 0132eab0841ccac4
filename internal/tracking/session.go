package tracking

import (
	"context"
	"encoding/json"
	"log/slog"
)

// SessionConn is the full duplex surface of a dashboard connection.
type SessionConn interface {
	Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// Session is the per-client control loop for one dashboard connection.
// It registers the connection, dispatches inbound messages, and cleans
// up on disconnect. Listeners it spawns outlive it.
type Session struct {
	clientID string
	conn     SessionConn
	registry *Registry
	listener *Listener
}

// NewSession creates a session for an accepted dashboard connection.
func NewSession(clientID string, conn SessionConn, registry *Registry, listener *Listener) *Session {
	return &Session{clientID: clientID, conn: conn, registry: registry, listener: listener}
}

// Run drives the session until the connection closes. A panic while
// handling a message is logged and treated as a disconnect: the registry
// and the other sessions are unaffected.
func (s *Session) Run(ctx context.Context) {
	s.registry.ConnectClient(s.clientID, s.conn)
	slog.Info("dashboard client connected", "client_id", s.clientID)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("dashboard session panic", "client_id", s.clientID, "panic", r)
		}
		s.registry.DisconnectClient(s.clientID)
		slog.Info("dashboard client disconnected", "client_id", s.clientID)
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Debug("malformed dashboard message dropped", "client_id", s.clientID, "error", err)
			continue
		}

		switch msg.Type {
		case "register_device":
			s.handleRegisterDevice(ctx, msg)
		case "location_update":
			// Pass-through path for clients reporting location directly:
			// relay the payload verbatim to every dashboard client.
			s.registry.Broadcast(json.RawMessage(raw))
		default:
			// Unknown or missing type is not an error.
		}
	}
}

func (s *Session) handleRegisterDevice(ctx context.Context, msg inboundMessage) {
	if err := s.listener.Start(ctx, msg.DeviceID, msg.DeviceType, msg.CaseID); err != nil {
		slog.Warn("device registration failed", "client_id", s.clientID, "device_id", msg.DeviceID, "error", err)
		s.registry.SendToClient(s.clientID, errorEvent{
			Type:    "error",
			Message: "Failed to connect to GPS service: " + err.Error(),
		})
		return
	}

	s.registry.SendToClient(s.clientID, registrationSuccessEvent{
		Type:     "registration_success",
		DeviceID: msg.DeviceID,
		Message:  "Connected to GPS service",
	})
}
