package tracking

import (
	"sync"

	"github.com/dhifafaz/tactical-monitor/internal/pkg/metrics"
)

// Conn is the write side of a dashboard connection. Both
// gofiber/websocket and gorilla/websocket conns satisfy it, as do test
// fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// RelayStream is the read side of an external GPS relay connection.
type RelayStream interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Registry owns every live dashboard connection and every live external
// relay stream. All access to the two maps is serialized through one
// mutex; the same mutex also serializes writes, so no two goroutines
// ever write the same connection concurrently.
type Registry struct {
	mu      sync.Mutex
	clients map[string]Conn
	relays  map[string]RelayStream
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Conn),
		relays:  make(map[string]RelayStream),
	}
}

// ConnectClient registers a dashboard connection under clientID. A later
// call for the same id replaces the earlier registration; the replaced
// connection is NOT closed here, that stays the caller's responsibility.
func (r *Registry) ConnectClient(clientID string, conn Conn) {
	r.mu.Lock()
	r.clients[clientID] = conn
	metrics.ActiveDashboardClients.Set(float64(len(r.clients)))
	r.mu.Unlock()
}

// DisconnectClient removes the client registration and any relay stream
// registered under the same id (a session that registered a device under
// its own id drops it with the session). No-op when absent. The relay
// stream itself is not closed: its listener goroutine owns the stream
// and keeps running until the stream ends on its own.
func (r *Registry) DisconnectClient(clientID string) {
	r.mu.Lock()
	delete(r.clients, clientID)
	delete(r.relays, clientID)
	metrics.ActiveDashboardClients.Set(float64(len(r.clients)))
	r.mu.Unlock()
}

// RegisterRelay records a live external relay stream for a device.
func (r *Registry) RegisterRelay(deviceID string, stream RelayStream) {
	r.mu.Lock()
	r.relays[deviceID] = stream
	metrics.ActiveRelayStreams.Set(float64(len(r.relays)))
	r.mu.Unlock()
}

// DeregisterRelay drops the relay registration for a device. No-op when
// absent.
func (r *Registry) DeregisterRelay(deviceID string) {
	r.mu.Lock()
	delete(r.relays, deviceID)
	metrics.ActiveRelayStreams.Set(float64(len(r.relays)))
	r.mu.Unlock()
}

// Broadcast delivers a message to every registered dashboard connection.
// Delivery is fire-and-forget per recipient: a dead connection neither
// aborts the remaining deliveries nor surfaces to the caller, and it is
// not pruned here. DisconnectClient is the only removal path.
func (r *Registry) Broadcast(message interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.clients {
		if err := conn.WriteJSON(message); err != nil {
			metrics.BroadcastFailures.Inc()
		}
	}
}

// SendToClient delivers a message to exactly one client. No-op when the
// client is not registered; a write failure is swallowed the same way
// Broadcast swallows them.
func (r *Registry) SendToClient(clientID string, message interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.clients[clientID]; ok {
		if err := conn.WriteJSON(message); err != nil {
			metrics.BroadcastFailures.Inc()
		}
	}
}

// ClientCount reports the number of registered dashboard connections.
func (r *Registry) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// RelayCount reports the number of registered relay streams.
func (r *Registry) RelayCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.relays)
}
