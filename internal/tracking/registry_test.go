package tracking

import (
	"errors"
	"sync"
	"testing"
)

// fakeConn records every JSON write. failWrites makes WriteJSON error
// without recording.
type fakeConn struct {
	mu         sync.Mutex
	messages   []interface{}
	failWrites bool
	closed     bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("connection reset")
	}
	f.messages = append(f.messages, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeStream struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeStream) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return 0, nil, errors.New("stream closed")
	}
	frame := f.frames[0]
	f.frames = f.frames[1:]
	return 1, frame, nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestBroadcastNoClients(t *testing.T) {
	r := NewRegistry()
	// Must not panic or block with nobody connected.
	r.Broadcast(map[string]string{"type": "noop"})

	if got := r.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0", got)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r.ConnectClient("a", a)
	r.ConnectClient("b", b)

	r.Broadcast(map[string]string{"type": "ping"})

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", a.count(), b.count())
	}
}

func TestBroadcastSurvivesDeadConnection(t *testing.T) {
	r := NewRegistry()
	dead := &fakeConn{failWrites: true}
	live := &fakeConn{}
	r.ConnectClient("dead", dead)
	r.ConnectClient("live", live)

	r.Broadcast(map[string]string{"type": "ping"})

	if live.count() != 1 {
		t.Fatalf("live client got %d messages, want 1", live.count())
	}
	// A failed write must not prune the registration.
	if got := r.ClientCount(); got != 2 {
		t.Fatalf("ClientCount = %d, want 2", got)
	}
}

func TestDisconnectRemovesFromBroadcast(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r.ConnectClient("a", a)
	r.ConnectClient("b", b)

	r.DisconnectClient("a")
	r.Broadcast(map[string]string{"type": "ping"})

	if a.count() != 0 {
		t.Fatalf("disconnected client got %d messages, want 0", a.count())
	}
	if b.count() != 1 {
		t.Fatalf("remaining client got %d messages, want 1", b.count())
	}
}

func TestDisconnectDropsSameKeyRelayWithoutClosing(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}
	stream := &fakeStream{}
	r.ConnectClient("shared-id", conn)
	r.RegisterRelay("shared-id", stream)

	r.DisconnectClient("shared-id")

	if got := r.RelayCount(); got != 0 {
		t.Fatalf("RelayCount = %d, want 0", got)
	}
	// The consume goroutine owns the stream; disconnect must not close it.
	if stream.closed {
		t.Fatal("relay stream was closed on client disconnect")
	}
}

func TestConnectClientReplacesEarlierRegistration(t *testing.T) {
	r := NewRegistry()
	old, replacement := &fakeConn{}, &fakeConn{}
	r.ConnectClient("c", old)
	r.ConnectClient("c", replacement)

	r.Broadcast(map[string]string{"type": "ping"})

	if old.count() != 0 {
		t.Fatalf("replaced connection got %d messages, want 0", old.count())
	}
	if replacement.count() != 1 {
		t.Fatalf("replacement got %d messages, want 1", replacement.count())
	}
	if old.closed {
		t.Fatal("replaced connection must not be closed by the registry")
	}
}

func TestSendToClientUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.SendToClient("ghost", map[string]string{"type": "ping"})
}

func TestDeregisterRelay(t *testing.T) {
	r := NewRegistry()
	r.RegisterRelay("d1", &fakeStream{})
	r.RegisterRelay("d2", &fakeStream{})

	r.DeregisterRelay("d1")

	if got := r.RelayCount(); got != 1 {
		t.Fatalf("RelayCount = %d, want 1", got)
	}
	// Absent id is a no-op.
	r.DeregisterRelay("d1")
}
