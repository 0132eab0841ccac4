package tracking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketDialer dials the external GPS relay over WebSocket. The
// relay addresses a device stream with query parameters on a fixed base
// URL: <base>?id=<deviceID>&deviceType=<type>&caseId=<case>.
type WebsocketDialer struct {
	BaseURL        string
	ConnectTimeout time.Duration
}

// Dial opens the stream for one device. The handshake timeout is a
// hardening addition; once established the stream has no read deadline
// and relies on transport closure to end the listener.
func (d *WebsocketDialer) Dial(ctx context.Context, deviceID, deviceType, caseID string) (RelayStream, error) {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("relay base url: %w", err)
	}
	q := u.Query()
	q.Set("id", deviceID)
	q.Set("deviceType", deviceType)
	q.Set("caseId", caseID)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: d.ConnectTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial relay %s: %w (status %d)", u.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial relay %s: %w", u.Host, err)
	}
	return conn, nil
}
