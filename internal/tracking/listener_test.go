package tracking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dhifafaz/tactical-monitor/internal/adapters/memory"
	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
)

type fakeDialer struct {
	mu      sync.Mutex
	streams map[string]*fakeStream
	err     error
}

func (d *fakeDialer) Dial(ctx context.Context, deviceID, deviceType, caseID string) (RelayStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if s, ok := d.streams[deviceID]; ok {
		return s, nil
	}
	return &fakeStream{}, nil
}

type listenerFixture struct {
	registry  *Registry
	listener  *Listener
	offenders *memory.OffenderStore
	devices   *memory.DeviceStore
	pois      *memory.POIStore
	alerts    *memory.AlertStore
}

func newListenerFixture(dialer RelayDialer) *listenerFixture {
	f := &listenerFixture{
		registry:  NewRegistry(),
		offenders: memory.NewOffenderStore(),
		devices:   memory.NewDeviceStore(),
		pois:      memory.NewPOIStore(),
		alerts:    memory.NewAlertStore(),
	}
	f.listener = NewListener(f.registry, dialer, f.devices, f.offenders, f.alerts, f.pois, usecases.NewAlertEngine(), nil)
	return f
}

// waitRelaysDrained blocks until every consume goroutine has finished.
func waitRelaysDrained(t *testing.T, r *Registry) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.RelayCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("relay streams never drained")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func locationFrame(lat, lon float64) []byte {
	return []byte(`{"type":"location","data":{"parameters":{"location":{"lat":` +
		formatFloat(lat) + `,"lon":` + formatFloat(lon) +
		`},"user":{"name":"field-unit"}}}}`)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func TestStartDialFailure(t *testing.T) {
	f := newListenerFixture(&fakeDialer{err: errors.New("relay unreachable")})

	err := f.listener.Start(context.Background(), "device-001", "ankle-monitor", "case-1")
	if err == nil {
		t.Fatal("Start should fail when the dialer fails")
	}
	if !strings.Contains(err.Error(), "connect to GPS service") {
		t.Fatalf("error = %q, want connect to GPS service prefix", err)
	}
	if f.registry.RelayCount() != 0 {
		t.Fatal("no relay should be registered after a failed dial")
	}
}

func TestGeofenceViolationEndToEnd(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{locationFrame(-6.2100, 106.8500)}}
	f := newListenerFixture(&fakeDialer{streams: map[string]*fakeStream{"device-001": stream}})

	if err := f.devices.Create(ctx, &domain.Device{ID: "device-001", DeviceType: "ankle-monitor"}); err != nil {
		t.Fatal(err)
	}
	if err := f.offenders.Create(ctx, &domain.Offender{
		ID:       "offender-001",
		Name:     "Ahmad Wijaya",
		IDNumber: "3174051980120001",
		DeviceID: "device-001",
		GeofenceZones: []domain.GeofenceZone{{
			Name:         "School perimeter",
			Center:       domain.GeoPoint{Lat: -6.2100, Lon: 106.8500},
			RadiusMeters: 500,
			Kind:         domain.ZoneExclusion,
		}},
	}); err != nil {
		t.Fatal(err)
	}

	dash := &fakeConn{}
	f.registry.ConnectClient("dashboard-1", dash)

	if err := f.listener.Start(ctx, "device-001", "ankle-monitor", "case-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitRelaysDrained(t, f.registry)

	// The sample at the zone center raises exactly one violation, then
	// the location update follows it out.
	if got := dash.count(); got != 2 {
		t.Fatalf("dashboard got %d messages, want 2 (alert + location)", got)
	}
	alerts, err := f.alerts.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Fatalf("persisted alerts = %d, want 1", len(alerts))
	}
	if alerts[0].Kind != domain.AlertGeofenceViolation {
		t.Fatalf("alert kind = %s, want %s", alerts[0].Kind, domain.AlertGeofenceViolation)
	}
	if alerts[0].OffenderID != "offender-001" {
		t.Fatalf("alert offender = %s, want offender-001", alerts[0].OffenderID)
	}

	off, err := f.offenders.GetByID(ctx, "offender-001")
	if err != nil {
		t.Fatal(err)
	}
	if off.CurrentLocation == nil {
		t.Fatal("offender current location not updated")
	}
	if off.CurrentLocation.Lat != -6.2100 || off.CurrentLocation.Lon != 106.8500 {
		t.Fatalf("offender location = %v, want (-6.2100, 106.8500)", off.CurrentLocation.GeoPoint)
	}

	// Stream ended, so the device must be back offline with the last
	// sample retained.
	dev, err := f.devices.GetByID(ctx, "device-001")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Status != domain.DeviceOffline {
		t.Fatalf("device status = %s, want %s after stream close", dev.Status, domain.DeviceOffline)
	}
	if dev.LastLocation == nil {
		t.Fatal("device last location not recorded")
	}
}

func TestMalformedFramesAreSkipped(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"type":"heartbeat"}`),
		[]byte(`{"type":"location","data":{"parameters":{"location":{"lat":-6.2}}}}`), // missing lon
		locationFrame(-6.1751, 106.8650),
	}}
	f := newListenerFixture(&fakeDialer{streams: map[string]*fakeStream{"device-002": stream}})

	if err := f.devices.Create(ctx, &domain.Device{ID: "device-002", DeviceType: "ankle-monitor"}); err != nil {
		t.Fatal(err)
	}

	dash := &fakeConn{}
	f.registry.ConnectClient("dashboard-1", dash)

	if err := f.listener.Start(ctx, "device-002", "ankle-monitor", "case-2"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitRelaysDrained(t, f.registry)

	// Only the one valid frame produces a broadcast; no offender wears
	// this device, so no alert either.
	if got := dash.count(); got != 1 {
		t.Fatalf("dashboard got %d messages, want 1", got)
	}
}

func TestConcurrentRelaysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s1 := &fakeStream{frames: [][]byte{locationFrame(-6.2088, 106.8456)}}
	s2 := &fakeStream{frames: [][]byte{locationFrame(-6.1751, 106.8650)}}
	f := newListenerFixture(&fakeDialer{streams: map[string]*fakeStream{
		"device-001": s1,
		"device-002": s2,
	}})

	for _, id := range []string{"device-001", "device-002"} {
		if err := f.devices.Create(ctx, &domain.Device{ID: id, DeviceType: "ankle-monitor"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.offenders.Create(ctx, &domain.Offender{ID: "offender-001", Name: "A", IDNumber: "1", DeviceID: "device-001"}); err != nil {
		t.Fatal(err)
	}
	if err := f.offenders.Create(ctx, &domain.Offender{ID: "offender-002", Name: "B", IDNumber: "2", DeviceID: "device-002"}); err != nil {
		t.Fatal(err)
	}

	if err := f.listener.Start(ctx, "device-001", "ankle-monitor", "case-1"); err != nil {
		t.Fatalf("Start device-001: %v", err)
	}
	if err := f.listener.Start(ctx, "device-002", "ankle-monitor", "case-2"); err != nil {
		t.Fatalf("Start device-002: %v", err)
	}
	waitRelaysDrained(t, f.registry)

	off1, _ := f.offenders.GetByID(ctx, "offender-001")
	off2, _ := f.offenders.GetByID(ctx, "offender-002")
	if off1.CurrentLocation == nil || off2.CurrentLocation == nil {
		t.Fatal("both offenders should have a current location")
	}
	if off1.CurrentLocation.Lat != -6.2088 {
		t.Fatalf("offender-001 lat = %f, want -6.2088", off1.CurrentLocation.Lat)
	}
	if off2.CurrentLocation.Lat != -6.1751 {
		t.Fatalf("offender-002 lat = %f, want -6.1751", off2.CurrentLocation.Lat)
	}
}

func TestOnAlertHookFires(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{locationFrame(-6.2100, 106.8500)}}
	f := newListenerFixture(&fakeDialer{streams: map[string]*fakeStream{"device-001": stream}})

	_ = f.devices.Create(ctx, &domain.Device{ID: "device-001", DeviceType: "ankle-monitor"})
	_ = f.offenders.Create(ctx, &domain.Offender{
		ID: "offender-001", Name: "A", IDNumber: "1", DeviceID: "device-001",
		GeofenceZones: []domain.GeofenceZone{{
			Name: "zone", Center: domain.GeoPoint{Lat: -6.2100, Lon: 106.8500},
			RadiusMeters: 500, Kind: domain.ZoneExclusion,
		}},
	})

	var mu sync.Mutex
	var hooked []string
	f.listener.OnAlert(func(ctx context.Context, alert *domain.Alert) {
		mu.Lock()
		hooked = append(hooked, alert.ID)
		mu.Unlock()
	})

	if err := f.listener.Start(ctx, "device-001", "ankle-monitor", "case-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitRelaysDrained(t, f.registry)

	mu.Lock()
	defer mu.Unlock()
	if len(hooked) != 1 {
		t.Fatalf("hook fired %d times, want 1", len(hooked))
	}
}
