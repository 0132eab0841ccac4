package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/metrics"
)

// RelayDialer opens a streaming connection to the external GPS relay
// for one device.
type RelayDialer interface {
	Dial(ctx context.Context, deviceID, deviceType, caseID string) (RelayStream, error)
}

// ActivePOISource yields the POIs eligible for proximity evaluation.
// *usecases.POIService satisfies it.
type ActivePOISource interface {
	ListActive(ctx context.Context) ([]domain.POI, error)
}

// Listener bridges external GPS relay streams into the dashboard
// broadcast domain. Start spawns one consume goroutine per device;
// samples for one device are therefore processed strictly in
// stream-arrival order, while different devices interleave freely.
type Listener struct {
	registry  *Registry
	dialer    RelayDialer
	devices   ports.DeviceRepository
	offenders ports.OffenderRepository
	alerts    ports.AlertRepository
	pois      ActivePOISource
	engine    *usecases.AlertEngine
	publisher ports.EventPublisher
	// escalate, when set, is invoked with each persisted alert id so a
	// workflow can chase unacknowledged alerts. Failures are the
	// workflow engine's problem, never the stream's.
	escalate func(ctx context.Context, alert *domain.Alert)
}

// NewListener wires a Listener. publisher may be nil when no broker is
// configured.
func NewListener(
	registry *Registry,
	dialer RelayDialer,
	devices ports.DeviceRepository,
	offenders ports.OffenderRepository,
	alerts ports.AlertRepository,
	pois ActivePOISource,
	engine *usecases.AlertEngine,
	publisher ports.EventPublisher,
) *Listener {
	return &Listener{
		registry:  registry,
		dialer:    dialer,
		devices:   devices,
		offenders: offenders,
		alerts:    alerts,
		pois:      pois,
		engine:    engine,
		publisher: publisher,
	}
}

// OnAlert installs a hook called once per persisted alert.
func (l *Listener) OnAlert(fn func(ctx context.Context, alert *domain.Alert)) {
	l.escalate = fn
}

// Start dials the relay endpoint for a device and, on success, registers
// the stream and launches the consume loop. On dial failure the error is
// returned to the caller (the requesting session) and no loop starts.
// The ctx passed here belongs to the process, not to the requesting
// session: closing a dashboard session never cancels a running listener.
func (l *Listener) Start(ctx context.Context, deviceID, deviceType, caseID string) error {
	stream, err := l.dialer.Dial(ctx, deviceID, deviceType, caseID)
	if err != nil {
		metrics.RelayConnectErrors.Inc()
		return fmt.Errorf("connect to GPS service: %w", err)
	}

	l.registry.RegisterRelay(deviceID, stream)
	slog.Info("relay stream opened", "device_id", deviceID, "device_type", deviceType, "case_id", caseID)

	go l.consume(ctx, deviceID, stream)
	return nil
}

// consume reads relay frames until the stream closes. Malformed frames
// and unknown frame types are dropped without ending the loop; only a
// read error (transport closed) terminates it.
func (l *Listener) consume(ctx context.Context, deviceID string, stream RelayStream) {
	defer func() {
		if err := l.devices.UpdateStatus(ctx, deviceID, domain.DeviceOffline, nil); err != nil {
			slog.Warn("mark device offline", "device_id", deviceID, "error", err)
		}
		l.registry.DeregisterRelay(deviceID)
		slog.Info("relay stream closed", "device_id", deviceID)
	}()

	for {
		_, raw, err := stream.ReadMessage()
		if err != nil {
			return
		}

		var frame relayFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			slog.Debug("malformed relay frame dropped", "device_id", deviceID, "error", err)
			continue
		}
		if frame.Type != "location" {
			continue
		}
		loc := frame.Data.Parameters.Location
		if loc == nil || loc.Lat == nil || loc.Lon == nil {
			continue
		}

		l.handleSample(ctx, deviceID, loc, frame.Data.Parameters.User)
	}
}

func (l *Listener) handleSample(ctx context.Context, deviceID string, loc *relayLocation, user json.RawMessage) {
	now := time.Now()
	sample := domain.LocationSample{
		GeoPoint:   domain.GeoPoint{Lat: *loc.Lat, Lon: *loc.Lon},
		Alt:        loc.Alt,
		CapturedAt: now,
	}
	metrics.LocationsIngested.WithLabelValues(deviceID).Inc()

	if err := l.devices.UpdateStatus(ctx, deviceID, domain.DeviceOnline, &sample); err != nil {
		slog.Warn("update device location", "device_id", deviceID, "error", err)
	}

	offender, err := l.offenders.GetByDeviceID(ctx, deviceID)
	if err == nil && offender != nil {
		if err := l.offenders.UpdateLocation(ctx, offender.ID, &sample); err != nil {
			slog.Warn("update offender location", "offender_id", offender.ID, "error", err)
		}
		l.evaluate(ctx, offender, sample)
	}

	l.registry.Broadcast(locationUpdateEvent{
		Type:      "location_update",
		DeviceID:  deviceID,
		Location:  locationPayload{Lat: sample.Lat, Lon: sample.Lon, Alt: sample.Alt},
		User:      user,
		Timestamp: now.Format(time.RFC3339),
	})
	if l.publisher != nil {
		_ = l.publisher.PublishLocationUpdate(ctx, deviceID, &sample)
	}
}

func (l *Listener) evaluate(ctx context.Context, offender *domain.Offender, sample domain.LocationSample) {
	pois, err := l.pois.ListActive(ctx)
	if err != nil {
		slog.Warn("list active pois", "error", err)
		pois = nil
	}

	for _, alert := range l.engine.Evaluate(offender, sample, pois) {
		if err := l.alerts.Create(ctx, &alert); err != nil {
			slog.Error("persist alert", "offender_id", offender.ID, "error", err)
		}
		metrics.AlertsRaised.WithLabelValues(string(alert.Kind)).Inc()

		l.registry.Broadcast(alertEvent{Type: "alert", Alert: alert})
		if l.publisher != nil {
			_ = l.publisher.PublishAlert(ctx, &alert)
		}
		if l.escalate != nil {
			l.escalate(ctx, &alert)
		}
	}
}
