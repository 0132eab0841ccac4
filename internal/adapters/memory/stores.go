// Package memory provides mutex-guarded in-memory repository
// implementations. Each store owns its collection behind a single lock,
// so every read-modify-write from concurrent relay and session
// goroutines is a proper critical section. Used by tests and by
// single-node deployments that do not need Postgres.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ---------------------------------------------------------------------------
// Offenders
// ---------------------------------------------------------------------------

// OffenderStore implements ports.OffenderRepository.
type OffenderStore struct {
	mu        sync.RWMutex
	offenders map[string]domain.Offender
}

func NewOffenderStore() *OffenderStore {
	return &OffenderStore{offenders: make(map[string]domain.Offender)}
}

func (s *OffenderStore) Create(ctx context.Context, o *domain.Offender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offenders[o.ID] = cloneOffender(*o)
	return nil
}

func (s *OffenderStore) Update(ctx context.Context, o *domain.Offender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offenders[o.ID]; !ok {
		return ErrNotFound
	}
	s.offenders[o.ID] = cloneOffender(*o)
	return nil
}

func (s *OffenderStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offenders[id]; !ok {
		return ErrNotFound
	}
	delete(s.offenders, id)
	return nil
}

func (s *OffenderStore) GetByID(ctx context.Context, id string) (*domain.Offender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offenders[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneOffender(o)
	return &out, nil
}

// GetByDeviceID walks profiles in a stable order so that when the
// one-device-per-offender invariant has been violated upstream the same
// profile wins every time.
func (s *OffenderStore) GetByDeviceID(ctx context.Context, deviceID string) (*domain.Offender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.offenders))
	for id := range s.offenders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if o := s.offenders[id]; o.DeviceID == deviceID {
			out := cloneOffender(o)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *OffenderStore) List(ctx context.Context) ([]domain.Offender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Offender, 0, len(s.offenders))
	for _, o := range s.offenders {
		out = append(out, cloneOffender(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *OffenderStore) UpdateLocation(ctx context.Context, id string, loc *domain.LocationSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offenders[id]
	if !ok {
		return ErrNotFound
	}
	o.CurrentLocation = cloneSample(loc)
	s.offenders[id] = o
	return nil
}

// ---------------------------------------------------------------------------
// Devices
// ---------------------------------------------------------------------------

// DeviceStore implements ports.DeviceRepository.
type DeviceStore struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{devices: make(map[string]domain.Device)}
}

func (s *DeviceStore) Create(ctx context.Context, d *domain.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.ID]; ok {
		return errors.New("device already registered")
	}
	s.devices[d.ID] = cloneDevice(*d)
	return nil
}

func (s *DeviceStore) Update(ctx context.Context, d *domain.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.ID]; !ok {
		return ErrNotFound
	}
	s.devices[d.ID] = cloneDevice(*d)
	return nil
}

func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		return ErrNotFound
	}
	delete(s.devices, id)
	return nil
}

func (s *DeviceStore) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneDevice(d)
	return &out, nil
}

func (s *DeviceStore) List(ctx context.Context) ([]domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, cloneDevice(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *DeviceStore) UpdateStatus(ctx context.Context, id string, status domain.DeviceStatus, loc *domain.LocationSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	if loc != nil {
		d.LastLocation = cloneSample(loc)
		d.LastUpdate = loc.CapturedAt
	}
	s.devices[id] = d
	return nil
}

// ---------------------------------------------------------------------------
// POIs
// ---------------------------------------------------------------------------

// POIStore implements ports.POIRepository.
type POIStore struct {
	mu   sync.RWMutex
	pois map[string]domain.POI
}

func NewPOIStore() *POIStore {
	return &POIStore{pois: make(map[string]domain.POI)}
}

func (s *POIStore) Create(ctx context.Context, p *domain.POI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pois[p.ID] = *p
	return nil
}

func (s *POIStore) Update(ctx context.Context, p *domain.POI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pois[p.ID]; !ok {
		return ErrNotFound
	}
	s.pois[p.ID] = *p
	return nil
}

func (s *POIStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pois[id]; !ok {
		return ErrNotFound
	}
	delete(s.pois, id)
	return nil
}

func (s *POIStore) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pois[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *POIStore) List(ctx context.Context) ([]domain.POI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.POI, 0, len(s.pois))
	for _, p := range s.pois {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *POIStore) ListActive(ctx context.Context) ([]domain.POI, error) {
	all, _ := s.List(ctx)
	active := all[:0]
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// ---------------------------------------------------------------------------
// Alerts
// ---------------------------------------------------------------------------

// AlertStore implements ports.AlertRepository.
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]domain.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[string]domain.Alert)}
}

func (s *AlertStore) Create(ctx context.Context, a *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = *a
	return nil
}

func (s *AlertStore) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (s *AlertStore) List(ctx context.Context) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *AlertStore) Acknowledge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return ErrNotFound
	}
	a.Acknowledged = true
	s.alerts[id] = a
	return nil
}

func (s *AlertStore) CountUnacknowledged(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alerts {
		if !a.Acknowledged {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Clone helpers: stores hand out copies so callers never hold a
// reference into the guarded maps across a suspension point.
// ---------------------------------------------------------------------------

func cloneSample(s *domain.LocationSample) *domain.LocationSample {
	if s == nil {
		return nil
	}
	out := *s
	if s.Alt != nil {
		alt := *s.Alt
		out.Alt = &alt
	}
	return &out
}

func cloneOffender(o domain.Offender) domain.Offender {
	o.CurrentLocation = cloneSample(o.CurrentLocation)
	if o.GeofenceZones != nil {
		zones := make([]domain.GeofenceZone, len(o.GeofenceZones))
		copy(zones, o.GeofenceZones)
		o.GeofenceZones = zones
	}
	return o
}

func cloneDevice(d domain.Device) domain.Device {
	d.LastLocation = cloneSample(d.LastLocation)
	return d
}
