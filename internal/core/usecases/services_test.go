package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dhifafaz/tactical-monitor/internal/adapters/memory"
	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
)

// fakeCache is an in-process CacheService with hit counting.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestDeviceRegisterEnforcesOneDevicePerOffender(t *testing.T) {
	ctx := context.Background()
	devices := memory.NewDeviceStore()
	offenders := memory.NewOffenderStore()
	svc := usecases.NewDeviceService(devices, offenders)

	if err := offenders.Create(ctx, &domain.Offender{ID: "off-1", Name: "A", IDNumber: "1"}); err != nil {
		t.Fatal(err)
	}

	first := &domain.Device{ID: "dev-1", DeviceType: "ankle-monitor", OffenderID: "off-1"}
	if err := svc.Register(ctx, first); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	second := &domain.Device{ID: "dev-2", DeviceType: "wristband", OffenderID: "off-1"}
	err := svc.Register(ctx, second)
	if !errors.Is(err, usecases.ErrOffenderAlreadyAssigned) {
		t.Fatalf("second registration err = %v, want ErrOffenderAlreadyAssigned", err)
	}

	// The back reference lands on the offender profile.
	off, err := offenders.GetByID(ctx, "off-1")
	if err != nil {
		t.Fatal(err)
	}
	if off.DeviceID != "dev-1" {
		t.Fatalf("offender device_id = %q, want dev-1", off.DeviceID)
	}
}

func TestDeviceRegisterDefaults(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewDeviceService(memory.NewDeviceStore(), memory.NewOffenderStore())

	d := &domain.Device{DeviceType: "ankle-monitor"}
	if err := svc.Register(ctx, d); err != nil {
		t.Fatal(err)
	}
	if d.ID == "" {
		t.Fatal("registration should assign an id")
	}
	if d.Status != domain.DeviceOffline {
		t.Fatalf("default status = %s, want %s", d.Status, domain.DeviceOffline)
	}
}

func TestDeviceUpdateAllowsReassigningSameDevice(t *testing.T) {
	ctx := context.Background()
	devices := memory.NewDeviceStore()
	offenders := memory.NewOffenderStore()
	svc := usecases.NewDeviceService(devices, offenders)

	_ = offenders.Create(ctx, &domain.Offender{ID: "off-1", Name: "A", IDNumber: "1"})
	d := &domain.Device{ID: "dev-1", DeviceType: "ankle-monitor", OffenderID: "off-1"}
	if err := svc.Register(ctx, d); err != nil {
		t.Fatal(err)
	}

	// Updating the same device keeps the same assignment without
	// tripping the invariant.
	d.BatteryLevel = 50
	if err := svc.Update(ctx, d); err != nil {
		t.Fatalf("self-update: %v", err)
	}
}

func TestOffenderCreateRejectsDuplicateIDNumber(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewOffenderService(memory.NewOffenderStore())

	if err := svc.Create(ctx, &domain.Offender{Name: "A", IDNumber: "317405"}); err != nil {
		t.Fatal(err)
	}
	err := svc.Create(ctx, &domain.Offender{Name: "B", IDNumber: "317405"})
	if !errors.Is(err, usecases.ErrIDNumberExists) {
		t.Fatalf("err = %v, want ErrIDNumberExists", err)
	}
}

func TestOffenderCreateRequiresNameAndID(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewOffenderService(memory.NewOffenderStore())

	if err := svc.Create(ctx, &domain.Offender{Name: "A"}); err == nil {
		t.Fatal("missing id_number should be rejected")
	}
	if err := svc.Create(ctx, &domain.Offender{IDNumber: "1"}); err == nil {
		t.Fatal("missing name should be rejected")
	}
}

func TestPOIListActiveUsesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPOIStore()
	cache := newFakeCache()
	svc := usecases.NewPOIService(store, cache)

	if err := svc.Create(ctx, &domain.POI{Name: "School", RadiusMeters: 2500, Active: true}); err != nil {
		t.Fatal(err)
	}

	first, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("active pois = %d, want 1", len(first))
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	// Second read is served from the cache.
	second, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 {
		t.Fatalf("active pois = %d, want 1", len(second))
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets after cached read = %d, want still 1", cache.sets)
	}
}

func TestPOIMutationInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPOIStore()
	cache := newFakeCache()
	svc := usecases.NewPOIService(store, cache)

	poi := &domain.POI{Name: "School", RadiusMeters: 2500, Active: true}
	if err := svc.Create(ctx, poi); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListActive(ctx); err != nil {
		t.Fatal(err)
	}

	poi.Active = false
	if err := svc.Update(ctx, poi); err != nil {
		t.Fatal(err)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("active pois after deactivation = %d, want 0", len(active))
	}
}

func TestPOIRejectsNegativeRadius(t *testing.T) {
	svc := usecases.NewPOIService(memory.NewPOIStore(), nil)
	err := svc.Create(context.Background(), &domain.POI{Name: "X", RadiusMeters: -1})
	if err == nil {
		t.Fatal("negative radius should be rejected")
	}
}

func TestAlertAcknowledgeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAlertStore()
	svc := usecases.NewAlertService(store)

	_ = store.Create(ctx, &domain.Alert{ID: "a1", OffenderID: "off-1", Message: "m"})

	if err := svc.Acknowledge(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Acknowledge(ctx, "a1"); err != nil {
		t.Fatalf("second acknowledge: %v", err)
	}

	a, err := svc.GetByID(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Acknowledged {
		t.Fatal("alert should be acknowledged")
	}
}

func TestStatsDashboard(t *testing.T) {
	ctx := context.Background()
	offenders := memory.NewOffenderStore()
	devices := memory.NewDeviceStore()
	pois := memory.NewPOIStore()
	alerts := memory.NewAlertStore()
	svc := usecases.NewStatsService(offenders, devices, pois, alerts, nil)

	_ = offenders.Create(ctx, &domain.Offender{ID: "o1", Name: "A", IDNumber: "1", RiskLevel: domain.RiskHigh})
	_ = offenders.Create(ctx, &domain.Offender{ID: "o2", Name: "B", IDNumber: "2", RiskLevel: domain.RiskMedium})
	_ = devices.Create(ctx, &domain.Device{ID: "d1", Status: domain.DeviceOnline})
	_ = devices.Create(ctx, &domain.Device{ID: "d2", Status: domain.DeviceOffline})
	_ = pois.Create(ctx, &domain.POI{ID: "p1", Name: "School", Active: true})
	_ = alerts.Create(ctx, &domain.Alert{ID: "a1", OffenderID: "o1"})
	_ = alerts.Create(ctx, &domain.Alert{ID: "a2", OffenderID: "o1", Acknowledged: true})

	stats, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalOffenders != 2 {
		t.Errorf("TotalOffenders = %d, want 2", stats.TotalOffenders)
	}
	if stats.TotalDevices != 2 {
		t.Errorf("TotalDevices = %d, want 2", stats.TotalDevices)
	}
	if stats.ActiveDevices != 1 {
		t.Errorf("ActiveDevices = %d, want 1", stats.ActiveDevices)
	}
	if stats.UnacknowledgedAlerts != 1 {
		t.Errorf("UnacknowledgedAlerts = %d, want 1", stats.UnacknowledgedAlerts)
	}
	if stats.TotalPOIs != 1 {
		t.Errorf("TotalPOIs = %d, want 1", stats.TotalPOIs)
	}
	if stats.RiskDistribution[string(domain.RiskHigh)] != 1 {
		t.Errorf("high risk count = %d, want 1", stats.RiskDistribution[string(domain.RiskHigh)])
	}
}
