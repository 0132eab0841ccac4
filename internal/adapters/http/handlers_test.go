package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/dhifafaz/tactical-monitor/internal/adapters/http"
	"github.com/dhifafaz/tactical-monitor/internal/adapters/memory"
	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
	"github.com/dhifafaz/tactical-monitor/internal/tracking"
)

// ---- Test helpers ----

type fixture struct {
	app       *fiber.App
	offenders *memory.OffenderStore
	devices   *memory.DeviceStore
	pois      *memory.POIStore
	alerts    *memory.AlertStore
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		offenders: memory.NewOffenderStore(),
		devices:   memory.NewDeviceStore(),
		pois:      memory.NewPOIStore(),
		alerts:    memory.NewAlertStore(),
	}

	deps := &handler.Dependencies{
		Offenders: usecases.NewOffenderService(f.offenders),
		Devices:   usecases.NewDeviceService(f.devices, f.offenders),
		POIs:      usecases.NewPOIService(f.pois, nil),
		Alerts:    usecases.NewAlertService(f.alerts),
		Stats:     usecases.NewStatsService(f.offenders, f.devices, f.pois, f.alerts, nil),
		Registry:  tracking.NewRegistry(),
	}

	f.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(f.app, deps)
	return f
}

func request(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	httpReq := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(httpReq, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, buf
}

// ---- Offender handler tests ----

func TestCreateAndGetOffender(t *testing.T) {
	f := setup(t)

	status, body := request(t, f.app, "POST", "/v1/offenders",
		`{"name":"Ahmad Wijaya","id_number":"3174051980120001","crime_type":"sexual_offense","risk_level":"high"}`)
	if status != 201 {
		t.Fatalf("create status = %d, want 201: %s", status, body)
	}

	var created domain.Offender
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created offender has no id")
	}

	status, body = request(t, f.app, "GET", "/v1/offenders/"+created.ID, "")
	if status != 200 {
		t.Fatalf("get status = %d, want 200", status)
	}
	var got domain.Offender
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "Ahmad Wijaya" {
		t.Fatalf("name = %q, want Ahmad Wijaya", got.Name)
	}
}

func TestCreateOffenderDuplicateIDNumber(t *testing.T) {
	f := setup(t)

	status, _ := request(t, f.app, "POST", "/v1/offenders", `{"name":"A","id_number":"123"}`)
	if status != 201 {
		t.Fatalf("first create status = %d, want 201", status)
	}
	status, body := request(t, f.app, "POST", "/v1/offenders", `{"name":"B","id_number":"123"}`)
	if status != 409 {
		t.Fatalf("duplicate create status = %d, want 409: %s", status, body)
	}
}

func TestGetOffenderNotFound(t *testing.T) {
	f := setup(t)
	status, _ := request(t, f.app, "GET", "/v1/offenders/ghost", "")
	if status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestDeleteOffender(t *testing.T) {
	f := setup(t)
	_ = f.offenders.Create(context.Background(), &domain.Offender{ID: "o1", Name: "A", IDNumber: "1"})

	status, _ := request(t, f.app, "DELETE", "/v1/offenders/o1", "")
	if status != 204 {
		t.Fatalf("delete status = %d, want 204", status)
	}
	status, _ = request(t, f.app, "GET", "/v1/offenders/o1", "")
	if status != 404 {
		t.Fatalf("get after delete = %d, want 404", status)
	}
}

// ---- Device handler tests ----

func TestRegisterDeviceConflict(t *testing.T) {
	f := setup(t)
	_ = f.offenders.Create(context.Background(), &domain.Offender{ID: "o1", Name: "A", IDNumber: "1"})

	status, _ := request(t, f.app, "POST", "/v1/devices",
		`{"id":"dev-1","device_type":"ankle-monitor","offender_id":"o1"}`)
	if status != 201 {
		t.Fatalf("first registration status = %d, want 201", status)
	}
	status, body := request(t, f.app, "POST", "/v1/devices",
		`{"id":"dev-2","device_type":"wristband","offender_id":"o1"}`)
	if status != 409 {
		t.Fatalf("second registration status = %d, want 409: %s", status, body)
	}
}

func TestListDevices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_ = f.devices.Create(ctx, &domain.Device{ID: "d1", DeviceType: "ankle-monitor"})
	_ = f.devices.Create(ctx, &domain.Device{ID: "d2", DeviceType: "wristband"})

	status, body := request(t, f.app, "GET", "/v1/devices", "")
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	var result struct {
		Data       []domain.Device `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 || len(result.Data) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", result.Pagination.Total, len(result.Data))
	}
}

// ---- POI handler tests ----

func TestPOIActiveFilter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_ = f.pois.Create(ctx, &domain.POI{ID: "p1", Name: "School", Active: true})
	_ = f.pois.Create(ctx, &domain.POI{ID: "p2", Name: "Old site", Active: false})

	status, body := request(t, f.app, "GET", "/v1/pois?active=true", "")
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	var result struct {
		Data []domain.POI `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 1 || result.Data[0].ID != "p1" {
		t.Fatalf("active filter returned %d pois, want just p1", len(result.Data))
	}
}

func TestCreatePOIValidation(t *testing.T) {
	f := setup(t)
	status, _ := request(t, f.app, "POST", "/v1/pois", `{"radius_meters":100}`)
	if status != 400 {
		t.Fatalf("nameless poi status = %d, want 400", status)
	}
}

// ---- Alert handler tests ----

func TestAcknowledgeAlert(t *testing.T) {
	f := setup(t)
	_ = f.alerts.Create(context.Background(), &domain.Alert{
		ID: "a1", OffenderID: "o1", Kind: domain.AlertPOIProximity, Message: "near school",
	})

	status, body := request(t, f.app, "POST", "/v1/alerts/a1/acknowledge", "")
	if status != 200 {
		t.Fatalf("acknowledge status = %d, want 200: %s", status, body)
	}
	var a domain.Alert
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatal(err)
	}
	if !a.Acknowledged {
		t.Fatal("alert not acknowledged in response")
	}
}

func TestAcknowledgeMissingAlert(t *testing.T) {
	f := setup(t)
	status, _ := request(t, f.app, "POST", "/v1/alerts/ghost/acknowledge", "")
	if status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
}

// ---- Stats ----

func TestDashboardStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_ = f.offenders.Create(ctx, &domain.Offender{ID: "o1", Name: "A", IDNumber: "1", RiskLevel: domain.RiskHigh})
	_ = f.devices.Create(ctx, &domain.Device{ID: "d1", Status: domain.DeviceOnline})
	_ = f.alerts.Create(ctx, &domain.Alert{ID: "a1", OffenderID: "o1"})

	status, body := request(t, f.app, "GET", "/v1/stats/dashboard", "")
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	var stats usecases.DashboardStats
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalOffenders != 1 || stats.ActiveDevices != 1 || stats.UnacknowledgedAlerts != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

// ---- GraphQL ----

func TestGraphQLOffendersQuery(t *testing.T) {
	f := setup(t)
	_ = f.offenders.Create(context.Background(), &domain.Offender{ID: "o1", Name: "Ahmad Wijaya", IDNumber: "1"})

	status, body := request(t, f.app, "POST", "/graphql",
		`{"query":"{ offenders { id name } }"}`)
	if status != 200 {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	var result struct {
		Data struct {
			Offenders []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"offenders"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if len(result.Data.Offenders) != 1 || result.Data.Offenders[0].Name != "Ahmad Wijaya" {
		t.Fatalf("unexpected offenders: %+v", result.Data.Offenders)
	}
}

// ---- Health ----

func TestHealthEndpoint(t *testing.T) {
	f := setup(t)
	status, body := request(t, f.app, "GET", "/v1/health", "")
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	var h struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "healthy" {
		t.Fatalf("status field = %q, want healthy", h.Status)
	}
}
