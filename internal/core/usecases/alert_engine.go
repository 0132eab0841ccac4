package usecases

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/geospatial"
)

// AlertEngine classifies a location sample against POI and geofence
// constraints. Pure evaluation: it persists nothing and is safe to call
// from any goroutine.
type AlertEngine struct{}

// NewAlertEngine creates a new AlertEngine.
func NewAlertEngine() *AlertEngine {
	return &AlertEngine{}
}

// Evaluate returns one alert per violated constraint: active POIs first,
// then the offender's exclusion zones, each in stored order. A constraint
// is violated when the sample is strictly inside its radius, so a zero
// radius never triggers.
//
// Deliberately no deduplication: an offender parked inside a zone yields
// a fresh alert on every sample. Suppression is a product-level follow-up
// hanging off acknowledgement, not an engine concern.
func (e *AlertEngine) Evaluate(offender *domain.Offender, sample domain.LocationSample, pois []domain.POI) []domain.Alert {
	if offender == nil || !sample.Valid() {
		return nil
	}

	var alerts []domain.Alert
	now := time.Now()

	for _, poi := range pois {
		if !poi.Active {
			continue
		}
		dist := geospatial.Haversine(sample.Lat, sample.Lon, poi.Center.Lat, poi.Center.Lon)
		if dist < poi.RadiusMeters {
			alerts = append(alerts, domain.Alert{
				ID:         newID(),
				OffenderID: offender.ID,
				Kind:       domain.AlertPOIProximity,
				Severity:   "high",
				Message:    fmt.Sprintf("Offender %s is within %dm of POI: %s", offender.Name, int(dist), poi.Name),
				Timestamp:  now,
			})
		}
	}

	for _, zone := range offender.GeofenceZones {
		if zone.Kind != domain.ZoneExclusion {
			continue
		}
		dist := geospatial.Haversine(sample.Lat, sample.Lon, zone.Center.Lat, zone.Center.Lon)
		if dist < zone.RadiusMeters {
			alerts = append(alerts, domain.Alert{
				ID:         newID(),
				OffenderID: offender.ID,
				Kind:       domain.AlertGeofenceViolation,
				Severity:   "high",
				Message:    fmt.Sprintf("Offender %s entered restricted zone: %s", offender.Name, zone.Name),
				Timestamp:  now,
			})
		}
	}

	return alerts
}

// newID returns a random 128-bit hex identifier.
func newID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in a bad way anyway
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
