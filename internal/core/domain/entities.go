package domain

import (
	"time"
)

// RiskLevel classifies how closely an offender must be watched.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// CrimeType is the offence category driving monitoring policy.
type CrimeType string

const (
	CrimeSexualOffense CrimeType = "sexual_offense"
	CrimeDrugOffense   CrimeType = "drug_offense"
	CrimeViolentCrime  CrimeType = "violent_crime"
	CrimeRobbery       CrimeType = "robbery"
	CrimeHomicide      CrimeType = "homicide"
	CrimeKidnapping    CrimeType = "kidnapping"
)

// DeviceStatus is the last known state of a tracking unit.
type DeviceStatus string

const (
	DeviceOnline     DeviceStatus = "online"
	DeviceOffline    DeviceStatus = "offline"
	DeviceTampered   DeviceStatus = "tampered"
	DeviceLowBattery DeviceStatus = "low_battery"
)

// POICategory tags a point of interest (school, victim residence, ...).
type POICategory string

const (
	POISchool             POICategory = "school"
	POIPlayground         POICategory = "playground"
	POIVictimResidence    POICategory = "victim_residence"
	POIRestrictedZone     POICategory = "restricted_zone"
	POIHospital           POICategory = "hospital"
	POIGovernmentBuilding POICategory = "government_building"
	POIOther              POICategory = "other"
)

// ZoneKind discriminates geofence zone semantics. Only exclusion zones
// trigger alerts today; inclusion (curfew) zones are a planned addition.
type ZoneKind string

const (
	ZoneExclusion ZoneKind = "exclusion"
)

// AlertKind discriminates alert records.
type AlertKind string

const (
	AlertPOIProximity      AlertKind = "poi_proximity"
	AlertGeofenceViolation AlertKind = "geofence_violation"
)

// Device represents a physical tracking unit (ankle monitor, wristband).
type Device struct {
	ID             string          `json:"id"`
	DeviceType     string          `json:"device_type"`
	CaseID         string          `json:"case_id"`
	OffenderID     string          `json:"offender_id,omitempty"`
	Status         DeviceStatus    `json:"status"`
	BatteryLevel   int             `json:"battery_level"`
	LastLocation   *LocationSample `json:"last_location,omitempty"`
	LastUpdate     time.Time       `json:"last_update"`
	TamperDetected bool            `json:"tamper_detected"`
}

// GeofenceZone is a circular area attached to an offender. Exclusion
// zones raise a violation alert whenever the offender is inside.
type GeofenceZone struct {
	Name         string   `json:"name"`
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radius_meters"`
	Kind         ZoneKind `json:"kind"`
}

// Offender is a monitored individual under supervision.
type Offender struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	IDNumber        string          `json:"id_number"`
	CrimeType       CrimeType       `json:"crime_type"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	PhotoURL        string          `json:"photo_url,omitempty"`
	DateOfBirth     string          `json:"date_of_birth"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	CaseOfficer     string          `json:"case_officer"`
	MonitoringStart time.Time       `json:"monitoring_start"`
	MonitoringEnd   time.Time       `json:"monitoring_end"`
	DeviceID        string          `json:"device_id,omitempty"`
	CurrentLocation *LocationSample `json:"current_location,omitempty"`
	GeofenceZones   []GeofenceZone  `json:"geofence_zones"`
	Notes           string          `json:"notes,omitempty"`
}

// POI is a point of interest watched independently of any one offender,
// e.g. a school near which any high-risk offender triggers an alert.
type POI struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address,omitempty"`
	Center       GeoPoint    `json:"center"`
	RadiusMeters float64     `json:"radius_meters"`
	Category     POICategory `json:"category"`
	Description  string      `json:"description,omitempty"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Alert records a single spatial violation. Alerts are append-only:
// after creation only the Acknowledged flag ever changes, exactly once,
// through the acknowledgement endpoint.
type Alert struct {
	ID           string    `json:"id"`
	OffenderID   string    `json:"offender_id"`
	Kind         AlertKind `json:"kind"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}
