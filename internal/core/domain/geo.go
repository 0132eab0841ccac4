package domain

import "time"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationSample is a single GPS fix received for a tracking device.
// Alt is optional; devices without an altimeter omit it.
type LocationSample struct {
	GeoPoint
	Alt        *float64  `json:"alt,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Valid reports whether the sample carries a plausible WGS 84 coordinate.
// Samples that fail this check are dropped before spatial evaluation.
func (s LocationSample) Valid() bool {
	return s.Lat >= -90 && s.Lat <= 90 && s.Lon >= -180 && s.Lon <= 180
}
