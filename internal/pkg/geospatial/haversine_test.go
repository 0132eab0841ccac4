package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(-6.2088, 106.8456, -6.2088, 106.8456)
	if d > 1e-6 {
		t.Errorf("expected ~0 for identical points, got %f", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{-6.2088, 106.8456, -6.2786, 106.6919},
		{43.263, -2.935, 48.8566, 2.3522},
		{0, 0, 0, 180},
		{-90, 0, 90, 0},
	}
	for _, p := range pairs {
		ab := Haversine(p[0], p[1], p[2], p[3])
		ba := Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("asymmetric: %f vs %f for %v", ab, ba, p)
		}
		if ab < 0 {
			t.Errorf("negative distance %f for %v", ab, p)
		}
	}
}

func TestHaversine_OneDegreeLatitudeAtEquator(t *testing.T) {
	// 1 degree of latitude is ~111,195 m on a 6,371 km sphere.
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 50 {
		t.Errorf("expected ~111195m, got %f", d)
	}
}

func TestBoundingBox_ContainsCircle(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(-6.2088, 106.8456, 500)
	if minLat >= -6.2088 || maxLat <= -6.2088 {
		t.Errorf("latitude bounds do not bracket center: [%f, %f]", minLat, maxLat)
	}
	if minLon >= 106.8456 || maxLon <= 106.8456 {
		t.Errorf("longitude bounds do not bracket center: [%f, %f]", minLon, maxLon)
	}
	// A point 500m due north must still be inside the box.
	if north := -6.2088 + 500/111320.0; north > maxLat {
		t.Errorf("point 500m north (%f) outside box max %f", north, maxLat)
	}
}
