package mission

import (
	"math"
	"testing"
	"time"
)

func TestMission_Progress_EmptyFlightPath(t *testing.T) {
	m := testMission(StatusScheduled)
	m.FlightPath = nil

	p := m.Progress()
	if p.Percent != 0 {
		t.Fatalf(`A mission with no waypoints is 0%% complete, got %v%%`, p.Percent)
	}
	if p.TotalWaypoints != 0 {
		t.Fatalf(`Expected 0 total waypoints, got %v`, p.TotalWaypoints)
	}
	if p.DistanceMetres != 0 || p.CoverageAreaM2 != 0 {
		t.Fatalf(`An empty path has no distance or coverage`)
	}
}

func TestMission_Progress_Percent(t *testing.T) {
	m := testMission(StatusInProgress)
	m.StartDate = time.Now().Add(-time.Minute)
	m.FlightPath = []Waypoint{
		{Latitude: 51.50, Longitude: -0.10},
		{Latitude: 51.51, Longitude: -0.10},
		{Latitude: 51.52, Longitude: -0.10},
	}
	m.CompletedWaypoints = 1

	p := m.Progress()
	if p.Percent != 33 {
		t.Fatalf(`1 of 3 waypoints should round to 33%%, got %v%%`, p.Percent)
	}
	if p.ElapsedTime == "" {
		t.Fatalf(`In-progress missions report elapsed time`)
	}
}

func TestMission_Progress_ElapsedOnlyWhenFlown(t *testing.T) {
	m := testMission(StatusScheduled)
	if p := m.Progress(); p.ElapsedTime != "" {
		t.Fatalf(`Scheduled missions have no elapsed time, got '%v'`, p.ElapsedTime)
	}

	m.Status = StatusCompleted
	m.StartDate = time.Now().Add(-90 * time.Second)
	m.EndDate = m.StartDate.Add(75 * time.Second)
	p := m.Progress()
	if p.ElapsedTime != "1m 15s" {
		t.Fatalf(`Completed missions report end minus start, expected '1m 15s', got '%v'`, p.ElapsedTime)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d        time.Duration
		expected string
	}{
		{42 * time.Second, "42s"},
		{0, "0s"},
		{60 * time.Second, "1m 0s"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
		{time.Hour, "1h 0m"},
		{3*time.Hour + 27*time.Minute + 59*time.Second, "3h 27m"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.d); got != c.expected {
			t.Fatalf(`FormatDuration(%v) = '%v', expected '%v'`, c.d, got, c.expected)
		}
	}
}

func TestHaversine(t *testing.T) {
	// London to Paris is roughly 344km
	d := Haversine(51.5074, -0.1278, 48.8566, 2.3522)
	if d < 330e3 || d > 350e3 {
		t.Fatalf(`London-Paris should be ~344km, got %vm`, d)
	}

	if d := Haversine(51.5, -0.1, 51.5, -0.1); d != 0 {
		t.Fatalf(`Distance from a point to itself should be 0, got %v`, d)
	}
}

func TestMission_PathDistance(t *testing.T) {
	m := testMission(StatusScheduled)
	m.FlightPath = []Waypoint{
		{Latitude: 51.50, Longitude: -0.10},
		{Latitude: 51.51, Longitude: -0.10},
		{Latitude: 51.52, Longitude: -0.10},
	}
	// each 0.01 degree of latitude is ~1.11km
	d := m.PathDistance()
	if d < 2.1e3 || d > 2.4e3 {
		t.Fatalf(`Expected ~2.2km total, got %vm`, d)
	}

	m.FlightPath = m.FlightPath[:1]
	if m.PathDistance() != 0 {
		t.Fatalf(`A single waypoint has no path distance`)
	}
}

func TestMission_CoverageArea(t *testing.T) {
	m := testMission(StatusScheduled)
	m.FlightPath = []Waypoint{
		{Latitude: 51.50, Longitude: -0.10},
		{Latitude: 51.51, Longitude: -0.08},
	}
	// ~1.11km tall, ~1.39km wide bounding box
	area := m.CoverageArea()
	if area < 1.2e6 || area > 1.9e6 {
		t.Fatalf(`Expected a bounding box area around 1.5km2, got %vm2`, area)
	}

	m.FlightPath = m.FlightPath[:1]
	if m.CoverageArea() != 0 {
		t.Fatalf(`Fewer than two waypoints cover no area`)
	}
}

func TestMission_Progress_EstimatedDuration(t *testing.T) {
	m := testMission(StatusScheduled)
	m.Speed = 10

	p := m.Progress()
	expected := m.PathDistance() / 10
	if math.Abs(p.EstimatedDuration-expected) > 1e-9 {
		t.Fatalf(`Estimated duration should be distance/speed, got %v expected %v`, p.EstimatedDuration, expected)
	}

	m.Speed = 0
	if p := m.Progress(); p.EstimatedDuration != 0 {
		t.Fatalf(`Unknown speed should give no estimate, got %v`, p.EstimatedDuration)
	}
}
