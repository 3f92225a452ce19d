package mission

import (
	"fmt"
	"math"
	"time"
)

// earthRadiusMetres is Earth's radius for the Haversine calculation.
const earthRadiusMetres = 6371e3

// Progress is the derived, read-only view of how far a mission has got.
type Progress struct {
	CompletedWaypoints int     `json:"completedWaypoints"`
	TotalWaypoints     int     `json:"totalWaypoints"`
	Percent            int     `json:"percent"`
	ElapsedTime        string  `json:"elapsedTime,omitempty"`
	DistanceMetres     float64 `json:"distanceMetres"`
	CoverageAreaM2     float64 `json:"coverageAreaM2"`
	// EstimatedDuration is the planned flight time in seconds, derived from
	// path distance and speed. Zero when speed is unknown.
	EstimatedDuration float64 `json:"estimatedDuration,omitempty"`
}

// Progress computes the derived progress of the mission. It never mutates
// the mission and never divides by zero: an empty flight path reports 0%
// via a size-1 fallback denominator.
func (m *Mission) Progress() Progress {
	total := len(m.FlightPath)
	denominator := total
	if denominator == 0 {
		denominator = 1
	}
	percent := int(math.Round(float64(m.CompletedWaypoints) / float64(denominator) * 100))

	p := Progress{
		CompletedWaypoints: m.CompletedWaypoints,
		TotalWaypoints:     total,
		Percent:            percent,
		DistanceMetres:     m.PathDistance(),
		CoverageAreaM2:     m.CoverageArea(),
	}

	// elapsed time only makes sense once the flight has started
	switch m.Status {
	case StatusInProgress:
		p.ElapsedTime = FormatDuration(time.Since(m.StartDate))
	case StatusCompleted:
		p.ElapsedTime = FormatDuration(m.EndDate.Sub(m.StartDate))
	}

	if m.Speed > 0 {
		p.EstimatedDuration = p.DistanceMetres / m.Speed
	}

	return p
}

// FormatDuration renders a duration as "{h}h {m}m", "{m}m {s}s", or "{s}s"
// depending on magnitude. Hours appear only at >= 1h, minutes only at >= 1m.
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60

	if hours > 0 {
		return fmt.Sprintf("%vh %vm", hours, minutes%60)
	}
	if minutes > 0 {
		return fmt.Sprintf("%vm %vs", minutes, seconds%60)
	}
	return fmt.Sprintf("%vs", seconds)
}

// Haversine calculates the great-circle distance in metres between two
// points on Earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMetres * c
}

// PathDistance sums the great-circle distance over consecutive waypoint
// pairs, in metres.
func (m *Mission) PathDistance() float64 {
	var total float64
	for i := 1; i < len(m.FlightPath); i++ {
		prev := m.FlightPath[i-1]
		curr := m.FlightPath[i]
		total += Haversine(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
	}
	return total
}

// CoverageArea approximates the surveyed area in square metres as the
// bounding box of the waypoint set, width times height via Haversine on the
// box edges. Deliberately coarse; not a polygon area.
func (m *Mission) CoverageArea() float64 {
	if len(m.FlightPath) < 2 {
		return 0
	}
	minLat, maxLat := m.FlightPath[0].Latitude, m.FlightPath[0].Latitude
	minLon, maxLon := m.FlightPath[0].Longitude, m.FlightPath[0].Longitude
	for _, w := range m.FlightPath[1:] {
		minLat = math.Min(minLat, w.Latitude)
		maxLat = math.Max(maxLat, w.Latitude)
		minLon = math.Min(minLon, w.Longitude)
		maxLon = math.Max(maxLon, w.Longitude)
	}
	width := Haversine(minLat, minLon, minLat, maxLon)
	height := Haversine(minLat, minLon, maxLat, minLon)
	return width * height
}
