package drone

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the operational state of a drone. The registry only ever moves
// drones between available, in-mission, and maintenance; charging and
// offline are monitoring states reported by telemetry and are read-only
// from the registry's point of view.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInMission   Status = "in-mission"
	StatusMaintenance Status = "maintenance"
	StatusCharging    Status = "charging"
	StatusOffline     Status = "offline"
)

var allStatuses = []Status{StatusAvailable, StatusInMission, StatusMaintenance, StatusCharging, StatusOffline}

// ParseStatus converts a string into a Status, rejecting anything outside
// the closed set.
func ParseStatus(s string) (Status, error) {
	for _, known := range allStatuses {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", &ValidationError{fmt.Sprintf("'%v' is not a valid drone status", s)}
}

// Drone is a physical survey vehicle. Battery and status are tracked
// independently of any mission that references the drone.
type Drone struct {
	Id              string    `json:"id"`
	Name            string    `json:"name"`
	Model           string    `json:"model"`
	Status          Status    `json:"status"`
	BatteryLevel    int       `json:"batteryLevel"`
	LastMaintenance time.Time `json:"lastMaintenance"`
	LastSeen        time.Time `json:"lastSeen"`
	Created         time.Time `json:"createdAt"`
	Updated         time.Time `json:"updatedAt"`
}

// NewFromJSON creates drone objects from their database representation.
func NewFromJSON(jsonString []byte) (Drone, error) {
	var d Drone
	err := json.Unmarshal(jsonString, &d)
	if err != nil {
		return Drone{}, err
	}
	return d, nil
}

// Bytes converts the drone to its JSON representation. Used for storing and
// outputting drones.
func (d *Drone) Bytes() []byte {
	output, err := json.Marshal(d)
	if err != nil {
		return []byte{}
	}
	return output
}

// Validate tests that a drone record is well formed.
func (d *Drone) Validate() error {
	if d.Name == "" {
		return &ValidationError{"drones must have a name"}
	}
	if _, err := ParseStatus(string(d.Status)); err != nil {
		return err
	}
	return ValidateBattery(d.BatteryLevel)
}

// ValidateBattery checks a battery level is within 0-100.
func ValidateBattery(level int) error {
	if level < 0 || level > 100 {
		return &ValidationError{fmt.Sprintf("battery level %v is outside [0, 100]", level)}
	}
	return nil
}

// SetStatus moves the drone to the requested status. The single blocked
// transition is in-mission to maintenance: a drone cannot enter maintenance
// while actively flying. Every other transition is permitted; LastSeen is
// refreshed on success.
func (d *Drone) SetStatus(status Status) error {
	if d.Status == StatusInMission && status == StatusMaintenance {
		return &StatusChangeError{fmt.Sprintf("cannot move drone '%v' to maintenance while in mission", d.Id)}
	}
	now := time.Now()
	d.Status = status
	d.LastSeen = now
	d.Updated = now
	return nil
}
