package model

import (
	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
)

// Error is the structured error payload returned by every failing route.
// AllowedActions is populated only for invalid lifecycle transitions.
type Error struct {
	Message        string   `json:"message"`
	Type           string   `json:"type"`
	Code           int      `json:"code"`
	AllowedActions []string `json:"allowedActions,omitempty"`
}

type Success struct {
	Message string `json:"message"`
}

// MissionCreateRequest is the body of POST /missions. Status defaults to
// scheduled when omitted.
type MissionCreateRequest struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Status         string                 `json:"status"`
	DroneIDs       []string               `json:"droneIds"`
	FlightPath     []mission.Waypoint     `json:"flightPath"`
	Altitude       float64                `json:"altitude"`
	Speed          float64                `json:"speed"`
	DataCollection mission.DataCollection `json:"dataCollection"`
}

// MissionUpdateRequest is the body of PUT /missions/{id}. Only non-status
// fields can be edited directly, with one exception: a pending mission may
// be promoted to scheduled. All other status changes go through control.
type MissionUpdateRequest struct {
	Name               *string             `json:"name"`
	Description        *string             `json:"description"`
	Status             *string             `json:"status"`
	DroneIDs           *[]string           `json:"droneIds"`
	FlightPath         *[]mission.Waypoint `json:"flightPath"`
	CompletedWaypoints *int                `json:"completedWaypoints"`
}

// MissionControlRequest is the body of POST /missions/{id}/control.
type MissionControlRequest struct {
	Action string `json:"action"`
}

// MissionStatusResponse is returned by GET /missions/{id}/status.
type MissionStatusResponse struct {
	Mission       mission.Mission  `json:"mission"`
	Progress      mission.Progress `json:"progress"`
	BatteryLevels []BatteryLevel   `json:"batteryLevels"`
}

// BatteryLevel reports the charge of one drone referenced by a mission.
type BatteryLevel struct {
	DroneId      string `json:"droneId"`
	Name         string `json:"name"`
	BatteryLevel int    `json:"batteryLevel"`
}

// DroneCreateRequest is the body of POST /drones.
type DroneCreateRequest struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	BatteryLevel int    `json:"batteryLevel"`
}

// DroneStatusRequest is the body of PUT /drones/{id}/status.
type DroneStatusRequest struct {
	Status       string `json:"status"`
	BatteryLevel *int   `json:"batteryLevel"`
}

// MaintenanceRequest is the body of POST /drones/{id}/maintenance.
// Action is either "start" or "stop".
type MaintenanceRequest struct {
	Action string `json:"action"`
}

// Mission and Drone are re-exported for client use; routes return the
// domain types directly.
type Mission = mission.Mission
type Drone = drone.Drone
