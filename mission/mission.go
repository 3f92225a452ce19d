package mission

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of a mission. A mission is in exactly one
// status at any time and only moves between statuses via Apply or Start.
type Status string

const (
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
)

var allStatuses = []Status{StatusPending, StatusScheduled, StatusInProgress, StatusPaused, StatusCompleted, StatusAborted}

// ParseStatus converts a string into a Status, rejecting anything outside
// the closed set.
func ParseStatus(s string) (Status, error) {
	for _, known := range allStatuses {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", &ValidationError{fmt.Sprintf("'%v' is not a valid mission status", s)}
}

// Terminal reports whether the mission has ended. EndDate is set iff the
// status is terminal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// Action is a lifecycle command applied to a mission via Apply.
type Action string

const (
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionAbort    Action = "abort"
	ActionComplete Action = "complete"

	// ActionStart is never legal via Apply; starting is a separate
	// operation with its own drone availability preconditions.
	ActionStart Action = "start"
)

// ParseAction converts a string into an Action accepted by Apply.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionPause, ActionResume, ActionAbort, ActionComplete:
		return Action(s), nil
	}
	return "", &ValidationError{fmt.Sprintf("invalid action '%v'; choose one of pause, resume, abort, or complete", s)}
}

// transitions is the authoritative mapping of current status to the actions
// that are legal from it. Statuses not present (pending) allow no actions.
// Note that completed missions can be aborted; this mirrors long-standing
// dashboard behaviour and is asserted by existing clients.
var transitions = map[Status][]Action{
	StatusScheduled:  {ActionAbort},
	StatusInProgress: {ActionPause, ActionAbort, ActionComplete},
	StatusPaused:     {ActionResume, ActionAbort, ActionComplete},
	StatusCompleted:  {ActionAbort},
	StatusAborted:    {ActionResume},
}

// AllowedActions returns the actions legal from the given status. The
// returned slice is a copy and may be empty, never nil.
func AllowedActions(s Status) []Action {
	allowed := make([]Action, 0, len(transitions[s]))
	allowed = append(allowed, transitions[s]...)
	return allowed
}

// Waypoint is an ordered coordinate on the flight path. Order in the
// FlightPath slice is the flight sequence.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Action    string  `json:"action,omitempty"` // e.g. photo, video, hover
}

// DataCollection holds the flight parameters of the survey sensors. These
// are fixed at planning time and never touched by lifecycle transitions.
type DataCollection struct {
	Frequency  float64  `json:"frequency"` // captures per second
	Sensors    []string `json:"sensors"`
	Resolution string   `json:"resolution"`
}

type Mission struct {
	Id                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Status             Status         `json:"status"`
	DroneIDs           []string       `json:"droneIds"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            time.Time      `json:"endDate"`
	FlightPath         []Waypoint     `json:"flightPath"`
	Altitude           float64        `json:"altitude"`
	Speed              float64        `json:"speed"` // metres per second
	DataCollection     DataCollection `json:"dataCollection"`
	CompletedWaypoints int            `json:"completedWaypoints"`
	Created            time.Time      `json:"createdAt"`
	Updated            time.Time      `json:"updatedAt"`
}

// NewFromJSON creates mission objects from their database representation.
// Runs every time the mission is read or modified.
func NewFromJSON(jsonString []byte) (Mission, error) {
	var m Mission
	err := json.Unmarshal(jsonString, &m)
	if err != nil {
		return Mission{}, err
	}
	return m, nil
}

// Bytes converts the mission to its JSON representation. Used for storing
// and outputting missions.
func (m *Mission) Bytes() []byte {
	output, err := json.Marshal(m)
	if err != nil {
		return []byte{}
	}
	return output
}

// Validate tests that a mission is well formed:
// - name is not empty
// - status is one of the closed set
// - every waypoint is within coordinate range
// - speed and altitude are not negative
func (m *Mission) Validate() error {
	if m.Name == "" {
		return &ValidationError{"missions must have a name"}
	}
	if _, err := ParseStatus(string(m.Status)); err != nil {
		return err
	}
	for i, w := range m.FlightPath {
		if w.Latitude < -90 || w.Latitude > 90 {
			return &ValidationError{fmt.Sprintf("waypoint %v has latitude %v outside [-90, 90]", i, w.Latitude)}
		}
		if w.Longitude < -180 || w.Longitude > 180 {
			return &ValidationError{fmt.Sprintf("waypoint %v has longitude %v outside [-180, 180]", i, w.Longitude)}
		}
	}
	if m.Speed < 0 {
		return &ValidationError{"speed cannot be negative"}
	}
	if m.Altitude < 0 {
		return &ValidationError{"altitude cannot be negative"}
	}
	return nil
}

// Apply executes one lifecycle action against the mission using the
// following logic:
// - an aborted mission only ever accepts resume
// - the action must be legal from the current status per the transition table
// - abort and complete set the end date, resume from aborted clears it, and
//   every other action leaves it unchanged
// The start date is never modified here; see Start.
func (m *Mission) Apply(action Action) error {
	if m.Status == StatusAborted && action != ActionResume {
		return &InvalidTransitionError{Action: action, Current: m.Status, Allowed: []Action{ActionResume}}
	}

	allowed := AllowedActions(m.Status)
	if !actionIn(allowed, action) {
		return &InvalidTransitionError{Action: action, Current: m.Status, Allowed: allowed}
	}

	now := time.Now()
	switch action {
	case ActionPause:
		m.Status = StatusPaused
	case ActionResume:
		if m.Status == StatusAborted {
			m.EndDate = time.Time{}
		}
		m.Status = StatusInProgress
	case ActionAbort:
		m.Status = StatusAborted
		m.EndDate = now
	case ActionComplete:
		m.Status = StatusCompleted
		m.EndDate = now
	default:
		return &InvalidTransitionError{Action: action, Current: m.Status, Allowed: allowed}
	}
	m.Updated = now
	return nil
}

// Start begins a scheduled flight: status becomes in-progress and the start
// date is set. Drone availability must be checked by the caller before the
// mission record is committed; the check spans a separate resource.
func (m *Mission) Start() error {
	if m.Status != StatusScheduled {
		return &InvalidTransitionError{Action: ActionStart, Current: m.Status, Allowed: AllowedActions(m.Status)}
	}
	now := time.Now()
	m.Status = StatusInProgress
	m.StartDate = now
	m.Updated = now
	return nil
}

func actionIn(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
