/**
Tests for the API. Each test creates its own API instance backed by the
in-memory database (or Redis if one is running locally, exactly as in
production) and drives it through the exported operations.
The following capabilities are covered by these tests:
- creating missions in pending or scheduled status only
- starting missions only when every referenced drone is available
- the all-or-nothing availability check writing nothing on failure
- lifecycle actions cascading to drone statuses
- operator-owned drone states surviving the cascade and the sweep
- delete guards for flying missions and referenced drones
- the reconciliation sweep repairing drone status drift

to run:

    go test -v ./api

*/
package api

import (
	"testing"

	"github.com/kestrel-uas/kestrel/database"
	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

func testDrone(t *testing.T, a *API, name string) drone.Drone {
	t.Helper()
	d, err := a.RegisterDrone(model.DroneCreateRequest{Name: name, Model: "wingtra-one", BatteryLevel: 90})
	if err != nil {
		t.Fatalf(`Could not register drone: %v`, err)
	}
	return d
}

func testMission(t *testing.T, a *API, droneIds []string) mission.Mission {
	t.Helper()
	m, err := a.CreateMission(model.MissionCreateRequest{
		Name:     "test-survey",
		DroneIDs: droneIds,
		FlightPath: []mission.Waypoint{
			{Latitude: 51.50, Longitude: -0.10, Altitude: 50},
			{Latitude: 51.51, Longitude: -0.10, Altitude: 50},
		},
		Speed: 10,
	})
	if err != nil {
		t.Fatalf(`Could not create mission: %v`, err)
	}
	return m
}

func TestAPI_CreateMission(t *testing.T) {
	a := New("")

	m := testMission(t, a, nil)
	if m.Status != mission.StatusScheduled {
		t.Fatalf(`Missions default to scheduled, got '%v'`, m.Status)
	}
	if m.Id == "" {
		t.Fatalf(`Created mission should have an id`)
	}

	got, err := a.GetMission(m.Id)
	if err != nil {
		t.Fatalf(`Could not get mission back: %v`, err)
	}
	if got.Name != m.Name {
		t.Fatalf(`Got the wrong mission back`)
	}

	_, err = a.CreateMission(model.MissionCreateRequest{Name: "bad", Status: "in-progress"})
	if err == nil {
		t.Fatalf(`Missions cannot be created in-progress`)
	}

	_, err = a.CreateMission(model.MissionCreateRequest{Name: "bad", DroneIDs: []string{"no-such-drone"}})
	if _, ok := err.(*drone.NotFoundError); !ok {
		t.Fatalf(`Missions cannot reference unknown drones, got %T`, err)
	}
}

func TestAPI_StartMission(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	d2 := testDrone(t, a, "kestrel-2")
	m := testMission(t, a, []string{d1.Id, d2.Id})

	started, err := a.StartMission(m.Id)
	if err != nil {
		t.Fatalf(`Could not start mission: %v`, err)
	}
	if started.Status != mission.StatusInProgress {
		t.Fatalf(`Started mission should be in-progress, got '%v'`, started.Status)
	}
	if started.StartDate.IsZero() {
		t.Fatalf(`Start should set the start date`)
	}

	for _, id := range []string{d1.Id, d2.Id} {
		d, _ := a.GetDrone(id)
		if d.Status != drone.StatusInMission {
			t.Fatalf(`Drone '%v' should be in-mission after start, got '%v'`, id, d.Status)
		}
	}

	// a second start must fail; the mission is no longer scheduled
	if _, err := a.StartMission(m.Id); err == nil {
		t.Fatalf(`A mission cannot be started twice`)
	}
}

func TestAPI_StartMission_AllOrNothing(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	d2 := testDrone(t, a, "kestrel-2")
	if _, err := a.MaintenanceDrone(d2.Id, true); err != nil {
		t.Fatalf(`Could not put drone in maintenance: %v`, err)
	}

	m := testMission(t, a, []string{d1.Id, d2.Id})

	_, err := a.StartMission(m.Id)
	unavailable, ok := err.(*model.DroneUnavailableError)
	if !ok {
		t.Fatalf(`Expected DroneUnavailableError, got %T`, err)
	}
	if len(unavailable.DroneIDs) != 1 || unavailable.DroneIDs[0] != d2.Id {
		t.Fatalf(`The unavailable drone should be reported, got %v`, unavailable.DroneIDs)
	}

	// nothing was written: the mission is still scheduled and the available
	// drone was not claimed
	got, _ := a.GetMission(m.Id)
	if got.Status != mission.StatusScheduled {
		t.Fatalf(`Failed start must not change mission status, got '%v'`, got.Status)
	}
	d, _ := a.GetDrone(d1.Id)
	if d.Status != drone.StatusAvailable {
		t.Fatalf(`Failed start must not claim any drone, got '%v'`, d.Status)
	}
}

func TestAPI_ControlMission_Cascade(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	m := testMission(t, a, []string{d1.Id})
	a.StartMission(m.Id)

	// pause releases the drone
	if _, err := a.ControlMission(m.Id, mission.ActionPause); err != nil {
		t.Fatalf(`Could not pause mission: %v`, err)
	}
	d, _ := a.GetDrone(d1.Id)
	if d.Status != drone.StatusAvailable {
		t.Fatalf(`Paused missions release their drones, got '%v'`, d.Status)
	}

	// resume claims it again
	if _, err := a.ControlMission(m.Id, mission.ActionResume); err != nil {
		t.Fatalf(`Could not resume mission: %v`, err)
	}
	d, _ = a.GetDrone(d1.Id)
	if d.Status != drone.StatusInMission {
		t.Fatalf(`Resumed missions claim their drones, got '%v'`, d.Status)
	}

	// complete releases it and sets the end date
	completed, err := a.ControlMission(m.Id, mission.ActionComplete)
	if err != nil {
		t.Fatalf(`Could not complete mission: %v`, err)
	}
	if completed.EndDate.IsZero() {
		t.Fatalf(`Complete should set the end date`)
	}
	d, _ = a.GetDrone(d1.Id)
	if d.Status != drone.StatusAvailable {
		t.Fatalf(`Completed missions release their drones, got '%v'`, d.Status)
	}
}

func TestAPI_ControlMission_InvalidAction(t *testing.T) {
	a := New("")
	m := testMission(t, a, nil)

	_, err := a.ControlMission(m.Id, mission.ActionPause)
	transitionErr, ok := err.(*mission.InvalidTransitionError)
	if !ok {
		t.Fatalf(`Expected InvalidTransitionError, got %T`, err)
	}
	if len(transitionErr.Allowed) != 1 || transitionErr.Allowed[0] != mission.ActionAbort {
		t.Fatalf(`Scheduled missions only allow abort, got %v`, transitionErr.Allowed)
	}

	_, err = a.ControlMission("no-such-mission", mission.ActionPause)
	if _, ok := err.(*mission.NotFoundError); !ok {
		t.Fatalf(`Expected NotFoundError, got %T`, err)
	}
}

func TestAPI_Cascade_SkipsOperatorStates(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	m := testMission(t, a, []string{d1.Id})
	a.StartMission(m.Id)

	// telemetry reports the drone charging mid-mission
	if _, err := a.SetDroneStatus(d1.Id, "charging", nil); err != nil {
		t.Fatalf(`Could not set drone to charging: %v`, err)
	}

	a.ControlMission(m.Id, mission.ActionComplete)

	d, _ := a.GetDrone(d1.Id)
	if d.Status != drone.StatusCharging {
		t.Fatalf(`The cascade must not touch operator-owned states, got '%v'`, d.Status)
	}
}

func TestAPI_UpdateMission(t *testing.T) {
	a := New("")
	m, err := a.CreateMission(model.MissionCreateRequest{Name: "pending-survey", Status: "pending"})
	if err != nil {
		t.Fatalf(`Could not create pending mission: %v`, err)
	}

	// promoting pending to scheduled is allowed
	scheduled := "scheduled"
	updated, err := a.UpdateMission(m.Id, model.MissionUpdateRequest{Status: &scheduled})
	if err != nil {
		t.Fatalf(`Could not promote pending mission: %v`, err)
	}
	if updated.Status != mission.StatusScheduled {
		t.Fatalf(`Mission should be scheduled, got '%v'`, updated.Status)
	}

	// any other status edit must go through control
	inProgress := "in-progress"
	if _, err := a.UpdateMission(m.Id, model.MissionUpdateRequest{Status: &inProgress}); err == nil {
		t.Fatalf(`Status cannot be edited directly`)
	}

	name := "renamed-survey"
	updated, err = a.UpdateMission(m.Id, model.MissionUpdateRequest{Name: &name})
	if err != nil || updated.Name != "renamed-survey" {
		t.Fatalf(`Could not rename mission: %v`, err)
	}
}

func TestAPI_DeleteMission_Guard(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	m := testMission(t, a, []string{d1.Id})
	a.StartMission(m.Id)

	err := a.DeleteMission(m.Id)
	if _, ok := err.(*model.MissionActiveError); !ok {
		t.Fatalf(`Expected MissionActiveError, got %T`, err)
	}

	a.ControlMission(m.Id, mission.ActionComplete)
	if err := a.DeleteMission(m.Id); err != nil {
		t.Fatalf(`Completed missions can be deleted, got: %v`, err)
	}
	if _, err := a.GetMission(m.Id); err == nil {
		t.Fatalf(`Deleted mission should be gone`)
	}
}

func TestAPI_DeleteDrone_Guard(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	m := testMission(t, a, []string{d1.Id})

	err := a.DeleteDrone(d1.Id)
	if _, ok := err.(*model.DroneInUseError); !ok {
		t.Fatalf(`Expected DroneInUseError, got %T`, err)
	}

	a.ControlMission(m.Id, mission.ActionAbort)
	if err := a.DeleteDrone(d1.Id); err != nil {
		t.Fatalf(`Drones referenced only by terminal missions can be deleted, got: %v`, err)
	}
}

func TestAPI_ListDrones_Filter(t *testing.T) {
	a := New("")
	testDrone(t, a, "kestrel-1")
	d2 := testDrone(t, a, "kestrel-2")
	a.MaintenanceDrone(d2.Id, true)

	drones, err := a.ListDrones("maintenance")
	if err != nil {
		t.Fatalf(`Could not list drones: %v`, err)
	}
	for i := range drones {
		if drones[i].Status != drone.StatusMaintenance {
			t.Fatalf(`Filter returned a drone in '%v' status`, drones[i].Status)
		}
	}

	if _, err := a.ListDrones("grounded"); err == nil {
		t.Fatalf(`Unknown status filters should be rejected`)
	}
}

func TestAPI_SetDroneStatus(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")

	battery := 42
	updated, err := a.SetDroneStatus(d1.Id, "", &battery)
	if err != nil {
		t.Fatalf(`Could not update battery: %v`, err)
	}
	if updated.BatteryLevel != 42 || updated.Status != drone.StatusAvailable {
		t.Fatalf(`Battery-only updates must not change status`)
	}

	badBattery := 150
	if _, err := a.SetDroneStatus(d1.Id, "", &badBattery); err == nil {
		t.Fatalf(`Battery outside [0, 100] should be rejected`)
	}

	if _, err := a.SetDroneStatus(d1.Id, "", nil); err == nil {
		t.Fatalf(`An empty update should be rejected`)
	}
}

func TestAPI_MissionStatus(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	m := testMission(t, a, []string{d1.Id})
	a.StartMission(m.Id)

	status, err := a.MissionStatus(m.Id)
	if err != nil {
		t.Fatalf(`Could not get mission status: %v`, err)
	}
	if status.Progress.TotalWaypoints != 2 {
		t.Fatalf(`Expected 2 waypoints, got %v`, status.Progress.TotalWaypoints)
	}
	if status.Progress.ElapsedTime == "" {
		t.Fatalf(`In-progress missions report elapsed time`)
	}
	if len(status.BatteryLevels) != 1 || status.BatteryLevels[0].DroneId != d1.Id {
		t.Fatalf(`Mission status should report drone battery levels, got %v`, status.BatteryLevels)
	}
}

func TestAPI_ReconcileDroneStatus(t *testing.T) {
	a := New("")
	d1 := testDrone(t, a, "kestrel-1")
	m := testMission(t, a, []string{d1.Id})
	a.StartMission(m.Id)

	// simulate a missed cascade by resetting the drone behind the API's back
	d, _ := a.GetDrone(d1.Id)
	d.Status = drone.StatusAvailable
	a.db.Set(database.Drones, d.Id, string(d.Bytes()))

	a.ReconcileDroneStatus()

	repaired, _ := a.GetDrone(d1.Id)
	if repaired.Status != drone.StatusInMission {
		t.Fatalf(`The sweep should repair drones referenced by in-progress missions, got '%v'`, repaired.Status)
	}

	// the reverse direction: drone stuck in-mission after the mission ended
	a.ControlMission(m.Id, mission.ActionComplete)
	d, _ = a.GetDrone(d1.Id)
	d.Status = drone.StatusInMission
	a.db.Set(database.Drones, d.Id, string(d.Bytes()))

	a.ReconcileDroneStatus()

	repaired, _ = a.GetDrone(d1.Id)
	if repaired.Status != drone.StatusAvailable {
		t.Fatalf(`The sweep should release drones with no active mission, got '%v'`, repaired.Status)
	}
}
