package drone

import (
	"testing"
)

func testDrone(status Status) Drone {
	return Drone{
		Id:           "d-test",
		Name:         "kestrel-1",
		Model:        "wingtra-one",
		Status:       status,
		BatteryLevel: 80,
	}
}

func TestDrone_SetStatus(t *testing.T) {
	d := testDrone(StatusAvailable)

	if err := d.SetStatus(StatusInMission); err != nil {
		t.Fatalf(`Available drones can enter a mission, got: %v`, err)
	}
	if d.Status != StatusInMission {
		t.Fatalf(`Drone should be in-mission, got '%v'`, d.Status)
	}
	if d.LastSeen.IsZero() {
		t.Fatalf(`Status changes refresh LastSeen`)
	}
}

func TestDrone_SetStatus_MaintenanceBlockedInMission(t *testing.T) {
	d := testDrone(StatusInMission)

	err := d.SetStatus(StatusMaintenance)
	if err == nil {
		t.Fatalf(`A flying drone cannot enter maintenance`)
	}
	if _, ok := err.(*StatusChangeError); !ok {
		t.Fatalf(`Expected StatusChangeError, got %T`, err)
	}
	if d.Status != StatusInMission {
		t.Fatalf(`Failed status change must not mutate the drone`)
	}

	// but an available drone can
	d2 := testDrone(StatusAvailable)
	if err := d2.SetStatus(StatusMaintenance); err != nil {
		t.Fatalf(`Available drones can enter maintenance, got: %v`, err)
	}
}

func TestValidateBattery(t *testing.T) {
	for _, level := range []int{0, 50, 100} {
		if err := ValidateBattery(level); err != nil {
			t.Fatalf(`Battery level %v should be valid, got: %v`, level, err)
		}
	}
	for _, level := range []int{-1, 101, 200} {
		if err := ValidateBattery(level); err == nil {
			t.Fatalf(`Battery level %v should be invalid`, level)
		}
	}
}

func TestDrone_Validate(t *testing.T) {
	d := testDrone(StatusAvailable)
	if err := d.Validate(); err != nil {
		t.Fatalf(`Test drone didn't pass validation: %v`, err)
	}

	d.Name = ""
	if err := d.Validate(); err == nil {
		t.Fatalf(`Drones must have a name`)
	}

	d = testDrone("airborne")
	if err := d.Validate(); err == nil {
		t.Fatalf(`Unknown statuses should fail validation`)
	}

	d = testDrone(StatusAvailable)
	d.BatteryLevel = 150
	if err := d.Validate(); err == nil {
		t.Fatalf(`Battery outside [0, 100] should fail validation`)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"available", "in-mission", "maintenance", "charging", "offline"} {
		if _, err := ParseStatus(s); err != nil {
			t.Fatalf(`'%v' should parse as a drone status, got: %v`, s, err)
		}
	}
	if _, err := ParseStatus("grounded"); err == nil {
		t.Fatalf(`Unknown statuses should be rejected`)
	}
}
