package client

import "fmt"

// Create creates a new mission from the definition provided and prints its id
func Create(definition string) error {
	client := New("")
	mission, err := client.CreateMission(definition)
	if err != nil {
		return err
	}
	fmt.Println("New mission created with ID: " + mission.Id)
	return nil
}

// Start creates a mission from the definition provided, starts it immediately,
// and prints its id. If the definition looks like an existing mission id it is
// started instead.
func Start(definition string) error {
	client := New("")

	if m, err := client.GetMission(definition); err == nil {
		started, err := client.StartMission(m.Id)
		if err != nil {
			return err
		}
		fmt.Println("Mission " + started.Id + " has started")
		return nil
	}

	mission, err := client.CreateMission(definition)
	if err != nil {
		return err
	}
	started, err := client.StartMission(mission.Id)
	if err != nil {
		return err
	}
	fmt.Println("Mission " + started.Id + " has started")
	return nil
}

// Control applies a lifecycle action to a mission
func Control(missionId, action string) error {
	client := New("")
	mission, err := client.ControlMission(missionId, action)
	if err != nil {
		return err
	}
	fmt.Printf("Mission %v is now %v\n", mission.Id, mission.Status)
	return nil
}

// Status prints a mission's progress summary
func Status(missionId string) error {
	client := New("")
	status, err := client.MissionStatus(missionId)
	if err != nil {
		return err
	}
	fmt.Printf("Mission:  %v (%v)\n", status.Mission.Name, status.Mission.Id)
	fmt.Printf("Status:   %v\n", status.Mission.Status)
	fmt.Printf("Progress: %v%% (%v/%v waypoints)\n", status.Progress.Percent, status.Progress.CompletedWaypoints, status.Progress.TotalWaypoints)
	fmt.Printf("Elapsed:  %v\n", status.Progress.ElapsedTime)
	for _, b := range status.BatteryLevels {
		fmt.Printf("Drone %v (%v): %v%%\n", b.Name, b.DroneId, b.BatteryLevel)
	}
	return nil
}

// Fleet prints every drone in the fleet, optionally filtered by status
func Fleet(status string) error {
	client := New("")
	drones, err := client.ListDrones(status)
	if err != nil {
		return err
	}
	for i := range drones {
		d := &drones[i]
		fmt.Printf("%v  %v  %v  %v%%\n", d.Id, d.Name, d.Status, d.BatteryLevel)
	}
	return nil
}

// Register adds a drone to the fleet and prints its id
func Register(name, droneModel string, batteryLevel int) error {
	client := New("")
	drone, err := client.RegisterDrone(name, droneModel, batteryLevel)
	if err != nil {
		return err
	}
	fmt.Println("Registered drone with ID: " + drone.Id)
	return nil
}
