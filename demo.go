package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrel-uas/kestrel/api"
	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

// demo creates a new API instance and flies a demonstration survey mission
func demo(createCmd *cobra.Command) {
	configPath, _ := createCmd.Flags().GetString("config")

	s := "[1;38;2;58;145;172m"
	e := "[0m"
	fmt.Println("[1mKESTREL DEMONSTRATION MODE[0m")
	fmt.Printf("[37mstarting a local API server%[2]v\n", s, e)
	fmt.Printf(">>> %[1]vkestrel api%[2]v\n", s, e)

	a := api.New(configPath)
	go a.Run()
	go a.Monitor()

	time.Sleep(500 * time.Millisecond)

	fmt.Printf("[37mregistering the survey fleet%[2]v\n", s, e)
	fmt.Printf(">>> %[1]vkestrel register%[2]v [1m-n kestrel-1 -m wingtra-one%[2]v\n", s, e)
	fmt.Printf(">>> %[1]vkestrel register%[2]v [1m-n kestrel-2 -m wingtra-one%[2]v\n", s, e)

	d1, err := a.RegisterDrone(model.DroneCreateRequest{Name: "kestrel-1", Model: "wingtra-one", BatteryLevel: 98})
	if err != nil {
		panic(err)
	}
	d2, err := a.RegisterDrone(model.DroneCreateRequest{Name: "kestrel-2", Model: "wingtra-one", BatteryLevel: 87})
	if err != nil {
		panic(err)
	}

	fmt.Printf("[37mcreating a new survey mission%[2]v\n", s, e)
	fmt.Printf(">>> %[1]vkestrel create%[2]v [1m-m path/to/mission.yaml%[2]v\n", s, e)

	// a short mapping run over the Thames near Greenwich
	m, err := a.CreateMission(model.MissionCreateRequest{
		Name:        "greenwich-riverbank",
		Description: "Photogrammetry pass over the Greenwich riverbank",
		DroneIDs:    []string{d1.Id, d2.Id},
		FlightPath: []mission.Waypoint{
			{Latitude: 51.4826, Longitude: -0.0077, Altitude: 60, Action: "capture"},
			{Latitude: 51.4843, Longitude: -0.0023, Altitude: 60, Action: "capture"},
			{Latitude: 51.4861, Longitude: 0.0031, Altitude: 60, Action: "capture"},
			{Latitude: 51.4878, Longitude: 0.0085, Altitude: 60, Action: "capture"},
		},
		Altitude: 60,
		Speed:    12,
		DataCollection: mission.DataCollection{
			Frequency:  2,
			Sensors:    []string{"rgb", "multispectral"},
			Resolution: "4k",
		},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println("Created mission with ID '" + m.Id + "'")
	fmt.Printf("[37mgo to http://localhost:%[3]v to watch this mission on the dashboard%[2]v\n", s, e, a.Port())

	time.Sleep(2 * time.Second)
	fmt.Printf(">>> %[1]vkestrel start%[2]v [1m-m %[3]v%[2]v\n", s, e, m.Id)
	if _, err := a.StartMission(m.Id); err != nil {
		panic(err)
	}

	time.Sleep(3 * time.Second)
	fmt.Printf(">>> %[1]vkestrel control%[2]v [1m-m %[3]v -a pause%[2]v\n", s, e, m.Id)
	a.ControlMission(m.Id, mission.ActionPause)

	time.Sleep(2 * time.Second)
	fmt.Printf(">>> %[1]vkestrel control%[2]v [1m-m %[3]v -a resume%[2]v\n", s, e, m.Id)
	a.ControlMission(m.Id, mission.ActionResume)

	time.Sleep(3 * time.Second)
	fmt.Printf(">>> %[1]vkestrel control%[2]v [1m-m %[3]v -a complete%[2]v\n", s, e, m.Id)
	a.ControlMission(m.Id, mission.ActionComplete)

	status, err := a.MissionStatus(m.Id)
	if err == nil {
		fmt.Printf("Mission '%v' finished as %v after %v\n", m.Id, status.Mission.Status, status.Progress.ElapsedTime)
	}

	// keep the API running until the user exits
	exitSignal := make(chan os.Signal)
	signal.Notify(exitSignal, syscall.SIGINT, syscall.SIGTERM)
	<-exitSignal
}
