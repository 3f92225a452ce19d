package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/kestrel-uas/kestrel/model"
	"gopkg.in/yaml.v3"
)

type Client struct {
	BaseUrl string
}

// New creates a Kestrel client instance.
func New(baseUrl string) Client {

	if baseUrl == "" {
		baseUrl = os.Getenv("KESTREL_BASE_URL")
	}
	if baseUrl == "" {
		// look for a locally running kestrel server
		baseUrl = "http://localhost:8000/api/v1"
		req, _ := http.NewRequest("GET", baseUrl, nil)
		httpClient := &http.Client{}
		_, err := httpClient.Do(req)
		if err != nil {
			fmt.Println("A base URL (e.g. 'http://localhost:8000/api/v1') was not provided, and no Kestrel API was found locally. Provide the base URL with the 'KESTREL_BASE_URL' environment variable.")
		}
	} else if !(strings.HasPrefix(baseUrl, "http://") || strings.HasPrefix(baseUrl, "https://")) {
		fmt.Printf("Base URL '%s' isn't a valid URL; must start with either 'http://' or 'https://'\n", baseUrl)
		os.Exit(1)
	} else {
		baseUrl = strings.TrimSuffix(baseUrl, "/")
	}

	client := Client{baseUrl}

	// Check the health of the selected API server. This will only produce a warning if it fails.
	healthCheckError := healthCheck(baseUrl)
	if healthCheckError != nil {
		fmt.Printf("Warning: Server health check failed. Check that the URL '%v' is correct and the server is running. Error: %v\n", baseUrl, healthCheckError.Error())
		if !strings.HasSuffix(baseUrl, "/api/v1") {
			fmt.Println("Warning: Base URL doesn't end with '/api/v1', which is the standard base path.")
		}
	}

	return client
}

// loadMissionFile reads a mission definition from a JSON or YAML file and
// returns the create request body as JSON. Inline JSON is passed through.
func loadMissionFile(definition string) ([]byte, error) {
	if strings.HasSuffix(definition, ".json") {
		return os.ReadFile(definition)
	}
	if strings.HasSuffix(definition, ".yaml") || strings.HasSuffix(definition, ".yml") {
		data, err := os.ReadFile(definition)
		if err != nil {
			return nil, err
		}
		var m map[string]interface{}
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return json.Marshal(m)
	}
	return []byte(definition), nil
}

// CreateMission creates a new mission from a definition, which can be a
// path to a JSON or YAML mission file or inline JSON.
func (client *Client) CreateMission(definition string) (model.Mission, error) {
	body, err := loadMissionFile(definition)
	if err != nil {
		return model.Mission{}, err
	}
	var mission model.Mission
	resp := client.post("/missions", body)
	err = parseResponse(resp, &mission)
	return mission, err
}

func (client *Client) GetMission(missionId string) (model.Mission, error) {
	var mission model.Mission
	resp := client.get("/missions/" + missionId)
	err := parseResponse(resp, &mission)
	return mission, err
}

func (client *Client) ListMissions() ([]model.Mission, error) {
	var missions []model.Mission
	resp := client.get("/missions/")
	err := parseResponse(resp, &missions)
	return missions, err
}

func (client *Client) DeleteMission(missionId string) error {
	var success model.Success
	resp := client.delete("/missions/" + missionId)
	return parseResponse(resp, &success)
}

// StartMission starts a scheduled mission.
func (client *Client) StartMission(missionId string) (model.Mission, error) {
	var mission model.Mission
	resp := client.post("/missions/"+missionId+"/start", []byte{})
	err := parseResponse(resp, &mission)
	return mission, err
}

// ControlMission applies a lifecycle action (pause, resume, abort, complete)
// to a mission.
func (client *Client) ControlMission(missionId string, action string) (model.Mission, error) {
	var mission model.Mission
	reqJSON, _ := json.Marshal(model.MissionControlRequest{Action: action})
	resp := client.post("/missions/"+missionId+"/control", reqJSON)
	err := parseResponse(resp, &mission)
	return mission, err
}

// MissionStatus returns a mission with its computed progress and drone
// battery levels.
func (client *Client) MissionStatus(missionId string) (model.MissionStatusResponse, error) {
	var status model.MissionStatusResponse
	resp := client.get("/missions/" + missionId + "/status")
	err := parseResponse(resp, &status)
	return status, err
}

// RegisterDrone adds a drone to the fleet.
func (client *Client) RegisterDrone(name, droneModel string, batteryLevel int) (model.Drone, error) {
	var drone model.Drone
	reqJSON, _ := json.Marshal(model.DroneCreateRequest{Name: name, Model: droneModel, BatteryLevel: batteryLevel})
	resp := client.post("/drones", reqJSON)
	err := parseResponse(resp, &drone)
	return drone, err
}

func (client *Client) GetDrone(droneId string) (model.Drone, error) {
	var drone model.Drone
	resp := client.get("/drones/" + droneId)
	err := parseResponse(resp, &drone)
	return drone, err
}

// ListDrones returns the fleet, optionally filtered by status.
func (client *Client) ListDrones(status string) ([]model.Drone, error) {
	var drones []model.Drone
	path := "/drones/"
	if status != "" {
		path += "?status=" + status
	}
	resp := client.get(path)
	err := parseResponse(resp, &drones)
	return drones, err
}

func (client *Client) DeleteDrone(droneId string) error {
	var success model.Success
	resp := client.delete("/drones/" + droneId)
	return parseResponse(resp, &success)
}

// SetDroneStatus updates a drone's status and/or battery level.
func (client *Client) SetDroneStatus(droneId string, status string, batteryLevel *int) (model.Drone, error) {
	var drone model.Drone
	reqJSON, _ := json.Marshal(model.DroneStatusRequest{Status: status, BatteryLevel: batteryLevel})
	resp := client.put("/drones/"+droneId+"/status", reqJSON)
	err := parseResponse(resp, &drone)
	return drone, err
}

// DroneMaintenance starts or stops a maintenance window.
func (client *Client) DroneMaintenance(droneId string, start bool) (model.Drone, error) {
	action := "stop"
	if start {
		action = "start"
	}
	var drone model.Drone
	reqJSON, _ := json.Marshal(model.MaintenanceRequest{Action: action})
	resp := client.post("/drones/"+droneId+"/maintenance", reqJSON)
	err := parseResponse(resp, &drone)
	return drone, err
}
