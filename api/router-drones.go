package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/model"
)

// getDrones godoc
// @Summary Gets all drones in the fleet.
// @Description Returns every registered drone, optionally filtered by status with ?status=.
// @ID get-drones
// @Tags Drone
// @Param status query string false "Filter drones by status"
// @Success 200 {object} []drone.Drone
// @Failure 400,500 {object} model.Error
// @Router /api/v1/drones/ [get]
func (a *API) getDrones(w http.ResponseWriter, r *http.Request) {
	drones, err := a.ListDrones(r.URL.Query().Get("status"))
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, drones)
}

// getDrone godoc
// @Summary Gets drone from ID.
// @ID get-drone
// @Tags Drone
// @Param id path string true "The id of the drone"
// @Success 200 {object} drone.Drone
// @Failure 404,500 {object} model.Error
// @Router /api/v1/drones/{id} [get]
func (a *API) getDrone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	d, err := a.GetDrone(vars["id"])
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, d)
}

// postDrone godoc
// @Summary Registers a new drone.
// @Description Registers a drone into the fleet. New drones always start available.
// @ID register-drone
// @Tags Drone
// @Param Body body model.DroneCreateRequest true "The drone to register."
// @Success 200 {object} drone.Drone
// @Failure 400,500 {object} model.Error
// @Router /api/v1/drones [post]
func (a *API) postDrone(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)
	var req model.DroneCreateRequest
	if err := json.Unmarshal(reqBody, &req); err != nil {
		handleError(&drone.ValidationError{Detail: err.Error()}, w)
		return
	}

	d, err := a.RegisterDrone(req)
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, d)
}

// deleteDrone godoc
// @Summary Removes a drone from the fleet.
// @Description Deletes the drone unless a non-terminal mission still references it.
// @ID delete-drone
// @Tags Drone
// @Param id path string true "The id of the drone"
// @Success 200 {object} model.Success
// @Failure 404,409,500 {object} model.Error
// @Router /api/v1/drones/{id} [delete]
func (a *API) deleteDrone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	droneId := vars["id"]
	if err := a.DeleteDrone(droneId); err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, model.Success{Message: "Deleted " + droneId})
}

// putDroneStatus godoc
// @Summary Updates a drone's status and/or battery level.
// @Description Reports drone state from the field. Moving an in-mission drone to maintenance is rejected.
// @ID set-drone-status
// @Tags Drone
// @Param id path string true "The id of the drone"
// @Param Body body model.DroneStatusRequest true "The new status and/or battery level."
// @Success 200 {object} drone.Drone
// @Failure 400,404,429,500 {object} model.Error
// @Router /api/v1/drones/{id}/status [put]
func (a *API) putDroneStatus(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)
	var req model.DroneStatusRequest
	if err := json.Unmarshal(reqBody, &req); err != nil {
		handleError(&drone.ValidationError{Detail: err.Error()}, w)
		return
	}

	vars := mux.Vars(r)
	d, err := a.SetDroneStatus(vars["id"], req.Status, req.BatteryLevel)
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, d)
}

// postDroneMaintenance godoc
// @Summary Starts or ends a maintenance window for a drone.
// @Description Action "start" moves the drone into maintenance and stamps lastMaintenance; "stop" returns it to available.
// @ID drone-maintenance
// @Tags Drone
// @Param id path string true "The id of the drone"
// @Param Body body model.MaintenanceRequest true "start or stop"
// @Success 200 {object} drone.Drone
// @Failure 400,404,429,500 {object} model.Error
// @Router /api/v1/drones/{id}/maintenance [post]
func (a *API) postDroneMaintenance(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)
	var req model.MaintenanceRequest
	if err := json.Unmarshal(reqBody, &req); err != nil {
		handleError(&drone.ValidationError{Detail: err.Error()}, w)
		return
	}

	var start bool
	switch req.Action {
	case "start":
		start = true
	case "stop":
		start = false
	default:
		handleError(&drone.ValidationError{Detail: "maintenance action must be 'start' or 'stop', got '" + req.Action + "'"}, w)
		return
	}

	vars := mux.Vars(r)
	d, err := a.MaintenanceDrone(vars["id"], start)
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, d)
}
