package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

// getMission godoc
// @Summary Gets mission from ID.
// @Description Gets an existing mission using the ID provided.
// @ID get-mission
// @Tags Mission
// @Param id path string true "The id of the mission"
// @Success 200 {object} mission.Mission
// @Failure 404,500 {object} model.Error
// @Router /api/v1/missions/{id} [get]
func (a *API) getMission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	m, err := a.GetMission(vars["id"])
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, m)
}

// getMissions godoc
// @Summary Gets all missions.
// @Description Returns every mission in the database.
// @ID get-missions
// @Tags Mission
// @Success 200 {object} []mission.Mission
// @Failure 500 {object} model.Error
// @Router /api/v1/missions/ [get]
func (a *API) getMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := a.ListMissions()
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, missions)
}

// postMission godoc
// @Summary Creates a new mission.
// @Description Creates a new mission in pending or scheduled status and returns it.
// @ID create-mission
// @Tags Mission
// @Param Body body model.MissionCreateRequest true "The mission definition."
// @Success 200 {object} mission.Mission
// @Failure 400,500 {object} model.Error
// @Router /api/v1/missions [post]
func (a *API) postMission(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)
	var req model.MissionCreateRequest
	if err := json.Unmarshal(reqBody, &req); err != nil {
		handleError(&mission.ValidationError{Detail: err.Error()}, w)
		return
	}

	m, err := a.CreateMission(req)
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, m)
}

// putMission godoc
// @Summary Edits a mission's planning fields.
// @Description Edits name, description, drones, flight path, or progress. Status changes are rejected; use the control route.
// @ID update-mission
// @Tags Mission
// @Param id path string true "The id of the mission"
// @Param Body body model.MissionUpdateRequest true "The fields to update."
// @Success 200 {object} mission.Mission
// @Failure 400,404,500 {object} model.Error
// @Router /api/v1/missions/{id} [put]
func (a *API) putMission(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)
	var req model.MissionUpdateRequest
	if err := json.Unmarshal(reqBody, &req); err != nil {
		handleError(&mission.ValidationError{Detail: err.Error()}, w)
		return
	}

	vars := mux.Vars(r)
	m, err := a.UpdateMission(vars["id"], req)
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, m)
}

// deleteMission godoc
// @Summary Deletes a mission given its ID.
// @Description Deletes any existing mission that is not currently in progress.
// @ID delete-mission
// @Tags Mission
// @Param id path string true "The id of the mission"
// @Success 200 {object} model.Success
// @Failure 404,409,500 {object} model.Error
// @Router /api/v1/missions/{id} [delete]
func (a *API) deleteMission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	missionId := vars["id"]
	if err := a.DeleteMission(missionId); err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, model.Success{Message: "Deleted " + missionId})
}

// postMissionControl godoc
// @Summary Applies a lifecycle action to a mission.
// @Description Applies pause, resume, abort, or complete. This route is transactional: concurrent actions on the same mission result in a 429 response and the client retries.
// @ID control-mission
// @Tags Mission
// @Param id path string true "The id of the mission"
// @Param Body body model.MissionControlRequest true "The action to apply."
// @Success 200 {object} mission.Mission
// @Failure 400,404,429,500 {object} model.Error
// @Router /api/v1/missions/{id}/control [post]
func (a *API) postMissionControl(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)
	var req model.MissionControlRequest
	if err := json.Unmarshal(reqBody, &req); err != nil {
		handleError(&mission.ValidationError{Detail: err.Error()}, w)
		return
	}
	action, err := mission.ParseAction(req.Action)
	if err != nil {
		handleError(err, w)
		return
	}

	vars := mux.Vars(r)
	m, err := a.ControlMission(vars["id"], action)
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, m)
}

// postMissionStart godoc
// @Summary Starts a scheduled mission.
// @Description Starts the mission if every referenced drone is available; otherwise nothing is written.
// @ID start-mission
// @Tags Mission
// @Param id path string true "The id of the mission"
// @Success 200 {object} mission.Mission
// @Failure 400,404,429,500 {object} model.Error
// @Router /api/v1/missions/{id}/start [post]
func (a *API) postMissionStart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	m, err := a.StartMission(vars["id"])
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, m)
}

// getMissionStatus godoc
// @Summary Gets a mission with its computed progress.
// @Description Returns the mission, derived progress (elapsed time, percent, distance, coverage), and drone battery levels.
// @ID get-mission-status
// @Tags Mission
// @Param id path string true "The id of the mission"
// @Success 200 {object} model.MissionStatusResponse
// @Failure 404,500 {object} model.Error
// @Router /api/v1/missions/{id}/status [get]
func (a *API) getMissionStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := a.MissionStatus(vars["id"])
	if err != nil {
		handleError(err, w)
		return
	}
	writeJSON(w, res)
}
