package api

import (
	"time"

	"github.com/kestrel-uas/kestrel/database"
	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

// RegisterDrone adds a new drone to the fleet. Drones start available.
func (a *API) RegisterDrone(req model.DroneCreateRequest) (drone.Drone, error) {
	now := time.Now()
	d := drone.Drone{
		Id:              newId(),
		Name:            req.Name,
		Model:           req.Model,
		Status:          drone.StatusAvailable,
		BatteryLevel:    req.BatteryLevel,
		LastMaintenance: now,
		LastSeen:        now,
		Created:         now,
		Updated:         now,
	}
	if err := d.Validate(); err != nil {
		return drone.Drone{}, err
	}

	if err := a.db.Set(database.Drones, d.Id, string(d.Bytes())); err != nil {
		log.Warnf("Error in RegisterDrone when updating database: %v", err)
		return drone.Drone{}, err
	}

	a.ws <- message{"droneRegistered", d.Bytes()}
	log.Infof("Registered drone '%v' (%v)", d.Id, d.Name)
	return d, nil
}

// GetDrone gets an existing drone by id.
func (a *API) GetDrone(droneId string) (drone.Drone, error) {
	droneString, ok := a.db.Get(database.Drones, droneId)
	if !ok {
		return drone.Drone{}, &drone.NotFoundError{Id: droneId}
	}
	return drone.NewFromJSON([]byte(droneString))
}

// ListDrones returns the fleet, optionally filtered by status. An empty
// filter returns every drone.
func (a *API) ListDrones(statusFilter string) ([]drone.Drone, error) {
	var filter drone.Status
	if statusFilter != "" {
		parsed, err := drone.ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	ids, err := a.db.List(database.Drones)
	if err != nil {
		return nil, err
	}
	drones := make([]drone.Drone, 0, len(ids))
	for _, id := range ids {
		d, err := a.GetDrone(id)
		if err != nil {
			log.Warnf("Skipping unreadable drone '%v': %v", id, err)
			continue
		}
		if filter != "" && d.Status != filter {
			continue
		}
		drones = append(drones, d)
	}
	return drones, nil
}

// SetDroneStatus is the operator-facing status toggle. Either field may be
// omitted: an empty status updates the battery only. The drone package
// rejects moving a flying drone into maintenance; battery level, when
// provided, is validated and updated in the same transaction.
func (a *API) SetDroneStatus(droneId string, statusString string, batteryLevel *int) (drone.Drone, error) {
	var status drone.Status
	if statusString != "" {
		parsed, err := drone.ParseStatus(statusString)
		if err != nil {
			return drone.Drone{}, err
		}
		status = parsed
	}
	if batteryLevel != nil {
		if err := drone.ValidateBattery(*batteryLevel); err != nil {
			return drone.Drone{}, err
		}
	}
	if status == "" && batteryLevel == nil {
		return drone.Drone{}, &drone.ValidationError{Detail: "nothing to update: provide a status and/or a batteryLevel"}
	}

	var updated drone.Drone
	txnFunc := func(droneString string) (string, error) {
		d, err := drone.NewFromJSON([]byte(droneString))
		if err != nil {
			return "", err
		}
		if status != "" {
			if err := d.SetStatus(status); err != nil {
				return "", err
			}
		}
		if batteryLevel != nil {
			d.BatteryLevel = *batteryLevel
		}
		updated = d
		return string(d.Bytes()), nil
	}

	err := a.transaction(txnFunc, database.Drones, droneId)
	if err != nil {
		if _, ok := err.(*database.RecordNotFoundError); ok {
			err = &drone.NotFoundError{Id: droneId}
		}
		return drone.Drone{}, err
	}

	log.Infof("Drone '%v' is now %v", droneId, updated.Status)
	a.ws <- message{"droneUpdate", updated.Bytes()}
	return updated, nil
}

// MaintenanceDrone starts or stops maintenance on a drone. Starting is
// subject to the same in-mission guard as any other status change; both
// directions refresh the last maintenance timestamp.
func (a *API) MaintenanceDrone(droneId string, start bool) (drone.Drone, error) {
	status := drone.StatusAvailable
	if start {
		status = drone.StatusMaintenance
	}

	var updated drone.Drone
	txnFunc := func(droneString string) (string, error) {
		d, err := drone.NewFromJSON([]byte(droneString))
		if err != nil {
			return "", err
		}
		if err := d.SetStatus(status); err != nil {
			return "", err
		}
		d.LastMaintenance = time.Now()
		updated = d
		return string(d.Bytes()), nil
	}

	err := a.transaction(txnFunc, database.Drones, droneId)
	if err != nil {
		if _, ok := err.(*database.RecordNotFoundError); ok {
			err = &drone.NotFoundError{Id: droneId}
		}
		return drone.Drone{}, err
	}

	a.ws <- message{"droneUpdate", updated.Bytes()}
	return updated, nil
}

// DeleteDrone removes a drone from the fleet, unless a mission that has not
// ended still references it.
func (a *API) DeleteDrone(droneId string) error {
	if _, err := a.GetDrone(droneId); err != nil {
		return err
	}

	missions, err := a.ListMissions()
	if err != nil {
		return err
	}
	for i := range missions {
		m := &missions[i]
		if m.Status.Terminal() {
			continue
		}
		for _, id := range m.DroneIDs {
			if id == droneId {
				return &model.DroneInUseError{DroneId: droneId, MissionId: m.Id}
			}
		}
	}

	a.db.Delete(database.Drones, droneId)
	a.ws <- message{"droneDeleted", []byte(droneId)}
	log.Infof("Deleted drone '%v'", droneId)
	return nil
}

// referencedBy returns the statuses of all non-terminal missions that
// reference the drone. Used by the reconciliation sweep.
func referencedBy(missions []mission.Mission, droneId string) []mission.Status {
	var statuses []mission.Status
	for i := range missions {
		m := &missions[i]
		if m.Status.Terminal() {
			continue
		}
		for _, id := range m.DroneIDs {
			if id == droneId {
				statuses = append(statuses, m.Status)
			}
		}
	}
	return statuses
}
