package api

import (
	"runtime"
	"time"

	"github.com/kestrel-uas/kestrel/database"
	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
)

// Monitor checks the health of the API server and performs other duties at regular intervals
func (a *API) Monitor() {
	for {
		a.ReconcileDroneStatus()
		a.DeleteExpiredMissions()
		a.HealthCheck()
		time.Sleep(a.config.SyncInterval)
	}
}

// ReconcileDroneStatus repairs drift between drone statuses and the missions
// that reference them. The cascade that runs after a mission transition is
// best-effort; this sweep recomputes each drone's desired status from the
// missions currently in the database and reapplies it. Operator-owned states
// (maintenance, charging, offline) are left alone by syncDroneStatus, and a
// drone referenced by any in-progress mission is wanted in-mission.
func (a *API) ReconcileDroneStatus() {
	missions, err := a.ListMissions()
	if err != nil {
		log.Errorf("Reconciliation sweep couldn't list missions: %v", err)
		return
	}
	drones, err := a.ListDrones("")
	if err != nil {
		log.Errorf("Reconciliation sweep couldn't list drones: %v", err)
		return
	}

	repaired := 0
	for i := range drones {
		d := &drones[i]
		switch d.Status {
		case drone.StatusMaintenance, drone.StatusCharging, drone.StatusOffline:
			continue
		}

		desired := drone.StatusAvailable
		for _, status := range referencedBy(missions, d.Id) {
			if status == mission.StatusInProgress {
				desired = drone.StatusInMission
				break
			}
		}

		if d.Status == desired {
			continue
		}
		log.Warnf("Drone '%v' is %v but should be %v; repairing", d.Id, d.Status, desired)
		if err := a.syncDroneStatus(d.Id, desired); err != nil {
			log.Errorf("Reconciliation failed for drone '%v': %v", d.Id, err)
			continue
		}
		repaired++
	}

	if repaired > 0 {
		log.Infof("Reconciliation sweep repaired %v drone(s)", repaired)
	}
}

// DeleteExpiredMissions deletes missions that ended longer ago than
// Config.MissionExpiry. Only terminal missions have an end date, so active
// missions are never touched.
func (a *API) DeleteExpiredMissions() {
	missions, err := a.ListMissions()
	if err != nil {
		log.Errorf("Couldn't list missions for expiry: %v", err)
		return
	}

	deleted := 0
	for i := range missions {
		m := &missions[i]
		if !m.Status.Terminal() || m.EndDate.IsZero() {
			continue
		}
		if time.Since(m.EndDate) > a.config.MissionExpiry {
			a.db.Delete(database.Missions, m.Id)
			a.ws <- message{"missionDeleted", []byte(m.Id)}
			log.Infof("Deleted mission '%v' because it ended over %s ago", m.Id, a.config.MissionExpiry)
			deleted++
		}
	}
	if deleted > 0 {
		log.Infof("Expiry sweep deleted %v mission(s)", deleted)
	}
}

// HealthCheck checks database health and the server's own memory usage.
func (a *API) HealthCheck() {
	if err := a.db.Health(); err != nil {
		switch err.(type) {
		case *database.MemoryUsageError:
			log.Warn(err.Error())
		default:
			log.Error(err.Error())
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	usedMiB := int64(memStats.Alloc / 1024 / 1024)
	if a.config.MemoryLimitMiB > 0 && usedMiB > a.config.MemoryLimitMiB {
		log.Warnf("Server memory usage is %vMiB, which exceeds the %vMiB limit", usedMiB, a.config.MemoryLimitMiB)
	}
}
