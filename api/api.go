package api

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/acme/autocert"

	"github.com/kestrel-uas/kestrel/database"
	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

// API is an instance of the Kestrel survey operations API
type API struct {
	db       database.Database // connection to a database instance, either Redis or 'local' held within a single object in Go
	router   *mux.Router       // the router that routes all requests to request handlers
	ws       chan message      // WebSocket channel for dashboard events
	config   Config            // configuration - see api/config.go
	protocol string            // this is set to either 'http' or 'https' depending on config.TLS
}

// New creates the Kestrel API object.
// It will create or connect to a database depending on the settings in the config file.
// local db will only persist while program is running.
func New(configPath string) *API {
	initLog()

	config := LoadConfig(configPath)

	var db database.Database
	// attempt to connect to redis - if not found then use local db
	db = database.NewRedisDatabase(config.Redis.Addr, config.Redis.Password, config.Redis.DB, config.MemoryLimitMiB)
	err := db.Ping()
	switch e := err.(type) {
	case nil:
		msg := fmt.Sprintf("Connected to Redis Database at %v", config.Redis.Addr)
		log.Info(msg)
		if isTerminal {
			fmt.Println("🚨 " + msg)
		}
	case *net.OpError:
		switch e.Err.(type) {
		case *os.SyscallError:
			msg := fmt.Sprintf("Couldn't connect to Redis Database at %v.", config.Redis.Addr)
			log.Warn(msg)

			// if redis address is not the default then this is an error
			if config.Redis.Addr != "localhost:6379" {
				panic(msg)
			} else if isTerminal {
				fmt.Println("⚠️ " + msg + " Using in-memory database")
			}

			db = database.NewLocalDatabase()
		case *net.AddrError:
			log.Error("Do not add protocol to Redis.Addr")
			log.Error(err)
			panic(err) // this happens when user puts protocol in Redis.Addr
		default:
			log.Error(err)
			panic(err)
		}
	default:
		log.Error(err)
		panic(err)
	}

	db.CreateNamespace(database.Missions)
	db.CreateNamespace(database.Drones)

	// if non-default TLS cert is being used, or certs exist at the default location, try to use https
	protocol := "http"
	if config.TLS.Host != "" || config.TLS.CertFile != "cert.pem" || config.TLS.KeyFile != "key.pem" {
		protocol = "https"
	} else {
		if _, err := os.Stat(config.TLS.CertFile); err == nil {
			protocol = "https"
		}
		if _, err := os.Stat(config.TLS.KeyFile); err == nil {
			protocol = "https"
		}
	}

	a := API{db, nil, nil, config, protocol}

	log.Debugf("API will use the %s protocol", protocol)

	a.initRouter()
	a.initDashboard()
	a.initWebSocket()
	return &a
}

// transaction runs txnFunc against one record inside a store transaction.
// Retry the transaction at least 3 times: it is highly likely that the record
// will be unlocked within milliseconds, but any more than that risks creating
// issues for the client. If the record is still contended after 3 attempts
// then the API returns 429, which causes the client to retry.
func (a *API) transaction(txnFunc func(string) (string, error), namespace string, id string) error {
	var err error
	for attempts := 0; attempts < 3; attempts++ {
		err = a.db.DoTransaction(txnFunc, namespace, id)
		if err == nil {
			return nil
		}
		switch err.(type) {
		case *database.TransactionFailedError:
			log.Debugf("Record '%v' was contended. This is attempt number %v.", id, attempts+1)
			time.Sleep(10 * time.Millisecond * time.Duration((attempts+1)*(attempts+1)))
			// retry the transaction
		default:
			return err
		}
	}
	return err
}

// CreateMission validates and stores a new mission. Missions are created in
// pending or scheduled status only; every other status is reached through
// lifecycle transitions.
func (a *API) CreateMission(req model.MissionCreateRequest) (mission.Mission, error) {
	status := mission.StatusScheduled
	if req.Status != "" {
		parsed, err := mission.ParseStatus(req.Status)
		if err != nil {
			return mission.Mission{}, err
		}
		if parsed != mission.StatusPending && parsed != mission.StatusScheduled {
			return mission.Mission{}, &mission.ValidationError{Detail: fmt.Sprintf("new missions must be pending or scheduled, not %v", parsed)}
		}
		status = parsed
	}

	now := time.Now()
	m := mission.Mission{
		Id:             newId(),
		Name:           req.Name,
		Description:    req.Description,
		Status:         status,
		DroneIDs:       req.DroneIDs,
		FlightPath:     req.FlightPath,
		Altitude:       req.Altitude,
		Speed:          req.Speed,
		DataCollection: req.DataCollection,
		Created:        now,
		Updated:        now,
	}
	if err := m.Validate(); err != nil {
		return mission.Mission{}, err
	}

	// every referenced drone must exist at planning time
	for _, droneId := range m.DroneIDs {
		if _, ok := a.db.Get(database.Drones, droneId); !ok {
			return mission.Mission{}, &drone.NotFoundError{Id: droneId}
		}
	}

	if err := a.db.Set(database.Missions, m.Id, string(m.Bytes())); err != nil {
		log.Warnf("Error in CreateMission when updating database: %v", err)
		return mission.Mission{}, err
	}

	a.ws <- message{"missionCreation", m.Bytes()}
	log.Infof("Mission with id '%v' has been created in %v status", m.Id, m.Status)

	return m, nil
}

// GetMission gets an existing mission by id.
func (a *API) GetMission(missionId string) (mission.Mission, error) {
	missionString, ok := a.db.Get(database.Missions, missionId)
	if !ok {
		return mission.Mission{}, &mission.NotFoundError{Id: missionId}
	}
	return mission.NewFromJSON([]byte(missionString))
}

// ListMissions returns all missions in the database. Records that fail to
// parse are skipped and logged; they should not take the whole fleet view down.
func (a *API) ListMissions() ([]mission.Mission, error) {
	ids, err := a.db.List(database.Missions)
	if err != nil {
		return nil, err
	}
	missions := make([]mission.Mission, 0, len(ids))
	for _, id := range ids {
		m, err := a.GetMission(id)
		if err != nil {
			log.Warnf("Skipping unreadable mission '%v': %v", id, err)
			continue
		}
		missions = append(missions, m)
	}
	return missions, nil
}

// UpdateMission edits a mission's non-status fields. The one permitted
// status edit is promoting a pending mission to scheduled; everything else
// must go through ControlMission so that the transition table is enforced.
func (a *API) UpdateMission(missionId string, req model.MissionUpdateRequest) (mission.Mission, error) {
	var updated mission.Mission

	txnFunc := func(missionString string) (string, error) {
		m, err := mission.NewFromJSON([]byte(missionString))
		if err != nil {
			return "", err
		}

		if req.Status != nil {
			parsed, err := mission.ParseStatus(*req.Status)
			if err != nil {
				return "", err
			}
			if parsed != m.Status {
				if !(m.Status == mission.StatusPending && parsed == mission.StatusScheduled) {
					return "", &mission.ValidationError{Detail: "status can only be changed through control actions"}
				}
				m.Status = parsed
			}
		}
		if req.Name != nil {
			m.Name = *req.Name
		}
		if req.Description != nil {
			m.Description = *req.Description
		}
		if req.DroneIDs != nil {
			for _, droneId := range *req.DroneIDs {
				if _, ok := a.db.Get(database.Drones, droneId); !ok {
					return "", &drone.NotFoundError{Id: droneId}
				}
			}
			m.DroneIDs = *req.DroneIDs
		}
		if req.FlightPath != nil {
			m.FlightPath = *req.FlightPath
		}
		if req.CompletedWaypoints != nil {
			if *req.CompletedWaypoints < 0 {
				return "", &mission.ValidationError{Detail: "completedWaypoints cannot be negative"}
			}
			m.CompletedWaypoints = *req.CompletedWaypoints
		}
		m.Updated = time.Now()

		if err := m.Validate(); err != nil {
			return "", err
		}

		updated = m
		return string(m.Bytes()), nil
	}

	err := a.transaction(txnFunc, database.Missions, missionId)
	if err != nil {
		if _, ok := err.(*database.RecordNotFoundError); ok {
			err = &mission.NotFoundError{Id: missionId}
		}
		return mission.Mission{}, err
	}

	a.ws <- message{"missionUpdate", updated.Bytes()}
	return updated, nil
}

// DeleteMission removes a mission. A mission that is currently flying cannot
// be deleted; it must be completed or aborted first.
func (a *API) DeleteMission(missionId string) error {
	m, err := a.GetMission(missionId)
	if err != nil {
		return err
	}
	if m.Status == mission.StatusInProgress {
		return &model.MissionActiveError{Id: missionId}
	}
	a.db.Delete(database.Missions, missionId)
	a.ws <- message{"missionDeleted", []byte(missionId)}
	log.Infof("Deleted mission '%v'", missionId)
	return nil
}

// ControlMission applies one lifecycle action (pause, resume, abort,
// complete) to a mission. The check-and-set runs inside a store transaction
// so two concurrent actions on the same mission can never both commit; the
// loser gets a conflict and retries. The drone cascade happens after the
// mission transition is committed and is best-effort: its failure is logged
// but never rolls back or fails the mission update.
func (a *API) ControlMission(missionId string, action mission.Action) (mission.Mission, error) {
	log.Debugf("Applying action '%v' to mission '%v'", action, missionId)

	var updated mission.Mission

	txnFunc := func(missionString string) (string, error) {
		m, err := mission.NewFromJSON([]byte(missionString))
		if err != nil {
			// unlikely because all missions are validated before they get saved
			return "", err
		}
		if err := m.Apply(action); err != nil {
			return "", err
		}
		updated = m
		return string(m.Bytes()), nil
	}

	err := a.transaction(txnFunc, database.Missions, missionId)
	if err != nil {
		if _, ok := err.(*database.RecordNotFoundError); ok {
			err = &mission.NotFoundError{Id: missionId}
		}
		log.Debugf("Action '%v' on mission '%v' failed: %v", action, missionId, err)
		return mission.Mission{}, err
	}

	log.Infof("Mission '%v' is now %v", missionId, updated.Status)
	a.syncDrones(&updated)
	a.ws <- message{"missionUpdate", updated.Bytes()}

	return updated, nil
}

// StartMission begins a scheduled mission. Every drone the mission
// references must currently be available; if any is not, nothing is written
// at all. On success the referenced drones are flipped to in-mission after
// the mission commit - sequentially, with failures logged and left to the
// reconciliation sweep.
func (a *API) StartMission(missionId string) (mission.Mission, error) {
	m, err := a.GetMission(missionId)
	if err != nil {
		return mission.Mission{}, err
	}
	if m.Status != mission.StatusScheduled {
		return mission.Mission{}, &mission.InvalidTransitionError{
			Action:  mission.ActionStart,
			Current: m.Status,
			Allowed: mission.AllowedActions(m.Status),
		}
	}

	// all-or-nothing availability check across the whole drone set. A drone
	// that no longer exists counts as unavailable.
	var blocked []string
	for _, droneId := range m.DroneIDs {
		d, err := a.GetDrone(droneId)
		if err != nil || d.Status != drone.StatusAvailable {
			blocked = append(blocked, droneId)
		}
	}
	if len(blocked) > 0 {
		return mission.Mission{}, &model.DroneUnavailableError{DroneIDs: blocked}
	}

	var updated mission.Mission
	txnFunc := func(missionString string) (string, error) {
		m, err := mission.NewFromJSON([]byte(missionString))
		if err != nil {
			return "", err
		}
		// revalidated inside the transaction: a concurrent start loses here
		if err := m.Start(); err != nil {
			return "", err
		}
		updated = m
		return string(m.Bytes()), nil
	}

	err = a.transaction(txnFunc, database.Missions, missionId)
	if err != nil {
		if _, ok := err.(*database.RecordNotFoundError); ok {
			err = &mission.NotFoundError{Id: missionId}
		}
		return mission.Mission{}, err
	}

	log.Infof("Mission '%v' has started", missionId)
	a.syncDrones(&updated)
	a.ws <- message{"missionUpdate", updated.Bytes()}

	return updated, nil
}

// MissionStatus returns a mission together with its derived progress and
// the battery levels of its drones.
func (a *API) MissionStatus(missionId string) (model.MissionStatusResponse, error) {
	m, err := a.GetMission(missionId)
	if err != nil {
		return model.MissionStatusResponse{}, err
	}

	res := model.MissionStatusResponse{
		Mission:       m,
		Progress:      m.Progress(),
		BatteryLevels: []model.BatteryLevel{},
	}
	for _, droneId := range m.DroneIDs {
		d, err := a.GetDrone(droneId)
		if err != nil {
			log.Warnf("Mission '%v' references unknown drone '%v'", missionId, droneId)
			continue
		}
		res.BatteryLevels = append(res.BatteryLevels, model.BatteryLevel{
			DroneId:      d.Id,
			Name:         d.Name,
			BatteryLevel: d.BatteryLevel,
		})
	}
	return res, nil
}

// desiredDroneStatus derives the status a mission's drones should hold from
// the mission's committed status. Deriving from status rather than from the
// action makes the cascade idempotent, so a missed sync is repaired by the
// next reconciliation sweep.
func desiredDroneStatus(s mission.Status) drone.Status {
	if s == mission.StatusInProgress {
		return drone.StatusInMission
	}
	return drone.StatusAvailable
}

// syncDrones pushes the mission's desired drone status to every drone it
// references. Best-effort: errors are logged, never returned, because the
// mission transition has already been committed.
func (a *API) syncDrones(m *mission.Mission) {
	desired := desiredDroneStatus(m.Status)
	for _, droneId := range m.DroneIDs {
		if err := a.syncDroneStatus(droneId, desired); err != nil {
			log.Errorf("Drone status sync failed for drone '%v' on mission '%v': %v", droneId, m.Id, err)
		}
	}
}

// syncDroneStatus moves one drone to the desired status unless an operator
// owns its current state. Maintenance, charging, and offline drones are
// never touched by the cascade or the sweep.
func (a *API) syncDroneStatus(droneId string, desired drone.Status) error {
	txnFunc := func(droneString string) (string, error) {
		d, err := drone.NewFromJSON([]byte(droneString))
		if err != nil {
			return "", err
		}
		switch d.Status {
		case drone.StatusMaintenance, drone.StatusCharging, drone.StatusOffline:
			return droneString, nil
		}
		if d.Status == desired {
			return droneString, nil
		}
		if err := d.SetStatus(desired); err != nil {
			return "", err
		}
		a.ws <- message{"droneUpdate", d.Bytes()}
		return string(d.Bytes()), nil
	}
	err := a.transaction(txnFunc, database.Drones, droneId)
	if _, ok := err.(*database.RecordNotFoundError); ok {
		return &drone.NotFoundError{Id: droneId}
	}
	return err
}

// Port returns the port the server listens on.
func (a *API) Port() string {
	return a.config.Port
}

// Run starts the API server
func (a *API) Run() {

	var err error
	if a.protocol == "https" {

		msg := fmt.Sprintf("Kestrel ready to receive calls on https://%v/api/v1", a.config.TLS.Host)
		log.Info(msg)
		if isTerminal {
			fmt.Println("📡 " + msg)
		}

		if a.config.TLS.Auto {
			// use the ACME protocol to generate and renew certificates automatically
			log.Infof("Automatic TLS is enabled. Kestrel will attempt to generate a certificate for %s.", a.config.TLS.Host)

			certManager := autocert.Manager{
				Prompt:     autocert.AcceptTOS,
				HostPolicy: autocert.HostWhitelist(a.config.TLS.Host),
				Cache:      autocert.DirCache("certs"),
			}

			server := &http.Server{
				Addr:    ":https",
				Handler: a.router,
				TLSConfig: &tls.Config{
					GetCertificate: certManager.GetCertificate,
					MinVersion:     tls.VersionTLS12,
				},
			}

			go http.ListenAndServe(":http", certManager.HTTPHandler(nil))

			err = server.ListenAndServeTLS("", "") // key and cert are coming from Let's Encrypt

		} else {
			// if self-managed certificates are provided
			err = http.ListenAndServeTLS(":https", a.config.TLS.CertFile, a.config.TLS.KeyFile, a.router)
		}
	} else {
		msg := fmt.Sprintf("Kestrel ready to receive calls on http://localhost:%v/api/v1", a.config.Port)
		log.Info(msg)
		if isTerminal {
			fmt.Println("📡 " + msg)
		}

		err = http.ListenAndServe(":"+a.config.Port, a.router)
	}

	if err != nil {
		log.Error(err)
		panic(err)
	}
}
