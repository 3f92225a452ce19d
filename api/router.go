package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/kestrel-uas/kestrel/model"
)

// GetStatus godoc
// @Summary Get API status.
// @Description Check that the API is available and healthy.
// @ID status
// @Success 200 {object} model.Success
// @Failure 500 {object} model.Error
// @Router /api/v1 [get]
func (a *API) GetStatus(w http.ResponseWriter, r *http.Request) {
	payload, _ := json.Marshal(model.Success{Message: "all systems green"})

	w.WriteHeader(http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// @title Kestrel API
// @version 1.0
// @description Drone survey operations API.

// @host localhost:8000
// @BasePath /api/v1
func (a *API) initRouter() {

	router := mux.NewRouter().StrictSlash(true)
	router.Use(rateLimit)
	router.Use(logRequest)
	router.Use(recovery)
	go limiter.CleanUpIPs()

	router.HandleFunc("/api/v1", a.GetStatus).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/missions/", a.getMissions).Methods("GET")
	apiRouter.HandleFunc("/missions", a.postMission).Methods("POST")
	apiRouter.HandleFunc("/missions/{id}", a.getMission).Methods("GET")
	apiRouter.HandleFunc("/missions/{id}", a.putMission).Methods("PUT")
	apiRouter.HandleFunc("/missions/{id}", a.deleteMission).Methods("DELETE")
	apiRouter.HandleFunc("/missions/{id}/control", a.postMissionControl).Methods("POST")
	apiRouter.HandleFunc("/missions/{id}/start", a.postMissionStart).Methods("POST")
	apiRouter.HandleFunc("/missions/{id}/status", a.getMissionStatus).Methods("GET")
	apiRouter.HandleFunc("/drones/", a.getDrones).Methods("GET")
	apiRouter.HandleFunc("/drones", a.postDrone).Methods("POST")
	apiRouter.HandleFunc("/drones/{id}", a.getDrone).Methods("GET")
	apiRouter.HandleFunc("/drones/{id}", a.deleteDrone).Methods("DELETE")
	apiRouter.HandleFunc("/drones/{id}/status", a.putDroneStatus).Methods("PUT")
	apiRouter.HandleFunc("/drones/{id}/maintenance", a.postDroneMaintenance).Methods("POST")

	a.router = router

	log.Debug("Router initialised")
}

// initDashboard starts serving the operations dashboard web app.
// This should not run if config.Dashboard.Enabled is set to false.
func (a *API) initDashboard() {
	if !a.config.Dashboard.Enabled {
		return
	}

	var html []byte
	var err error
	if a.config.Dashboard.Src == "" {
		html = []byte(`<!doctype html><html lang="en"><head><meta charset="utf-8"/>
 <meta name="viewport" content="width=device-width,initial-scale=1"/>
 <meta name="theme-color" content="#000000"/>
 <meta name="description" content="Kestrel Survey Operations"/>
 <script defer="defer" src="https://storage.googleapis.com/kestrel-static/dashboard/main.js"></script>
 <link href="https://storage.googleapis.com/kestrel-static/dashboard/main.css" rel="stylesheet">
</head><body><noscript>You need to enable JavaScript to run this app.</noscript><div id="root"></div></body></html>
`)
		log.Infof("Using default dashboard UI")
	} else {
		html, err = os.ReadFile(a.config.Dashboard.Src)
		if err != nil {
			log.Error("Couldn't load custom dashboard UI HTML")
			log.Error(err)
			panic(err)
		}
		log.Infof("Successfully loaded custom dashboard UI HTML from %v", a.config.Dashboard.Src)
	}

	a.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(html)
	})

	var url string
	if a.protocol == "https" {
		url = fmt.Sprintf("https://%v", a.config.TLS.Host)
	} else {
		url = fmt.Sprintf("http://localhost:%v", a.config.Port)
	}
	msg := "Operations dashboard is live on " + url
	log.Info(msg)
	if isTerminal {
		fmt.Println("🔭 " + msg)
	}
}
