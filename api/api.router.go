package api

import (
	"net/http"

	"github.com/farmsense/farmhub/api/middleware"
	"github.com/farmsense/farmhub/api/resources"
	"github.com/farmsense/farmhub/internal/hubservice"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.KeycloakMiddleware
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, keycloakConfig middleware.KeycloakConfig) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewKeycloakMiddleware(keycloakConfig),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.handleHealth).Methods(http.MethodGet)

	// Device-facing routes. Very deliberately unauthenticated beyond
	// the device-existence check in the service layer: the firmware
	// holds no bearer credential. See the registration code flow for
	// how a device proves it belongs to a farm in the first place.
	api.HandleFunc("/devices/register", r.resources.Registration.RegisterDevice).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sensor-data", r.resources.Telemetry.SensorData).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/heartbeat", r.resources.Telemetry.Heartbeat).Methods(http.MethodPost, http.MethodOptions)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	protected.HandleFunc("/registration-codes", r.resources.Registration.GenerateRegistrationCode).Methods(http.MethodPost, http.MethodOptions)

	// Farms
	farms := protected.PathPrefix("/farms").Subrouter()
	farms.HandleFunc("/{id}", r.resources.Farms.GetFarm).Methods(http.MethodGet)
	farms.HandleFunc("/{id}/devices", r.resources.Farms.ListFarmDevices).Methods(http.MethodGet)

	// Devices
	devices := protected.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("/{id}", r.resources.Devices.GetDevice).Methods(http.MethodGet)
	devices.HandleFunc("/{id}/readings", r.resources.Devices.GetReadings).Methods(http.MethodGet)
	devices.HandleFunc("/{id}/status", r.resources.Devices.GetDeviceStatus).Methods(http.MethodGet)
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
