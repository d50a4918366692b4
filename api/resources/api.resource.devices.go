// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"net/http"
	"reflect"
	"time"

	"github.com/farmsense/farmhub/api/middleware"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/hubservice"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers covers the dashboard's device read endpoints.
type DeviceHandlers struct {
	hubservice *hubservice.HubService
}

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
	// schema has no built-in time converter; window bounds arrive as
	// RFC3339 strings.
	queryDecoder.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(t)
	})
}

// @Summary Get a device by ID
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.Device
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	device, err := h.hubservice.GetDeviceForUser(r.Context(), id, user.ID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// readingsQuery is decoded from the URL query string.
type readingsQuery struct {
	Type  string    `schema:"type"`
	Start time.Time `schema:"start"`
	End   time.Time `schema:"end"`
	Limit int       `schema:"limit"`
}

// @Summary Get a device's readings for one metric
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Param type query string true "Metric type"
// @Param start query string false "Window start (RFC3339)"
// @Param end query string false "Window end (RFC3339)"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /devices/{id}/readings [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetReadings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	var query readingsQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.GetDeviceReadings(r.Context(), id, user.ID, hubservice.ReadingsQuery{
		Metric: models.MetricType(query.Type),
		Start:  query.Start,
		End:    query.End,
		Limit:  query.Limit,
	})
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Get a device's latest status snapshot
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.DeviceSnapshot
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/status [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	snapshot, err := h.hubservice.GetDeviceStatus(r.Context(), id, user.ID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}
