// FilePath: api/resources/api.resource.farms.go
package resources

import (
	"net/http"

	"github.com/farmsense/farmhub/api/middleware"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/hubservice"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// FarmHandlers covers the dashboard's farm read endpoints.
type FarmHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Get a farm by ID
// @Description Get a farm record including its per-device status summary
// @Tags farms
// @Produce json
// @Param id path string true "Farm ID"
// @Success 200 {object} models.Farm
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /farms/{id} [get]
// @Security BearerAuth
func (h *FarmHandlers) GetFarm(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	farm, err := h.hubservice.GetFarmForUser(r.Context(), id, user.ID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, farm)
}

// @Summary List a farm's devices
// @Tags farms
// @Produce json
// @Param id path string true "Farm ID"
// @Success 200 {array} models.Device
// @Failure 403 {object} errors.APIError
// @Router /farms/{id}/devices [get]
// @Security BearerAuth
func (h *FarmHandlers) ListFarmDevices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	devices, err := h.hubservice.ListFarmDevices(r.Context(), id, user.ID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, devices)
}
