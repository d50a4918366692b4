// FilePath: api/resources/api.resource.registration.go
package resources

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/farmsense/farmhub/api/middleware"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// RegistrationHandlers covers code issuing (dashboard) and code
// redemption (device firmware).
type RegistrationHandlers struct {
	hubservice *hubservice.HubService
}

type generateCodeRequest struct {
	FarmID     string `json:"farmId"`
	DeviceName string `json:"deviceName"`
	Location   string `json:"location"`
}

// @Summary Generate a device registration code
// @Description Issue a single-use, time-boxed onboarding code for a farm
// @Tags registration
// @Accept json
// @Produce json
// @Success 200 {object} hubservice.IssueCodeResult
// @Failure 401 {object} errors.APIError
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /registration-codes [post]
// @Security BearerAuth
func (h *RegistrationHandlers) GenerateRegistrationCode(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	var req generateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if req.FarmID == "" {
		respondWithError(w, errors.NewValidationError("farmId is required", nil).WithRequestID(requestID))
		return
	}

	result, err := h.hubservice.IssueRegistrationCode(r.Context(), user.ID, req.FarmID, req.DeviceName, req.Location)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

type registerDeviceRequest struct {
	DeviceID         string `json:"deviceId"`
	RegistrationCode string `json:"registrationCode"`
	DeviceType       string `json:"deviceType"`
	Capabilities     string `json:"capabilities"`
	SensorMode       *int   `json:"sensorMode"`
	MACAddress       string `json:"macAddress"`
}

type registerDeviceResponse struct {
	Success bool                        `json:"success"`
	Device  *hubservice.RegisteredDevice `json:"device"`
}

// @Summary Register a device
// @Description Redeem a registration code and create the device record
// @Tags registration
// @Accept json
// @Produce json
// @Success 200 {object} registerDeviceResponse
// @Failure 400 {object} errors.APIError
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /devices/register [post]
func (h *RegistrationHandlers) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	device, err := h.hubservice.RegisterDevice(r.Context(), hubservice.RegisterDeviceParams{
		DeviceID:         req.DeviceID,
		RegistrationCode: strings.ToUpper(strings.TrimSpace(req.RegistrationCode)),
		DeviceType:       req.DeviceType,
		Capabilities:     splitCapabilities(req.Capabilities),
		SensorMode:       req.SensorMode,
		MACAddress:       req.MACAddress,
	})
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, registerDeviceResponse{Success: true, Device: device})
}

// splitCapabilities parses the firmware's comma-separated capability
// list, dropping empty entries.
func splitCapabilities(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	capabilities := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			capabilities = append(capabilities, trimmed)
		}
	}
	return capabilities
}

// parseEventTimestamp accepts both epoch milliseconds and RFC3339,
// since older firmware builds send either. A JSON null reads as the
// zero time, same as an absent field; unmarshaling null into an int64
// is a no-op and would otherwise pass through as epoch 0.
func parseEventTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis), nil
	}

	var stamp string
	if err := json.Unmarshal(raw, &stamp); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, stamp)
}
