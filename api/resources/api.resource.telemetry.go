// FilePath: api/resources/api.resource.telemetry.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/hubservice"
	"github.com/farmsense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryHandlers covers the device-facing ingestion endpoints.
type TelemetryHandlers struct {
	hubservice *hubservice.HubService
}

// sensorDataRequest mirrors the loose firmware payload: deviceId and
// timestamp are required, every metric is optional. Absent metrics
// stay nil and are skipped, so partial payloads (a device without a
// CO2 sensor, say) pass through unchanged.
type sensorDataRequest struct {
	DeviceID           string          `json:"deviceId"`
	Timestamp          json.RawMessage `json:"timestamp"`
	Temperature        *float64        `json:"temperature"`
	Humidity           *float64        `json:"humidity"`
	CO2                *float64        `json:"co2"`
	Distance1          *float64        `json:"distance1"`
	Distance2          *float64        `json:"distance2"`
	DistanceAvg        *float64        `json:"distance_avg"`
	OutdoorTemperature *float64        `json:"outdoor_temperature"`
	WifiRSSI           *float64        `json:"wifi_rssi"`
}

func (req *sensorDataRequest) metrics() map[models.MetricType]float64 {
	out := map[models.MetricType]float64{}
	set := func(metric models.MetricType, v *float64) {
		if v != nil {
			out[metric] = *v
		}
	}
	set(models.MetricTemperature, req.Temperature)
	set(models.MetricHumidity, req.Humidity)
	set(models.MetricCO2, req.CO2)
	set(models.MetricDistance1, req.Distance1)
	set(models.MetricDistance2, req.Distance2)
	set(models.MetricDistanceAvg, req.DistanceAvg)
	set(models.MetricOutdoorTemperature, req.OutdoorTemperature)
	set(models.MetricWifiRSSI, req.WifiRSSI)
	return out
}

// @Summary Ingest a sensor reading batch
// @Description Validate, normalize and durably store one telemetry payload
// @Tags telemetry
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensor-data [post]
func (h *TelemetryHandlers) SensorData(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req sensorDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	timestamp, err := parseEventTimestamp(req.Timestamp)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid timestamp", err).WithRequestID(requestID))
		return
	}

	ack, err := h.hubservice.IngestSensorData(r.Context(), hubservice.SensorDataParams{
		DeviceID:  req.DeviceID,
		Timestamp: timestamp,
		Metrics:   req.metrics(),
	})
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"deviceId":  ack.DeviceID,
		"timestamp": ack.Timestamp,
	})
}

type heartbeatRequest struct {
	DeviceID     string                        `json:"deviceId"`
	BatteryLevel *int                          `json:"batteryLevel"`
	Status       string                        `json:"status"`
	Readings     []hubservice.HeartbeatReading `json:"readings"`
}

// @Summary Device heartbeat
// @Description Refresh battery, status and last-seen for a device.
// @Description An unknown deviceId is rejected with 404 so a mis-flashed
// @Description device fails loudly instead of heartbeating into the void.
// @Tags telemetry
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /heartbeat [post]
func (h *TelemetryHandlers) Heartbeat(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req heartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	err := h.hubservice.Heartbeat(r.Context(), hubservice.HeartbeatParams{
		DeviceID:     req.DeviceID,
		BatteryLevel: req.BatteryLevel,
		Status:       req.Status,
		Readings:     req.Readings,
	})
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
