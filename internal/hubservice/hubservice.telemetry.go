// FilePath: internal/hubservice/hubservice.telemetry.go
package hubservice

import (
	"context"
	"time"

	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// grainBinDepthCm is the distance at which a bin reads empty.
const grainBinDepthCm = 700.0

// GrainFillPercent converts an average distance-to-surface reading
// into a fill percentage. 0 cm means full, 700 cm means empty; the
// result is clamped to [0,100] so out-of-range sensor values cannot
// produce impossible percentages.
func GrainFillPercent(distanceAvg float64) float64 {
	fill := 100 - distanceAvg*100/grainBinDepthCm
	if fill < 0 {
		return 0
	}
	if fill > 100 {
		return 100
	}
	return fill
}

// SensorDataParams is the typed command parsed from one ingestion
// request. Metrics holds only the channels present in the payload;
// partial payloads are valid and expected.
type SensorDataParams struct {
	DeviceID  string
	Timestamp time.Time
	Metrics   map[models.MetricType]float64
}

// IngestAck confirms a durably stored payload.
type IngestAck struct {
	DeviceID  string    `json:"deviceId"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestSensorData authenticates the payload against a registered
// device, appends one reading per present metric plus an aggregated
// snapshot in a single transaction, then refreshes derived state
// best-effort. Resubmission creates duplicate rows (no dedup) and
// out-of-order timestamps are accepted as-is.
func (s *HubService) IngestSensorData(ctx context.Context, params SensorDataParams) (*IngestAck, error) {
	if params.DeviceID == "" || params.Timestamp.IsZero() {
		return nil, errors.NewValidationError("deviceId and timestamp are required", nil)
	}

	// Unregistered devices cannot push data; provisioning comes first.
	device, err := s.Devices.Get(ctx, params.DeviceID)
	if err != nil {
		return nil, err
	}

	receivedAt := time.Now()

	var fill *float64
	if v, ok := params.Metrics[models.MetricDistanceAvg]; ok {
		f := GrainFillPercent(v)
		fill = &f
	}

	metricsBag := models.JSON{}
	for _, metric := range models.MetricTypes {
		if v, ok := params.Metrics[metric]; ok {
			metricsBag[string(metric)] = v
		}
	}

	snapshot := &models.DeviceSnapshot{
		DeviceID:    device.ID,
		FarmID:      device.FarmID,
		Metrics:     metricsBag,
		FillPercent: fill,
		Timestamp:   params.Timestamp,
		ReceivedAt:  receivedAt,
	}

	tx, err := s.Readings.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	for _, metric := range models.MetricTypes {
		v, ok := params.Metrics[metric]
		if !ok {
			continue
		}
		reading := &models.Reading{
			DeviceID:   device.ID,
			FarmID:     device.FarmID,
			Type:       metric,
			Value:      v,
			Timestamp:  params.Timestamp,
			ReceivedAt: receivedAt,
		}
		if err := s.Readings.InsertReadingTx(ctx, tx, reading); err != nil {
			return nil, err
		}
	}

	if err := s.Readings.InsertSnapshotTx(ctx, tx, snapshot); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewDatabaseError("failed to commit sensor data", err)
	}

	// The readings are durable from here on. Status bookkeeping is
	// best-effort: a failure is logged, never surfaced to the device.
	s.refreshDeviceState(ctx, device, snapshot)

	return &IngestAck{DeviceID: device.ID, Timestamp: params.Timestamp}, nil
}

func (s *HubService) refreshDeviceState(ctx context.Context, device *models.Device, snapshot *models.DeviceSnapshot) {
	if err := s.Devices.UpdateTelemetryState(ctx, device.ID, snapshot.ReceivedAt, snapshot.Metrics, models.DeviceOnline); err != nil {
		nuts.L.Warnf("[Telemetry] Failed to update device %s state: %v", device.ID, err)
	}

	summary := models.DeviceSummary{
		LastUpdate:  snapshot.ReceivedAt,
		FillPercent: snapshot.FillPercent,
		Status:      string(models.DeviceOnline),
	}
	if v, ok := snapshot.Metrics[string(models.MetricTemperature)]; ok {
		if f, ok := v.(float64); ok {
			summary.Temperature = &f
		}
	}
	if v, ok := snapshot.Metrics[string(models.MetricHumidity)]; ok {
		if f, ok := v.(float64); ok {
			summary.Humidity = &f
		}
	}
	if v, ok := snapshot.Metrics[string(models.MetricCO2)]; ok {
		if f, ok := v.(float64); ok {
			summary.CO2 = &f
		}
	}
	if err := s.Farms.UpdateDeviceSummary(ctx, device.FarmID, device.ID, summary); err != nil {
		nuts.L.Warnf("[Telemetry] Failed to update farm %s summary for device %s: %v", device.FarmID, device.ID, err)
	}

	if s.Status != nil {
		if err := s.Status.SetDeviceStatus(ctx, snapshot); err != nil {
			nuts.L.Warnf("[Telemetry] Failed to cache status for device %s: %v", device.ID, err)
		}
	}
}

// HeartbeatReading is one inline measurement carried by a heartbeat.
type HeartbeatReading struct {
	Type      models.MetricType `json:"type"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
}

// HeartbeatParams is the typed command parsed from a heartbeat body.
type HeartbeatParams struct {
	DeviceID     string
	BatteryLevel *int
	Status       string
	Readings     []HeartbeatReading
}

// Heartbeat refreshes battery, status and last-seen. Inline readings
// are folded into the regular ingestion path so both endpoints share
// normalization and fan-out.
func (s *HubService) Heartbeat(ctx context.Context, params HeartbeatParams) error {
	if params.DeviceID == "" {
		return errors.NewValidationError("deviceId is required", nil)
	}

	device, err := s.Devices.Get(ctx, params.DeviceID)
	if err != nil {
		return err
	}

	battery := device.BatteryLevel
	if params.BatteryLevel != nil {
		battery = *params.BatteryLevel
	}
	status := models.DeviceOnline
	if params.Status != "" {
		status = models.DeviceStatus(params.Status)
	}

	if err := s.Devices.UpdateHeartbeat(ctx, device.ID, battery, status, time.Now()); err != nil {
		return err
	}

	if len(params.Readings) == 0 {
		return nil
	}

	metrics := map[models.MetricType]float64{}
	timestamp := time.Now()
	for _, r := range params.Readings {
		metrics[r.Type] = r.Value
		if !r.Timestamp.IsZero() {
			timestamp = r.Timestamp
		}
	}

	if _, err := s.IngestSensorData(ctx, SensorDataParams{
		DeviceID:  device.ID,
		Timestamp: timestamp,
		Metrics:   metrics,
	}); err != nil {
		nuts.L.Warnf("[Telemetry] Failed to ingest heartbeat readings for device %s: %v", device.ID, err)
	}
	return nil
}
