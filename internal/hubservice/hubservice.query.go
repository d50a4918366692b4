// FilePath: internal/hubservice/hubservice.query.go
package hubservice

import (
	"context"
	"time"

	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// GetFarmForUser returns the farm record after an access check.
func (s *HubService) GetFarmForUser(ctx context.Context, farmID, userID string) (*models.Farm, error) {
	return s.FarmAccess(ctx, farmID, userID)
}

// ListFarmDevices returns the devices of a farm the user may see.
func (s *HubService) ListFarmDevices(ctx context.Context, farmID, userID string) ([]*models.Device, error) {
	if _, err := s.FarmAccess(ctx, farmID, userID); err != nil {
		return nil, err
	}
	return s.Devices.ListByFarm(ctx, farmID)
}

// GetDeviceForUser returns a device after checking access on its farm.
func (s *HubService) GetDeviceForUser(ctx context.Context, deviceID, userID string) (*models.Device, error) {
	device, err := s.Devices.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.FarmAccess(ctx, device.FarmID, userID); err != nil {
		return nil, err
	}
	return device, nil
}

// ReadingsQuery bounds a time-series read.
type ReadingsQuery struct {
	Metric models.MetricType
	Start  time.Time
	End    time.Time
	Limit  int
}

// GetDeviceReadings returns one metric's series for a device, newest
// first, bounded by the query window.
func (s *HubService) GetDeviceReadings(ctx context.Context, deviceID, userID string, query ReadingsQuery) ([]models.Reading, error) {
	if !validMetric(query.Metric) {
		return nil, errors.NewValidationError("unknown metric type", nil)
	}

	if _, err := s.GetDeviceForUser(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	if query.End.IsZero() {
		query.End = time.Now()
	}
	if query.Start.IsZero() {
		query.Start = query.End.Add(-24 * time.Hour)
	}
	if query.Limit <= 0 {
		query.Limit = 1000
	}
	if query.Limit > 5000 {
		query.Limit = 5000
	}

	return s.Readings.GetReadings(ctx, deviceID, query.Metric, query.Start, query.End, query.Limit)
}

// GetDeviceStatus returns the latest snapshot, preferring the cache
// and falling back to the time-series store on a miss.
func (s *HubService) GetDeviceStatus(ctx context.Context, deviceID, userID string) (*models.DeviceSnapshot, error) {
	if _, err := s.GetDeviceForUser(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	if s.Status != nil {
		snapshot, err := s.Status.GetDeviceStatus(ctx, deviceID)
		if err != nil {
			nuts.L.Warnf("[Query] Status cache lookup failed for device %s: %v", deviceID, err)
		} else if snapshot != nil {
			return snapshot, nil
		}
	}

	return s.Readings.GetLatestSnapshot(ctx, deviceID)
}

func validMetric(metric models.MetricType) bool {
	for _, m := range models.MetricTypes {
		if m == metric {
			return true
		}
	}
	return false
}
