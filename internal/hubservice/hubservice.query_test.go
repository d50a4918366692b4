package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func accessibleFarm(farms *MockFarmRepository, memberships *MockMembershipRepository) {
	farms.On("Get", mock.Anything, "farm1").Return(&models.Farm{ID: "farm1", OwnerID: "user1"}, nil)
	memberships.On("Get", mock.Anything, "user1", "farm1").Return(nil, errors.NewNotFoundError("membership not found", nil))
}

func TestListFarmDevices(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		devices := new(MockDeviceRepository)
		svc := newTestService(farms, memberships, devices, new(MockRegistrationCodeRepository), new(MockReadingRepository))

		accessibleFarm(farms, memberships)
		devices.On("ListByFarm", ctx, "farm1").Return([]*models.Device{testDevice()}, nil).Once()

		list, err := svc.ListFarmDevices(ctx, "farm1", "user1")
		assert.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("NoAccess", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		devices := new(MockDeviceRepository)
		svc := newTestService(farms, memberships, devices, new(MockRegistrationCodeRepository), new(MockReadingRepository))

		farms.On("Get", ctx, "farm1").Return(&models.Farm{ID: "farm1", OwnerID: "other"}, nil).Once()
		memberships.On("Get", ctx, "user1", "farm1").Return(nil, errors.NewNotFoundError("membership not found", nil)).Once()

		_, err := svc.ListFarmDevices(ctx, "farm1", "user1")
		assert.Error(t, err)
		devices.AssertNotCalled(t, "ListByFarm", mock.Anything, mock.Anything)
	})
}

func TestGetDeviceReadings(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsApplied", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		devices := new(MockDeviceRepository)
		readings := new(MockReadingRepository)
		svc := newTestService(farms, memberships, devices, new(MockRegistrationCodeRepository), readings)

		accessibleFarm(farms, memberships)
		devices.On("Get", ctx, "esp32-001").Return(testDevice(), nil).Once()

		var gotStart, gotEnd time.Time
		var gotLimit int
		readings.On("GetReadings", ctx, "esp32-001", models.MetricTemperature,
			mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
			Run(func(args mock.Arguments) {
				gotStart = args.Get(3).(time.Time)
				gotEnd = args.Get(4).(time.Time)
				gotLimit = args.Get(5).(int)
			}).Return([]models.Reading{}, nil).Once()

		_, err := svc.GetDeviceReadings(ctx, "esp32-001", "user1", ReadingsQuery{Metric: models.MetricTemperature})

		assert.NoError(t, err)
		assert.Equal(t, 1000, gotLimit)
		assert.WithinDuration(t, time.Now(), gotEnd, 2*time.Second)
		assert.WithinDuration(t, gotEnd.Add(-24*time.Hour), gotStart, time.Second)
	})

	t.Run("OversizedLimitClamped", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		devices := new(MockDeviceRepository)
		readings := new(MockReadingRepository)
		svc := newTestService(farms, memberships, devices, new(MockRegistrationCodeRepository), readings)

		accessibleFarm(farms, memberships)
		devices.On("Get", ctx, "esp32-001").Return(testDevice(), nil).Once()

		var gotLimit int
		readings.On("GetReadings", ctx, "esp32-001", models.MetricHumidity,
			mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
			Run(func(args mock.Arguments) {
				gotLimit = args.Get(5).(int)
			}).Return([]models.Reading{}, nil).Once()

		_, err := svc.GetDeviceReadings(ctx, "esp32-001", "user1", ReadingsQuery{
			Metric: models.MetricHumidity,
			Limit:  100000,
		})

		assert.NoError(t, err)
		assert.Equal(t, 5000, gotLimit)
	})

	t.Run("UnknownMetric", func(t *testing.T) {
		svc := newTestService(new(MockFarmRepository), new(MockMembershipRepository), new(MockDeviceRepository), new(MockRegistrationCodeRepository), new(MockReadingRepository))
		_, err := svc.GetDeviceReadings(ctx, "esp32-001", "user1", ReadingsQuery{Metric: "voltage"})
		assert.True(t, errors.IsValidation(err))
	})
}

func TestGetDeviceStatus(t *testing.T) {
	ctx := context.Background()
	fill := 75.0
	cached := &models.DeviceSnapshot{DeviceID: "esp32-001", FarmID: "farm1", FillPercent: &fill}

	setup := func() (*MockReadingRepository, *MockStatusCache, *HubService) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		devices := new(MockDeviceRepository)
		readings := new(MockReadingRepository)
		status := new(MockStatusCache)
		svc := newTestService(farms, memberships, devices, new(MockRegistrationCodeRepository), readings)
		svc.Status = status

		accessibleFarm(farms, memberships)
		devices.On("Get", ctx, "esp32-001").Return(testDevice(), nil).Once()
		return readings, status, svc
	}

	t.Run("CacheHit", func(t *testing.T) {
		readings, status, svc := setup()
		status.On("GetDeviceStatus", ctx, "esp32-001").Return(cached, nil).Once()

		snapshot, err := svc.GetDeviceStatus(ctx, "esp32-001", "user1")

		assert.NoError(t, err)
		assert.Equal(t, cached, snapshot)
		readings.AssertNotCalled(t, "GetLatestSnapshot", mock.Anything, mock.Anything)
	})

	t.Run("CacheMissFallsBack", func(t *testing.T) {
		readings, status, svc := setup()
		status.On("GetDeviceStatus", ctx, "esp32-001").Return(nil, nil).Once()
		readings.On("GetLatestSnapshot", ctx, "esp32-001").Return(cached, nil).Once()

		snapshot, err := svc.GetDeviceStatus(ctx, "esp32-001", "user1")

		assert.NoError(t, err)
		assert.Equal(t, cached, snapshot)
	})

	t.Run("CacheErrorFallsBack", func(t *testing.T) {
		readings, status, svc := setup()
		status.On("GetDeviceStatus", ctx, "esp32-001").Return(nil, errors.NewInternalError("redis down", nil)).Once()
		readings.On("GetLatestSnapshot", ctx, "esp32-001").Return(cached, nil).Once()

		snapshot, err := svc.GetDeviceStatus(ctx, "esp32-001", "user1")

		assert.NoError(t, err)
		assert.Equal(t, cached, snapshot)
	})
}
