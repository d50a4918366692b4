package hubservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/stretchr/testify/mock"
)

// fakeResult satisfies sql.Result for transaction mocks.
type fakeResult struct {
	rows int64
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type MockTransaction struct {
	mock.Mock
}

func (m *MockTransaction) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTransaction) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTransaction) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	callArgs := m.Called(ctx, query, args)
	return callArgs.Get(0).(sql.Result), callArgs.Error(1)
}

type MockFarmRepository struct {
	mock.Mock
}

func (m *MockFarmRepository) BeginTx(ctx context.Context) (database.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(database.Transaction), args.Error(1)
}

func (m *MockFarmRepository) Create(ctx context.Context, farm *models.Farm) error {
	args := m.Called(ctx, farm)
	return args.Error(0)
}

func (m *MockFarmRepository) Get(ctx context.Context, id string) (*models.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Farm), args.Error(1)
}

func (m *MockFarmRepository) List(ctx context.Context, offset, limit int) ([]*models.Farm, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Farm), args.Error(1)
}

func (m *MockFarmRepository) IncrementDeviceCount(ctx context.Context, tx database.Transaction, id string, at time.Time) error {
	args := m.Called(ctx, tx, id, at)
	return args.Error(0)
}

func (m *MockFarmRepository) UpdateDeviceSummary(ctx context.Context, farmID, deviceID string, summary models.DeviceSummary) error {
	args := m.Called(ctx, farmID, deviceID, summary)
	return args.Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Get(ctx context.Context, userID, farmID string) (*models.FarmMembership, error) {
	args := m.Called(ctx, userID, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmMembership), args.Error(1)
}

func (m *MockMembershipRepository) ListByFarm(ctx context.Context, farmID string) ([]*models.FarmMembership, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FarmMembership), args.Error(1)
}

type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) BeginTx(ctx context.Context) (database.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(database.Transaction), args.Error(1)
}

func (m *MockDeviceRepository) CreateTx(ctx context.Context, tx database.Transaction, device *models.Device) error {
	args := m.Called(ctx, tx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) Get(ctx context.Context, id string) (*models.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeviceRepository) ListByFarm(ctx context.Context, farmID string) ([]*models.Device, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) UpdateTelemetryState(ctx context.Context, id string, lastSeen time.Time, lastData models.JSON, status models.DeviceStatus) error {
	args := m.Called(ctx, id, lastSeen, lastData, status)
	return args.Error(0)
}

func (m *MockDeviceRepository) UpdateHeartbeat(ctx context.Context, id string, batteryLevel int, status models.DeviceStatus, lastSeen time.Time) error {
	args := m.Called(ctx, id, batteryLevel, status, lastSeen)
	return args.Error(0)
}

type MockRegistrationCodeRepository struct {
	mock.Mock
}

func (m *MockRegistrationCodeRepository) BeginTx(ctx context.Context) (database.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(database.Transaction), args.Error(1)
}

func (m *MockRegistrationCodeRepository) Create(ctx context.Context, code *models.RegistrationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockRegistrationCodeRepository) Get(ctx context.Context, code string) (*models.RegistrationCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegistrationCode), args.Error(1)
}

func (m *MockRegistrationCodeRepository) Consume(ctx context.Context, tx database.Transaction, code, deviceID string, at time.Time) (int64, error) {
	args := m.Called(ctx, tx, code, deviceID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) BeginTx(ctx context.Context) (database.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(database.Transaction), args.Error(1)
}

func (m *MockReadingRepository) InsertReadingTx(ctx context.Context, tx database.Transaction, reading *models.Reading) error {
	args := m.Called(ctx, tx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) InsertSnapshotTx(ctx context.Context, tx database.Transaction, snapshot *models.DeviceSnapshot) error {
	args := m.Called(ctx, tx, snapshot)
	return args.Error(0)
}

func (m *MockReadingRepository) GetReadings(ctx context.Context, deviceID string, metric models.MetricType, start, end time.Time, limit int) ([]models.Reading, error) {
	args := m.Called(ctx, deviceID, metric, start, end, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reading), args.Error(1)
}

func (m *MockReadingRepository) GetLatestSnapshot(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceSnapshot), args.Error(1)
}

func (m *MockReadingRepository) DeleteOldData(ctx context.Context, before time.Time) error {
	args := m.Called(ctx, before)
	return args.Error(0)
}

type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) SetDeviceStatus(ctx context.Context, snapshot *models.DeviceSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockStatusCache) GetDeviceStatus(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceSnapshot), args.Error(1)
}
