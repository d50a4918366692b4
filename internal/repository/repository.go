// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// FarmRepository defines the interface for farm data operations
type FarmRepository interface {
	database.Repository
	Create(ctx context.Context, farm *models.Farm) error
	Get(ctx context.Context, id string) (*models.Farm, error)
	List(ctx context.Context, offset, limit int) ([]*models.Farm, error)
	// IncrementDeviceCount bumps device_count and stamps
	// last_device_added inside the supplied transaction.
	IncrementDeviceCount(ctx context.Context, tx database.Transaction, id string, at time.Time) error
	// UpdateDeviceSummary upserts one entry of the farm's denormalized
	// per-device status map.
	UpdateDeviceSummary(ctx context.Context, farmID, deviceID string, summary models.DeviceSummary) error
}

// MembershipRepository reads the farm_members table. Rows are written
// by farm-management flows outside this service.
type MembershipRepository interface {
	Get(ctx context.Context, userID, farmID string) (*models.FarmMembership, error)
	ListByFarm(ctx context.Context, farmID string) ([]*models.FarmMembership, error)
}

// DeviceRepository defines the interface for device data operations
type DeviceRepository interface {
	database.Repository
	// CreateTx inserts the device inside the supplied transaction.
	CreateTx(ctx context.Context, tx database.Transaction, device *models.Device) error
	Get(ctx context.Context, id string) (*models.Device, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByFarm(ctx context.Context, farmID string) ([]*models.Device, error)
	// UpdateTelemetryState refreshes last_seen, last_data and status
	// after an ingestion.
	UpdateTelemetryState(ctx context.Context, id string, lastSeen time.Time, lastData models.JSON, status models.DeviceStatus) error
	UpdateHeartbeat(ctx context.Context, id string, batteryLevel int, status models.DeviceStatus, lastSeen time.Time) error
}

// RegistrationCodeRepository defines the interface for onboarding codes
type RegistrationCodeRepository interface {
	database.Repository
	Create(ctx context.Context, code *models.RegistrationCode) error
	Get(ctx context.Context, code string) (*models.RegistrationCode, error)
	// Consume flips used=false to used=true inside the supplied
	// transaction, binding the device. Returns the number of rows
	// changed: zero means the code was consumed concurrently.
	Consume(ctx context.Context, tx database.Transaction, code, deviceID string, at time.Time) (int64, error)
	// DeleteExpired removes unused codes past their expiry and
	// returns how many were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ReadingRepository defines the interface for time-series storage
type ReadingRepository interface {
	database.Repository
	// InsertReadingTx appends one per-metric reading inside the
	// supplied transaction.
	InsertReadingTx(ctx context.Context, tx database.Transaction, reading *models.Reading) error
	// InsertSnapshotTx appends the aggregated per-ingestion snapshot
	// inside the supplied transaction.
	InsertSnapshotTx(ctx context.Context, tx database.Transaction, snapshot *models.DeviceSnapshot) error
	GetReadings(ctx context.Context, deviceID string, metric models.MetricType, start, end time.Time, limit int) ([]models.Reading, error)
	GetLatestSnapshot(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error)
	DeleteOldData(ctx context.Context, before time.Time) error
}
