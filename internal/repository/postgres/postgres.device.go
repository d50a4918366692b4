// FilePath: internal/repository/postgres/postgres.device.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	repo := &PostgresBaseRepo{db: db}
	return &DeviceRepo{PostgresBaseRepo: *repo}
}

// CreateTx inserts the device inside the registration transaction.
// A duplicate primary key surfaces as a conflict so two concurrent
// registrations of the same ID cannot both succeed.
func (r *DeviceRepo) CreateTx(ctx context.Context, tx database.Transaction, device *models.Device) error {
	query := `
		INSERT INTO devices (
			id, name, farm_id, type, location, latitude, longitude,
			capabilities, sensor_mode, mac_address, status, battery_level,
			firmware_version, registered_by, settings, calibration,
			last_data, last_seen, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20
		)`

	_, err := tx.ExecContext(ctx, query,
		device.ID, device.Name, device.FarmID, device.Type, device.Location,
		device.Latitude, device.Longitude, device.Capabilities,
		device.SensorMode, device.MACAddress, device.Status,
		device.BatteryLevel, device.FirmwareVersion, device.RegisteredBy,
		device.Settings, device.Calibration, device.LastData,
		device.LastSeen, device.CreatedAt, device.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return errors.NewConflictError("device already registered", err)
		}
		return errors.NewDatabaseError("failed to create device", err)
	}
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	device := &models.Device{}
	query := `SELECT * FROM devices WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, device, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM devices WHERE id = $1)`

	err := r.db.GetDB().GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, errors.NewDatabaseError("failed to check device existence", err)
	}
	return exists, nil
}

func (r *DeviceRepo) ListByFarm(ctx context.Context, farmID string) ([]*models.Device, error) {
	devices := []*models.Device{}
	query := `SELECT * FROM devices WHERE farm_id = $1 ORDER BY created_at`

	err := r.db.GetDB().SelectContext(ctx, &devices, query, farmID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list devices", err)
	}
	return devices, nil
}

func (r *DeviceRepo) UpdateTelemetryState(ctx context.Context, id string, lastSeen time.Time, lastData models.JSON, status models.DeviceStatus) error {
	query := `
		UPDATE devices
		SET last_seen = $2, last_data = $3, status = $4, updated_at = $2
		WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id, lastSeen, lastData, status)
	if err != nil {
		return errors.NewDatabaseError("failed to update telemetry state", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}

func (r *DeviceRepo) UpdateHeartbeat(ctx context.Context, id string, batteryLevel int, status models.DeviceStatus, lastSeen time.Time) error {
	query := `
		UPDATE devices
		SET battery_level = $2, status = $3, last_seen = $4, updated_at = $4
		WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id, batteryLevel, status, lastSeen)
	if err != nil {
		return errors.NewDatabaseError("failed to update heartbeat", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}
