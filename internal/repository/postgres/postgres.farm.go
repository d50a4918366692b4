// FilePath: internal/repository/postgres/postgres.farm.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
)

type FarmRepo struct {
	PostgresBaseRepo
}

func NewFarmRepository(db database.DB) *FarmRepo {
	repo := &PostgresBaseRepo{db: db}
	return &FarmRepo{PostgresBaseRepo: *repo}
}

func (r *FarmRepo) Create(ctx context.Context, farm *models.Farm) error {
	query := `
		INSERT INTO farms (
			id, name, owner_id, created_by, users, device_count,
			last_device_added, device_status, created_at, updated_at
		) VALUES (
			:id, :name, :owner_id, :created_by, :users, :device_count,
			:last_device_added, :device_status, :created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, farm)
	if err != nil {
		return errors.NewDatabaseError("failed to create farm", err)
	}
	return nil
}

func (r *FarmRepo) Get(ctx context.Context, id string) (*models.Farm, error) {
	farm := &models.Farm{}
	query := `SELECT * FROM farms WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, farm, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("farm not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get farm", err)
	}
	return farm, nil
}

func (r *FarmRepo) List(ctx context.Context, offset, limit int) ([]*models.Farm, error) {
	farms := []*models.Farm{}
	query := `SELECT * FROM farms ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	err := r.db.GetDB().SelectContext(ctx, &farms, query, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list farms", err)
	}

	return farms, nil
}

// IncrementDeviceCount runs inside the registration transaction so the
// counter moves together with the device insert and code consumption.
func (r *FarmRepo) IncrementDeviceCount(ctx context.Context, tx database.Transaction, id string, at time.Time) error {
	query := `
		UPDATE farms
		SET device_count = device_count + 1,
			last_device_added = $2,
			updated_at = $2
		WHERE id = $1`

	result, err := tx.ExecContext(ctx, query, id, at)
	if err != nil {
		return errors.NewDatabaseError("failed to increment device count", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("farm not found", nil)
	}

	return nil
}

func (r *FarmRepo) UpdateDeviceSummary(ctx context.Context, farmID, deviceID string, summary models.DeviceSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return errors.NewInternalError("failed to marshal device summary", err)
	}

	query := `
		UPDATE farms
		SET device_status = jsonb_set(
				COALESCE(device_status, '{}'::jsonb),
				ARRAY[$2], $3::jsonb, true),
			updated_at = $4
		WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, farmID, deviceID, payload, time.Now())
	if err != nil {
		return errors.NewDatabaseError("failed to update device summary", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("farm not found", nil)
	}

	return nil
}
