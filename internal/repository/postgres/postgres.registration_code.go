// FilePath: internal/repository/postgres/postgres.registration_code.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

type RegistrationCodeRepo struct {
	PostgresBaseRepo
}

func NewRegistrationCodeRepository(db database.DB) *RegistrationCodeRepo {
	repo := &PostgresBaseRepo{db: db}
	return &RegistrationCodeRepo{PostgresBaseRepo: *repo}
}

// Create persists a fresh code. The code string is the primary key, so
// a generator collision with a live code surfaces as a conflict
// instead of silently overwriting the older code.
func (r *RegistrationCodeRepo) Create(ctx context.Context, code *models.RegistrationCode) error {
	query := `
		INSERT INTO registration_codes (
			code, farm_id, user_id, device_name, location,
			used, device_id, created_at, expires_at
		) VALUES (
			:code, :farm_id, :user_id, :device_name, :location,
			:used, :device_id, :created_at, :expires_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, code)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return errors.NewConflictError("registration code collision", err)
		}
		return errors.NewDatabaseError("failed to create registration code", err)
	}
	return nil
}

func (r *RegistrationCodeRepo) Get(ctx context.Context, code string) (*models.RegistrationCode, error) {
	rc := &models.RegistrationCode{}
	query := `SELECT * FROM registration_codes WHERE code = $1`

	err := r.db.GetDB().GetContext(ctx, rc, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("registration code not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get registration code", err)
	}
	return rc, nil
}

// Consume is the compare-and-swap on the used flag: the WHERE clause
// only matches an unconsumed code, so of two concurrent redemptions
// exactly one sees a row change.
func (r *RegistrationCodeRepo) Consume(ctx context.Context, tx database.Transaction, code, deviceID string, at time.Time) (int64, error) {
	query := `
		UPDATE registration_codes
		SET used = true, device_id = $2, used_at = $3
		WHERE code = $1 AND used = false`

	result, err := tx.ExecContext(ctx, query, code, deviceID, at)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to consume registration code", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}

func (r *RegistrationCodeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM registration_codes WHERE used = false AND expires_at < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete expired codes", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[RegistrationCodes] Deleted %d expired unused codes before %v", rows, before)
	return rows, nil
}
