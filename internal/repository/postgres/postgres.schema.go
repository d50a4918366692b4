// FilePath: internal/repository/postgres/postgres.schema.go
package postgres

import (
	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/errors"
)

// InitSchema creates the application tables when they do not exist.
func InitSchema(db database.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS farms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT '',
			users TEXT[] NOT NULL DEFAULT '{}',
			device_count INTEGER NOT NULL DEFAULT 0,
			last_device_added TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
			device_status JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS farm_members (
			user_id TEXT NOT NULL,
			farm_id TEXT NOT NULL REFERENCES farms(id),
			role TEXT NOT NULL DEFAULT 'viewer',
			granted_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, farm_id)
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			farm_id TEXT NOT NULL REFERENCES farms(id),
			type TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			capabilities TEXT[] NOT NULL DEFAULT '{}',
			sensor_mode INTEGER NOT NULL DEFAULT 0,
			mac_address TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'offline',
			battery_level INTEGER NOT NULL DEFAULT 100,
			firmware_version TEXT NOT NULL DEFAULT '',
			registered_by TEXT NOT NULL DEFAULT '',
			settings JSONB NOT NULL DEFAULT '{}',
			calibration JSONB NOT NULL DEFAULT '{}',
			last_data JSONB NOT NULL DEFAULT '{}',
			last_seen TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_devices_farm ON devices(farm_id)`,
		`CREATE TABLE IF NOT EXISTS registration_codes (
			code TEXT PRIMARY KEY,
			farm_id TEXT NOT NULL REFERENCES farms(id),
			user_id TEXT NOT NULL,
			device_name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			used BOOLEAN NOT NULL DEFAULT false,
			device_id TEXT NOT NULL DEFAULT '',
			used_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_registration_codes_expiry
			ON registration_codes(expires_at) WHERE used = false`,
	}

	for _, query := range queries {
		if _, err := db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize app schema", err)
		}
	}
	return nil
}
