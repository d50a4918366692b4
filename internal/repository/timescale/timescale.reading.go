// FilePath: internal/repository/timescale/timescale.reading.go
package timescale

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type ReadingRepo struct {
	TimescaleBaseRepo
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{TimescaleBaseRepo: TimescaleBaseRepo{db: db}}
	err := repo.initializeSchema()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	// Hypertables for per-metric readings and aggregated snapshots
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			farm_id TEXT NOT NULL,
			type TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			received_at TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('readings', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS device_snapshots (
			id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			farm_id TEXT NOT NULL,
			metrics JSONB NOT NULL,
			fill_percent DOUBLE PRECISION,
			timestamp TIMESTAMPTZ NOT NULL,
			received_at TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('device_snapshots', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_device_type_timestamp
			ON readings(device_id, type, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_device_snapshots_device_timestamp
			ON device_snapshots(device_id, timestamp DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}

	r.setupRetentionPolicies()
	return nil
}

func (r *ReadingRepo) setupRetentionPolicies() {
	policies := []struct {
		table    string
		interval string
	}{
		{"readings", "13 months"},
		{"device_snapshots", "13 months"},
	}

	for _, policy := range policies {
		query := fmt.Sprintf(`
			SELECT add_retention_policy('%s',
				INTERVAL '%s',
				if_not_exists => TRUE
			)`, policy.table, policy.interval)

		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			nuts.L.Errorf("[TimescaleDB] Failed to set up retention policy for %s: %v", policy.table, err)
		}
	}
}

func (r *ReadingRepo) InsertReadingTx(ctx context.Context, tx database.Transaction, reading *models.Reading) error {
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	query := `
		INSERT INTO readings (id, device_id, farm_id, type, value, timestamp, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.ExecContext(ctx, query,
		reading.ID, reading.DeviceID, reading.FarmID, reading.Type,
		reading.Value, reading.Timestamp, reading.ReceivedAt,
	)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

func (r *ReadingRepo) InsertSnapshotTx(ctx context.Context, tx database.Transaction, snapshot *models.DeviceSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = nuts.NID("sn", 12)
	}
	query := `
		INSERT INTO device_snapshots (id, device_id, farm_id, metrics, fill_percent, timestamp, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.ExecContext(ctx, query,
		snapshot.ID, snapshot.DeviceID, snapshot.FarmID, snapshot.Metrics,
		snapshot.FillPercent, snapshot.Timestamp, snapshot.ReceivedAt,
	)
	if err != nil {
		return errors.NewDatabaseError("failed to insert device snapshot", err)
	}
	return nil
}

func (r *ReadingRepo) GetReadings(ctx context.Context, deviceID string, metric models.MetricType, start, end time.Time, limit int) ([]models.Reading, error) {
	readings := []models.Reading{}
	query := `
		SELECT id, device_id, farm_id, type, value, timestamp, received_at
		FROM readings
		WHERE device_id = $1 AND type = $2 AND timestamp BETWEEN $3 AND $4
		ORDER BY timestamp DESC
		LIMIT $5`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, deviceID, metric, start, end, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) GetLatestSnapshot(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error) {
	snapshot := &models.DeviceSnapshot{}
	query := `
		SELECT id, device_id, farm_id, metrics, fill_percent, timestamp, received_at
		FROM device_snapshots
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, snapshot, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no snapshot for device", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest snapshot", err)
	}
	return snapshot, nil
}

func (r *ReadingRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	query := `DELETE FROM readings WHERE timestamp < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return errors.NewDatabaseError("failed to delete old data", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[TimescaleDB] Deleted %d old readings before %v", rows, before)
	return nil
}
