package repository

import (
	"context"
	"fmt"

	"VibeWake/model"

	"github.com/jmoiron/sqlx"
)

// AlarmsSchema creates the alarms table on Postgres.
const AlarmsSchema = `
CREATE TABLE IF NOT EXISTS alarms (
	id          VARCHAR(36) PRIMARY KEY,
	hour        SMALLINT NOT NULL CHECK (hour BETWEEN 0 AND 23),
	minute      SMALLINT NOT NULL CHECK (minute BETWEEN 0 AND 59),
	label       VARCHAR(200) NOT NULL DEFAULT '',
	enabled     BOOLEAN NOT NULL DEFAULT TRUE,
	repeat_days VARCHAR(32) NOT NULL DEFAULT '',
	track_id    VARCHAR(64) NOT NULL DEFAULT '',
	track_title VARCHAR(255) NOT NULL DEFAULT '',
	track_url   VARCHAR(1024) NOT NULL DEFAULT '',
	position    BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS alarms_position_idx ON alarms (position);`

type pgAlarmRepository struct {
	db *sqlx.DB
}

var _ AlarmRepository = (*pgAlarmRepository)(nil)

// NewPostgresAlarmRepository creates a sqlx-backed alarm repository.
func NewPostgresAlarmRepository(db *sqlx.DB) AlarmRepository {
	return &pgAlarmRepository{db: db}
}

func (r *pgAlarmRepository) List(ctx context.Context) ([]model.Alarm, error) {
	var records []model.AlarmRecord
	const q = `
	SELECT id, hour, minute, label, enabled, repeat_days, track_id, track_title, track_url, position, created_at
	  FROM alarms
	 ORDER BY position;`
	if err := r.db.SelectContext(ctx, &records, q); err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	return recordsToAlarms(records)
}

func (r *pgAlarmRepository) Create(ctx context.Context, alarm model.Alarm) error {
	const q = `
	INSERT INTO alarms (id, hour, minute, label, enabled, repeat_days, track_id, track_title, track_url, position, created_at)
	VALUES (:id, :hour, :minute, :label, :enabled, :repeat_days, :track_id, :track_title, :track_url, :position, :created_at);`
	if _, err := r.db.NamedExecContext(ctx, q, model.NewAlarmRecord(alarm)); err != nil {
		return fmt.Errorf("failed to create alarm %s: %w", alarm.ID, err)
	}
	return nil
}

func (r *pgAlarmRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE alarms SET enabled = $1 WHERE id = $2;`, enabled, id); err != nil {
		return fmt.Errorf("failed to update alarm %s: %w", id, err)
	}
	return nil
}

func (r *pgAlarmRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("failed to delete alarm %s: %w", id, err)
	}
	return nil
}
