package repository

import (
	"context"
	"fmt"

	"VibeWake/model"

	"gorm.io/gorm"
)

// gormAlarmRepository GORM implementation (MySQL).
type gormAlarmRepository struct {
	db *gorm.DB
}

// NewGormAlarmRepository creates a GORM-backed alarm repository.
func NewGormAlarmRepository(db *gorm.DB) AlarmRepository {
	return &gormAlarmRepository{db: db}
}

func (r *gormAlarmRepository) List(ctx context.Context) ([]model.Alarm, error) {
	var records []model.AlarmRecord
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	return recordsToAlarms(records)
}

func (r *gormAlarmRepository) Create(ctx context.Context, alarm model.Alarm) error {
	rec := model.NewAlarmRecord(alarm)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create alarm %s: %w", alarm.ID, err)
	}
	return nil
}

func (r *gormAlarmRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	err := r.db.WithContext(ctx).Model(&model.AlarmRecord{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
	if err != nil {
		return fmt.Errorf("failed to update alarm %s: %w", id, err)
	}
	return nil
}

// Delete removes the row; a missing row is not an error.
func (r *gormAlarmRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.AlarmRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete alarm %s: %w", id, err)
	}
	return nil
}
