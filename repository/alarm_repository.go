package repository

import (
	"context"

	"VibeWake/model"
)

// AlarmRepository persists the alarm list. List returns insertion order.
type AlarmRepository interface {
	List(ctx context.Context) ([]model.Alarm, error)
	Create(ctx context.Context, alarm model.Alarm) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
}

func recordsToAlarms(records []model.AlarmRecord) ([]model.Alarm, error) {
	alarms := make([]model.Alarm, 0, len(records))
	for _, rec := range records {
		a, err := rec.Alarm()
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, nil
}
