package model

import (
	"fmt"
	"time"
)

// AlarmRecord is the persisted row of an Alarm.
type AlarmRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36" db:"id"`
	Hour       int       `json:"hour" gorm:"not null" db:"hour"`
	Minute     int       `json:"minute" gorm:"not null" db:"minute"`
	Label      string    `json:"label" gorm:"size:200" db:"label"`
	Enabled    bool      `json:"enabled" gorm:"not null;default:true" db:"enabled"`
	RepeatDays string    `json:"repeatDays" gorm:"size:32" db:"repeat_days"` // "Mon,Tue"
	TrackID    string    `json:"trackId" gorm:"size:64" db:"track_id"`
	TrackTitle string    `json:"trackTitle" gorm:"size:255" db:"track_title"`
	TrackURL   string    `json:"trackUrl" gorm:"size:1024" db:"track_url"`
	Position   int64     `json:"position" gorm:"index;not null" db:"position"` // insertion order
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// TableName pins the table name.
func (AlarmRecord) TableName() string {
	return "alarms"
}

// NewAlarmRecord converts an Alarm for storage.
func NewAlarmRecord(a Alarm) AlarmRecord {
	return AlarmRecord{
		ID:         a.ID,
		Hour:       a.Time.Hour,
		Minute:     a.Time.Minute,
		Label:      a.Label,
		Enabled:    a.Enabled,
		RepeatDays: a.RepeatDays.String(),
		TrackID:    a.Track.ID,
		TrackTitle: a.Track.Title,
		TrackURL:   a.Track.URL,
		Position:   a.CreatedAt.UnixNano(),
		CreatedAt:  a.CreatedAt,
	}
}

// Alarm converts the row back, validating what the database handed us.
func (r AlarmRecord) Alarm() (Alarm, error) {
	t := TimeOfDay{Hour: r.Hour, Minute: r.Minute}
	if !t.Valid() {
		return Alarm{}, fmt.Errorf("alarm %s has invalid time %02d:%02d", r.ID, r.Hour, r.Minute)
	}
	days, err := ParseWeekdaySet(r.RepeatDays)
	if err != nil {
		return Alarm{}, fmt.Errorf("alarm %s: %w", r.ID, err)
	}
	return Alarm{
		ID:         r.ID,
		Time:       t,
		Label:      r.Label,
		Enabled:    r.Enabled,
		RepeatDays: days,
		Track:      TrackRef{ID: r.TrackID, Title: r.TrackTitle, URL: r.TrackURL},
		CreatedAt:  r.CreatedAt,
	}, nil
}
