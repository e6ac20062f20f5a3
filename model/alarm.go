package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a minute-resolution wall-clock time with no date component.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return t, fmt.Errorf("time %q is not in HH:MM form", s)
	}
	t.Hour = int(s[0]-'0')*10 + int(s[1]-'0')
	t.Minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if !t.Valid() {
		return t, fmt.Errorf("time %q is out of range", s)
	}
	return t, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TimeOfDayOf truncates t to its minute of day.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TrackRef points at the track an alarm plays. The alarm does not own it.
type TrackRef struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Alarm is a recurring wake event.
type Alarm struct {
	ID         string     `json:"id"`
	Time       TimeOfDay  `json:"time"`
	Label      string     `json:"label"`
	Enabled    bool       `json:"enabled"`
	RepeatDays WeekdaySet `json:"repeatDays"`
	Track      TrackRef   `json:"track"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// DisplayLabel returns the label or, when it is empty, the given default.
func (a Alarm) DisplayLabel(fallback string) string {
	if a.Label == "" {
		return fallback
	}
	return a.Label
}

// CreateAlarmRequest is the body of POST /api/alarms.
type CreateAlarmRequest struct {
	Time       string     `json:"time"`
	Label      string     `json:"label"`
	Enabled    *bool      `json:"enabled,omitempty"`
	RepeatDays WeekdaySet `json:"repeatDays"`
	TrackID    string     `json:"trackId,omitempty"`
}
