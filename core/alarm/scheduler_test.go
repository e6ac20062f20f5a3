package alarm

import (
	"testing"
	"time"

	"VibeWake/model"

	"github.com/stretchr/testify/assert"
)

// 2024-05-06 is a Monday.
func monday(h, m, s int) time.Time {
	return time.Date(2024, 5, 6, h, m, s, 0, time.UTC)
}

func TestEvaluate(t *testing.T) {
	mondayOnly := model.NewWeekdaySet(time.Monday)
	sundayOnly := model.NewWeekdaySet(time.Sunday)

	tests := []struct {
		name   string
		now    time.Time
		alarms []model.Alarm
		mode   model.SessionMode
		want   string
	}{{
		name:   "exact match fires",
		now:    monday(7, 30, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}},
		mode:   model.ModeIdle,
		want:   "a",
	}, {
		name:   "match later in the minute still fires",
		now:    monday(7, 30, 42),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}},
		mode:   model.ModeIdle,
		want:   "a",
	}, {
		name:   "disabled never fires",
		now:    monday(7, 30, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: false}},
		mode:   model.ModeIdle,
	}, {
		name:   "other minute",
		now:    monday(7, 31, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}},
		mode:   model.ModeIdle,
	}, {
		name:   "ringing suppresses",
		now:    monday(7, 30, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}},
		mode:   model.ModeRinging,
	}, {
		name:   "snooze pending suppresses",
		now:    monday(7, 30, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}},
		mode:   model.ModeSnoozePending,
	}, {
		name:   "repeat day matches",
		now:    monday(7, 30, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true, RepeatDays: mondayOnly}},
		mode:   model.ModeIdle,
		want:   "a",
	}, {
		name:   "repeat day excludes today",
		now:    monday(7, 30, 0),
		alarms: []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true, RepeatDays: sundayOnly}},
		mode:   model.ModeIdle,
	}, {
		name: "earliest inserted wins",
		now:  monday(8, 0, 0),
		alarms: []model.Alarm{
			{ID: "A", Time: at(8, 0), Enabled: true},
			{ID: "B", Time: at(8, 0), Enabled: true},
		},
		mode: model.ModeIdle,
		want: "A",
	}, {
		name: "skips a disabled first match",
		now:  monday(8, 0, 0),
		alarms: []model.Alarm{
			{ID: "A", Time: at(8, 0), Enabled: false},
			{ID: "B", Time: at(8, 0), Enabled: true},
		},
		mode: model.ModeIdle,
		want: "B",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewScheduler().Evaluate(tt.now, tt.alarms, tt.mode)
			if tt.want == "" {
				assert.False(t, ok, "fired %s", got.ID)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestEvaluateFiresOncePerMinute(t *testing.T) {
	s := NewScheduler()
	alarms := []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}}

	_, ok := s.Evaluate(monday(7, 30, 0), alarms, model.ModeIdle)
	assert.True(t, ok)

	// Every later second of the same minute, even after the session went idle again.
	for sec := 1; sec < 60; sec++ {
		_, ok := s.Evaluate(monday(7, 30, sec), alarms, model.ModeIdle)
		assert.False(t, ok, "refired at second %d", sec)
	}

	// Next day, same time.
	_, ok = s.Evaluate(monday(7, 30, 0).AddDate(0, 0, 1), alarms, model.ModeIdle)
	assert.True(t, ok)
}

func TestEvaluateAfterSuppressedTick(t *testing.T) {
	s := NewScheduler()
	alarms := []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}}

	// A suppressed evaluation does not consume the minute.
	_, ok := s.Evaluate(monday(7, 30, 0), alarms, model.ModeRinging)
	assert.False(t, ok)
	_, ok = s.Evaluate(monday(7, 30, 5), alarms, model.ModeIdle)
	assert.True(t, ok)
}

func TestMarkFired(t *testing.T) {
	s := NewScheduler()
	alarms := []model.Alarm{{ID: "a", Time: at(7, 30), Enabled: true}}
	s.MarkFired(monday(7, 30, 10))
	_, ok := s.Evaluate(monday(7, 30, 11), alarms, model.ModeIdle)
	assert.False(t, ok)
	assert.Equal(t, monday(7, 30, 0), s.LastFired())
}
