package alarm

import (
	"time"

	"VibeWake/model"
)

// Match returns the first enabled alarm, in store order, set for the minute
// of now on a day its repeat set allows. An empty repeat set means every day.
func Match(now time.Time, alarms []model.Alarm) (model.Alarm, bool) {
	tod := model.TimeOfDayOf(now)
	day := now.Weekday()
	for _, a := range alarms {
		if !a.Enabled || a.Time != tod {
			continue
		}
		if a.RepeatDays.Matches(day) {
			return a, true
		}
	}
	return model.Alarm{}, false
}

// Scheduler decides, tick by tick, whether an alarm fires. It fires at most
// once per calendar minute, so it can be evaluated on every tick of the
// minute without refiring and a missed second-zero tick does not skip a fire.
//
// Not safe for concurrent use; the session engine owns it.
type Scheduler struct {
	lastFired time.Time
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Evaluate returns the alarm to fire at now, if any. Nothing fires unless the
// session is idle.
func (s *Scheduler) Evaluate(now time.Time, alarms []model.Alarm, mode model.SessionMode) (model.Alarm, bool) {
	if mode != model.ModeIdle {
		return model.Alarm{}, false
	}
	minute := minuteOf(now)
	if minute.Equal(s.lastFired) {
		return model.Alarm{}, false
	}
	a, ok := Match(now, alarms)
	if !ok {
		return model.Alarm{}, false
	}
	s.lastFired = minute
	return a, true
}

// MarkFired records that minute as used, e.g. when another instance already
// fired it.
func (s *Scheduler) MarkFired(now time.Time) {
	s.lastFired = minuteOf(now)
}

// LastFired returns the start of the last minute that fired.
func (s *Scheduler) LastFired() time.Time {
	return s.lastFired
}

func minuteOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}
