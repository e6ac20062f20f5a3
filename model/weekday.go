package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays stored as a bitmask indexed by time.Weekday.
// The zero value is the empty set, which the scheduler treats as "every day".
type WeekdaySet uint8

const allDays WeekdaySet = 1<<7 - 1

var weekdayTags = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Tags accepted on input besides the English ones; the app's default locale is pt-BR.
var weekdayAliases = map[string]time.Weekday{
	"dom": time.Sunday,
	"seg": time.Monday,
	"ter": time.Tuesday,
	"qua": time.Wednesday,
	"qui": time.Thursday,
	"sex": time.Friday,
	"sab": time.Saturday,
	"sáb": time.Saturday,
}

// WeekdayTagPT returns the pt-BR short tag for d.
func WeekdayTagPT(d time.Weekday) string {
	return [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}[d]
}

// NewWeekdaySet builds a set from the given days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// Weekdays is Monday through Friday.
func Weekdays() WeekdaySet {
	return NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s&allDays == 0
}

// Matches reports whether an alarm with this repeat set may fire on d.
func (s WeekdaySet) Matches(d time.Weekday) bool {
	return s.IsEmpty() || s.Has(d)
}

// Days lists members from Sunday to Saturday.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Tags returns the English short tags ("Mon", "Tue", ...).
func (s WeekdaySet) Tags() []string {
	tags := make([]string, 0, 7)
	for _, d := range s.Days() {
		tags = append(tags, weekdayTags[d])
	}
	return tags
}

// String renders the set as a comma separated tag list, e.g. "Mon,Tue".
func (s WeekdaySet) String() string {
	return strings.Join(s.Tags(), ",")
}

// ParseWeekday accepts English ("Mon", "monday") and pt-BR ("Seg") tags.
func ParseWeekday(tag string) (time.Weekday, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if d, ok := weekdayAliases[t]; ok {
		return d, nil
	}
	for i, name := range weekdayTags {
		full := strings.ToLower(time.Weekday(i).String())
		if t == strings.ToLower(name) || t == full {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", tag)
}

// ParseWeekdaySet parses a comma separated list. An empty string is the empty set.
func ParseWeekdaySet(s string) (WeekdaySet, error) {
	var set WeekdaySet
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		d, err := ParseWeekday(part)
		if err != nil {
			return 0, err
		}
		set = set.With(d)
	}
	return set, nil
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Tags())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("repeatDays must be a list of weekday tags: %w", err)
	}
	var set WeekdaySet
	for _, tag := range tags {
		d, err := ParseWeekday(tag)
		if err != nil {
			return err
		}
		set = set.With(d)
	}
	*s = set
	return nil
}
