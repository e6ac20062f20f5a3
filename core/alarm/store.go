package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"VibeWake/core/clock"
	"VibeWake/logger"
	"VibeWake/model"
	"VibeWake/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidTime = errors.New("alarm time must be a valid HH:MM time of day")
	ErrDuplicateID = errors.New("an alarm with this id already exists")
)

const DefaultAlarmLabel = "Acordar para o Trabalho"

// DefaultAlarm is the alarm an empty store starts with: 07:30 on weekdays.
func DefaultAlarm(track model.Track) model.Alarm {
	return model.Alarm{
		Time:       model.TimeOfDay{Hour: 7, Minute: 30},
		Label:      DefaultAlarmLabel,
		Enabled:    true,
		RepeatDays: model.Weekdays(),
		Track:      track.Ref(),
	}
}

// Store holds the alarm list in insertion order. When a repository is set,
// every mutation is persisted before it becomes visible in memory.
type Store struct {
	mu     sync.RWMutex
	alarms []model.Alarm

	clock       clock.Clock
	repo        repository.AlarmRepository
	lastCreated time.Time
}

// NewStore creates a store. repo may be nil for an ephemeral store.
func NewStore(c clock.Clock, repo repository.AlarmRepository) *Store {
	return &Store{clock: c, repo: repo}
}

// Load replaces the in-memory list with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	alarms, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarms = alarms
	for _, a := range alarms {
		if a.CreatedAt.After(s.lastCreated) {
			s.lastCreated = a.CreatedAt
		}
	}
	logger.Info("Alarms loaded", logger.Int("count", len(alarms)))
	return nil
}

// SeedIfEmpty adds a when the store holds no alarms. It reports whether it did.
func (s *Store) SeedIfEmpty(ctx context.Context, a model.Alarm) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alarms) > 0 {
		return false, nil
	}
	if _, err := s.addLocked(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// Add appends a, assigning an id when it has none.
func (s *Store) Add(ctx context.Context, a model.Alarm) (model.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, a)
}

func (s *Store) addLocked(ctx context.Context, a model.Alarm) (model.Alarm, error) {
	if !a.Time.Valid() {
		return model.Alarm{}, ErrInvalidTime
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	} else if s.indexLocked(a.ID) >= 0 {
		return model.Alarm{}, fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}

	// CreatedAt doubles as the persisted ordering key, keep it strictly increasing.
	created := s.clock.Now()
	if !created.After(s.lastCreated) {
		created = s.lastCreated.Add(time.Nanosecond)
	}
	a.CreatedAt = created

	if s.repo != nil {
		if err := s.repo.Create(ctx, a); err != nil {
			return model.Alarm{}, err
		}
	}
	s.lastCreated = created
	s.alarms = append(s.alarms, a)
	return a, nil
}

// Toggle flips the enabled flag. Unknown ids are a no-op reported as found=false.
func (s *Store) Toggle(ctx context.Context, id string) (model.Alarm, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Alarm{}, false, nil
	}
	enabled := !s.alarms[i].Enabled
	if s.repo != nil {
		if err := s.repo.SetEnabled(ctx, id, enabled); err != nil {
			return model.Alarm{}, true, err
		}
	}
	s.alarms[i].Enabled = enabled
	return s.alarms[i], true, nil
}

// Remove deletes the alarm. Unknown ids are a no-op reported as false.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			return true, err
		}
	}
	s.alarms = append(s.alarms[:i], s.alarms[i+1:]...)
	return true, nil
}

// List returns a copy of the alarms in insertion order.
func (s *Store) List() []model.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alarm, len(s.alarms))
	copy(out, s.alarms)
	return out
}

func (s *Store) Get(id string) (model.Alarm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.alarms[i], true
	}
	return model.Alarm{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alarms)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			return i
		}
	}
	return -1
}
