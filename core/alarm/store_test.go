package alarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"VibeWake/core/clock"
	"VibeWake/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo records calls and can be told to fail.
type memRepo struct {
	rows    []model.Alarm
	fail    error
	creates int
}

func (r *memRepo) List(ctx context.Context) ([]model.Alarm, error) {
	return append([]model.Alarm(nil), r.rows...), r.fail
}

func (r *memRepo) Create(ctx context.Context, a model.Alarm) error {
	if r.fail != nil {
		return r.fail
	}
	r.creates++
	r.rows = append(r.rows, a)
	return nil
}

func (r *memRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if r.fail != nil {
		return r.fail
	}
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Enabled = enabled
		}
	}
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	if r.fail != nil {
		return r.fail
	}
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			break
		}
	}
	return nil
}

func newTestStore(repo *memRepo) *Store {
	c := clock.NewFake(time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC))
	if repo == nil {
		return NewStore(c, nil)
	}
	return NewStore(c, repo)
}

func at(h, m int) model.TimeOfDay { return model.TimeOfDay{Hour: h, Minute: m} }

func TestStoreAddAssignsIDsInOrder(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()

	a, err := s.Add(ctx, model.Alarm{Time: at(7, 0), Label: "A", Enabled: true})
	require.NoError(t, err)
	b, err := s.Add(ctx, model.Alarm{Time: at(6, 0), Label: "B", Enabled: true})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, b.CreatedAt.After(a.CreatedAt))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Label)
	assert.Equal(t, "B", list[1].Label)
}

func TestStoreRejectsDuplicateAndInvalid(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()

	_, err := s.Add(ctx, model.Alarm{ID: "x", Time: at(7, 0)})
	require.NoError(t, err)
	_, err = s.Add(ctx, model.Alarm{ID: "x", Time: at(8, 0)})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	_, err = s.Add(ctx, model.Alarm{Time: model.TimeOfDay{Hour: 25}})
	assert.ErrorIs(t, err, ErrInvalidTime)
	assert.Equal(t, 1, s.Len())
}

func TestStoreToggleAndRemove(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	a, err := s.Add(ctx, model.Alarm{Time: at(7, 0), Enabled: true})
	require.NoError(t, err)

	got, found, err := s.Toggle(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, got.Enabled)

	_, found, err = s.Toggle(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := s.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, s.List())
}

func TestStoreListReturnsCopy(t *testing.T) {
	s := newTestStore(nil)
	_, err := s.Add(context.Background(), model.Alarm{Time: at(7, 0), Label: "orig"})
	require.NoError(t, err)

	list := s.List()
	list[0].Label = "changed"
	assert.Equal(t, "orig", s.List()[0].Label)
}

func TestStoreWriteThrough(t *testing.T) {
	repo := &memRepo{}
	s := newTestStore(repo)
	ctx := context.Background()

	a, err := s.Add(ctx, model.Alarm{Time: at(7, 0), Enabled: true})
	require.NoError(t, err)
	_, _, err = s.Toggle(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, repo.rows, 1)
	assert.False(t, repo.rows[0].Enabled)

	// A failed write leaves memory untouched.
	repo.fail = errors.New("db down")
	_, err = s.Add(ctx, model.Alarm{Time: at(8, 0)})
	assert.Error(t, err)
	_, err = s.Remove(ctx, a.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, s.Len())

	repo.fail = nil
	reloaded := newTestStore(repo)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.List(), reloaded.List())
}

func TestSeedIfEmpty(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	track := model.Track{ID: "1", Title: "Morning Sunshine", SourceURL: "https://example.com/1.mp3"}

	seeded, err := s.SeedIfEmpty(ctx, DefaultAlarm(track))
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedIfEmpty(ctx, DefaultAlarm(track))
	require.NoError(t, err)
	assert.False(t, seeded)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "07:30", list[0].Time.String())
	assert.Equal(t, DefaultAlarmLabel, list[0].Label)
	assert.Equal(t, model.Weekdays(), list[0].RepeatDays)
	assert.Equal(t, track.SourceURL, list[0].Track.URL)
}
