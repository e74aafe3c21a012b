package reminder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/services/gate"
	"github.com/voiceminder/voiceminder/internal/services/session"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) CreateReminder(ctx context.Context, r models.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RepositoryMock) ListReminders(ctx context.Context, userUID string) ([]*models.Reminder, error) {
	args := m.Called(ctx, userUID)
	result, _ := args.Get(0).([]*models.Reminder)
	return result, args.Error(1)
}

func (m *RepositoryMock) RemoveReminder(ctx context.Context, uuid, userUID string) (int, error) {
	args := m.Called(ctx, uuid, userUID)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) SnoozeReminder(ctx context.Context, uuid, userUID string, newTime time.Time) (int, error) {
	args := m.Called(ctx, uuid, userUID, newTime)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) RemoveCompleted(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

type ProfileProviderMock struct {
	mock.Mock
}

func (m *ProfileProviderMock) Profile(ctx context.Context, uid string) (*session.Profile, error) {
	args := m.Called(ctx, uid)
	p, _ := args.Get(0).(*session.Profile)
	return p, args.Error(1)
}

type StopperMock struct {
	mock.Mock
}

func (m *StopperMock) Stop(userUID string) {
	m.Called(userUID)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func profileWith(caps gate.Capabilities, todayCount int) *session.Profile {
	return &session.Profile{
		User:         &models.User{UUID: "uid-1"},
		Capabilities: caps,
		TodayCount:   todayCount,
	}
}

func TestCreate(t *testing.T) {
	repo := new(RepositoryMock)
	profiles := new(ProfileProviderMock)
	cache := new(CacheMock)

	profiles.On("Profile", mock.Anything, "uid-1").
		Return(profileWith(gate.Evaluate(models.PlanYearly, false, false, 0), 0), nil)
	repo.On("CreateReminder", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", "stats:uid-1").Return(nil)

	svc := New(repo, profiles, new(StopperMock), cache, newNoopLogger())

	r, err := svc.Create(context.Background(), "uid-1", models.DummyReminder{
		Subject: "standup",
		Text:    "join the call",
		Time:    time.Now().Add(time.Hour).Format(time.RFC3339),
		Mood:    "urgent",
		Speed:   1.5,
		VoiceID: "en-IN-Female",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.UUID)
	assert.Equal(t, models.MoodUrgent, r.Mood)
	assert.Equal(t, 1.5, r.Speed)
	assert.Equal(t, "en-IN-Female", r.VoiceID)
	repo.AssertExpectations(t)
}

func TestCreate_DailyLimitReached(t *testing.T) {
	repo := new(RepositoryMock)
	profiles := new(ProfileProviderMock)

	profiles.On("Profile", mock.Anything, "uid-1").
		Return(profileWith(gate.Evaluate(models.PlanFree, false, false, 3), 3), nil)

	svc := New(repo, profiles, new(StopperMock), new(CacheMock), newNoopLogger())

	_, err := svc.Create(context.Background(), "uid-1", models.DummyReminder{
		Subject: "standup",
		Time:    time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrDailyLimit)
	repo.AssertNotCalled(t, "CreateReminder", mock.Anything, mock.Anything)
}

func TestCreate_AdvancedFieldsStripped(t *testing.T) {
	repo := new(RepositoryMock)
	profiles := new(ProfileProviderMock)
	cache := new(CacheMock)

	// Free не дает ни настроения, ни голоса, ни скорости
	profiles.On("Profile", mock.Anything, "uid-1").
		Return(profileWith(gate.Evaluate(models.PlanFree, false, false, 0), 0), nil)
	repo.On("CreateReminder", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", "stats:uid-1").Return(nil)

	svc := New(repo, profiles, new(StopperMock), cache, newNoopLogger())

	r, err := svc.Create(context.Background(), "uid-1", models.DummyReminder{
		Subject: "standup",
		Time:    time.Now().Add(time.Hour).Format(time.RFC3339),
		Mood:    "urgent",
		Speed:   2.0,
		VoiceID: "en-IN-Male",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MoodCalm, r.Mood)
	assert.Equal(t, 1.0, r.Speed)
	assert.Empty(t, r.VoiceID)
}

func TestCreate_BadTime(t *testing.T) {
	svc := New(new(RepositoryMock), new(ProfileProviderMock), new(StopperMock), new(CacheMock), newNoopLogger())

	_, err := svc.Create(context.Background(), "uid-1", models.DummyReminder{
		Subject: "standup",
		Time:    "tomorrow at noon",
	})
	assert.ErrorIs(t, err, ErrBadTime)
}

func TestSnooze(t *testing.T) {
	repo := new(RepositoryMock)
	stopper := new(StopperMock)
	cache := new(CacheMock)

	stopper.On("Stop", "uid-1").Return()
	repo.On("SnoozeReminder", mock.Anything, "rem-1", "uid-1", mock.MatchedBy(func(newTime time.Time) bool {
		diff := time.Until(newTime)
		return diff > 4*time.Minute && diff <= 5*time.Minute
	})).Return(1, nil)
	cache.On("Invalidate", "stats:uid-1").Return(nil)

	svc := New(repo, new(ProfileProviderMock), stopper, cache, newNoopLogger())

	require.NoError(t, svc.Snooze(context.Background(), "uid-1", "rem-1"))
	repo.AssertExpectations(t)
	stopper.AssertExpectations(t)
}

func TestSnooze_ForeignReminder(t *testing.T) {
	repo := new(RepositoryMock)
	stopper := new(StopperMock)

	// хранилище фильтрует по владельцу: чужое напоминание не задевается
	stopper.On("Stop", "uid-2").Return()
	repo.On("SnoozeReminder", mock.Anything, "rem-1", "uid-2", mock.Anything).Return(0, nil)

	svc := New(repo, new(ProfileProviderMock), stopper, new(CacheMock), newNoopLogger())

	err := svc.Snooze(context.Background(), "uid-2", "rem-1")
	assert.ErrorIs(t, err, ErrNotFound)
	repo.AssertExpectations(t)
}

func TestRemove_NotFound(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("RemoveReminder", mock.Anything, "rem-404", "uid-1").Return(0, nil)

	svc := New(repo, new(ProfileProviderMock), new(StopperMock), new(CacheMock), newNoopLogger())

	err := svc.Remove(context.Background(), "uid-1", "rem-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	now := time.Now()
	reminders := []*models.Reminder{
		{Mood: models.MoodCalm, Speed: 1.0, VoiceID: "en-IN-Female", IsCompleted: true},
		{Mood: models.MoodUrgent, Speed: 2.0, VoiceID: "en-IN-Female", IsCompleted: false, Time: now.Add(24 * time.Hour)},
		{Mood: models.MoodCalm, Speed: 1.0, VoiceID: "en-IN-Male", IsCompleted: false, Time: now.Add(30 * 24 * time.Hour)},
		{Mood: models.MoodCheerful, Speed: 1.0, IsCompleted: true},
	}

	stats := computeStats(reminders, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 2, stats.Ongoing)
	assert.Equal(t, 50, stats.CompletionRate)
	assert.Equal(t, 2, stats.MoodCounts[models.MoodCalm])
	assert.Equal(t, "en-IN-Female", stats.TopVoice)
	assert.InDelta(t, 1.25, stats.AverageSpeed, 1e-9)
	assert.Equal(t, 1, stats.ForecastWeek)
}

func TestStats_CacheHit(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	cache.On("Get", "stats:uid-1", mock.Anything).Run(func(args mock.Arguments) {
		stats := args.Get(1).(*models.ReminderStats)
		stats.Total = 7
	}).Return(true, nil)

	svc := New(repo, new(ProfileProviderMock), new(StopperMock), cache, newNoopLogger())

	stats, err := svc.Stats(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	repo.AssertNotCalled(t, "ListReminders", mock.Anything, mock.Anything)
}
