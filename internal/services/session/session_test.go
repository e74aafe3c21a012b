package session

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
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepositoryMock) DeactivateTrial(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) ActivateTrial(ctx context.Context, uid string, endsAt time.Time) (int, error) {
	args := m.Called(ctx, uid, endsAt)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) RejectTrial(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) ClearPlanUpdate(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}

type ReminderCounterMock struct {
	mock.Mock
}

func (m *ReminderCounterMock) CountRemindersForDay(ctx context.Context, userUID string, dayStart, dayEnd time.Time) (int, error) {
	args := m.Called(ctx, userUID, dayStart, dayEnd)
	return args.Int(0), args.Error(1)
}

type OfferSinkMock struct {
	mock.Mock
}

func (m *OfferSinkMock) OfferTrial(userUID string) {
	m.Called(userUID)
}

func (m *OfferSinkMock) Connected(userUID string) bool {
	args := m.Called(userUID)
	return args.Bool(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *UserRepositoryMock, counter *ReminderCounterMock, sink *OfferSinkMock) *Service {
	return New(repo, counter, sink, nil, "notifications", "owner@example.com", newNoopLogger())
}

func TestReconcile_TrialStillRunning(t *testing.T) {
	repo := new(UserRepositoryMock)
	endsAt := time.Now().Add(30 * time.Minute)
	repo.On("GetUserByUID", mock.Anything, "uid-1").Return(&models.User{
		UUID:        "uid-1",
		Plan:        models.PlanFree,
		TrialActive: true,
		TrialEndsAt: &endsAt,
	}, nil)

	svc := newService(repo, new(ReminderCounterMock), new(OfferSinkMock))

	u, err := svc.Reconcile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.True(t, u.TrialActive)
	repo.AssertNotCalled(t, "DeactivateTrial", mock.Anything, mock.Anything)
}

func TestReconcile_TrialExpired(t *testing.T) {
	repo := new(UserRepositoryMock)
	endsAt := time.Now().Add(-time.Minute)
	repo.On("GetUserByUID", mock.Anything, "uid-1").Return(&models.User{
		UUID:        "uid-1",
		Email:       "user@example.com",
		Plan:        models.PlanFree,
		TrialActive: true,
		TrialEndsAt: &endsAt,
	}, nil)
	repo.On("DeactivateTrial", mock.Anything, "uid-1").Return(1, nil)

	svc := newService(repo, new(ReminderCounterMock), new(OfferSinkMock))

	u, err := svc.Reconcile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, u.TrialActive)
	repo.AssertExpectations(t)
}

func TestProfile(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("GetUserByUID", mock.Anything, "uid-1").Return(&models.User{
		UUID:          "uid-1",
		Email:         "user@example.com",
		Plan:          models.PlanMonthly,
		HasPlanUpdate: true,
	}, nil)

	counter := new(ReminderCounterMock)
	counter.On("CountRemindersForDay", mock.Anything, "uid-1", mock.Anything, mock.Anything).Return(2, nil)

	svc := newService(repo, counter, new(OfferSinkMock))

	profile, err := svc.Profile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 5, profile.Capabilities.DailyLimit)
	assert.True(t, profile.Capabilities.AdvancedFields)
	assert.Equal(t, 2, profile.TodayCount)
	assert.True(t, profile.HasPlanUpdate)
}

func TestProfile_OwnerBypass(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("GetUserByUID", mock.Anything, "uid-owner").Return(&models.User{
		UUID:  "uid-owner",
		Email: "owner@example.com",
		Plan:  models.PlanFree,
	}, nil)

	counter := new(ReminderCounterMock)
	counter.On("CountRemindersForDay", mock.Anything, "uid-owner", mock.Anything, mock.Anything).Return(100, nil)

	svc := newService(repo, counter, new(OfferSinkMock))

	profile, err := svc.Profile(context.Background(), "uid-owner")
	require.NoError(t, err)
	assert.Equal(t, 9999, profile.Capabilities.DailyLimit)
	assert.True(t, profile.Capabilities.AnalyticsTab)
}

func TestClaimTrial(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("ActivateTrial", mock.Anything, "uid-1", mock.Anything).Return(1, nil)
	endsAt := time.Now().Add(time.Hour)
	repo.On("GetUserByUID", mock.Anything, "uid-1").Return(&models.User{
		UUID:        "uid-1",
		TrialActive: true,
		TrialEndsAt: &endsAt,
	}, nil)

	svc := newService(repo, new(ReminderCounterMock), new(OfferSinkMock))

	u, err := svc.ClaimTrial(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.True(t, u.TrialActive)
}

func TestClaimTrial_AlreadyUsed(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("ActivateTrial", mock.Anything, "uid-1", mock.Anything).Return(0, nil)

	svc := newService(repo, new(ReminderCounterMock), new(OfferSinkMock))

	_, err := svc.ClaimTrial(context.Background(), "uid-1")
	assert.ErrorIs(t, err, ErrTrialUnavailable)
}

func TestAckPlanUpdate(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("ClearPlanUpdate", mock.Anything, "uid-1").Return(1, nil)

	svc := newService(repo, new(ReminderCounterMock), new(OfferSinkMock))

	require.NoError(t, svc.AckPlanUpdate(context.Background(), "uid-1"))
	repo.AssertExpectations(t)
}
