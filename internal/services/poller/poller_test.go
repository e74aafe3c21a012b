package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/voiceminder/voiceminder/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) FindDueReminders(ctx context.Context, from, to time.Time) ([]*models.Reminder, error) {
	args := m.Called(ctx, from, to)
	result, _ := args.Get(0).([]*models.Reminder)
	return result, args.Error(1)
}

func (m *RepositoryMock) MarkCompleted(ctx context.Context, uuid string) (int, error) {
	args := m.Called(ctx, uuid)
	return args.Int(0), args.Error(1)
}

type UserProviderMock struct {
	mock.Mock
}

func (m *UserProviderMock) Reconcile(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type EnqueuerMock struct {
	mock.Mock
}

func (m *EnqueuerMock) Enqueue(user *models.User, rem *models.Reminder) {
	m.Called(user, rem)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRunTick_FiresDueReminder(t *testing.T) {
	repo := new(RepositoryMock)
	users := new(UserProviderMock)
	enq := new(EnqueuerMock)

	rem := &models.Reminder{UUID: "rem-1", UserUID: "uid-1"}
	user := &models.User{UUID: "uid-1", Name: "Alex"}

	now := time.Now()
	repo.On("FindDueReminders", mock.Anything, now.Add(-5*time.Minute), now).
		Return([]*models.Reminder{rem}, nil)
	repo.On("MarkCompleted", mock.Anything, "rem-1").Return(1, nil)
	users.On("Reconcile", mock.Anything, "uid-1").Return(user, nil)
	enq.On("Enqueue", user, rem).Return()

	svc := New(repo, users, enq, newNoopLogger())
	svc.runTick(context.Background(), now)

	repo.AssertExpectations(t)
	enq.AssertExpectations(t)
}

func TestRunTick_AlreadyCompletedSkipped(t *testing.T) {
	repo := new(RepositoryMock)
	users := new(UserProviderMock)
	enq := new(EnqueuerMock)

	rem := &models.Reminder{UUID: "rem-1", UserUID: "uid-1"}

	repo.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]*models.Reminder{rem}, nil)
	// другой экземпляр успел пометить напоминание первым
	repo.On("MarkCompleted", mock.Anything, "rem-1").Return(0, nil)

	svc := New(repo, users, enq, newNoopLogger())
	svc.runTick(context.Background(), time.Now())

	enq.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestRunTick_FetchErrorIsSilent(t *testing.T) {
	repo := new(RepositoryMock)
	enq := new(EnqueuerMock)

	repo.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	svc := New(repo, new(UserProviderMock), enq, newNoopLogger())
	svc.runTick(context.Background(), time.Now())

	enq.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestRunTick_OwnerLoadErrorSkipsReminder(t *testing.T) {
	repo := new(RepositoryMock)
	users := new(UserProviderMock)
	enq := new(EnqueuerMock)

	first := &models.Reminder{UUID: "rem-1", UserUID: "uid-1"}
	second := &models.Reminder{UUID: "rem-2", UserUID: "uid-2"}
	user2 := &models.User{UUID: "uid-2"}

	repo.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]*models.Reminder{first, second}, nil)
	repo.On("MarkCompleted", mock.Anything, "rem-1").Return(1, nil)
	repo.On("MarkCompleted", mock.Anything, "rem-2").Return(1, nil)
	users.On("Reconcile", mock.Anything, "uid-1").Return(nil, errors.New("not found"))
	users.On("Reconcile", mock.Anything, "uid-2").Return(user2, nil)
	enq.On("Enqueue", user2, second).Return()

	svc := New(repo, users, enq, newNoopLogger())
	svc.runTick(context.Background(), time.Now())

	enq.AssertExpectations(t)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	svc := New(repo, new(UserProviderMock), new(EnqueuerMock), newNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on context cancel")
	}
	assert.True(t, true)
}
