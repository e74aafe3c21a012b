package payment

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voiceminder/voiceminder/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) CreateTransaction(ctx context.Context, t models.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *RepositoryMock) ReadTransaction(ctx context.Context, uuid string) (*models.Transaction, error) {
	args := m.Called(ctx, uuid)
	t, _ := args.Get(0).(*models.Transaction)
	return t, args.Error(1)
}

func (m *RepositoryMock) ListTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	result, _ := args.Get(0).([]*models.Transaction)
	return result, args.Error(1)
}

func (m *RepositoryMock) ListUserTransactions(ctx context.Context, userUID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, userUID)
	result, _ := args.Get(0).([]*models.Transaction)
	return result, args.Error(1)
}

func (m *RepositoryMock) UpdateTransactionStatus(ctx context.Context, uuid string, status models.TransactionStatus) (int, error) {
	args := m.Called(ctx, uuid, status)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) RemoveTransactions(ctx context.Context, uuids []string) (int, error) {
	args := m.Called(ctx, uuids)
	return args.Int(0), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) ApplyPlan(ctx context.Context, uid string, plan models.Plan, expiry time.Time) (int, error) {
	args := m.Called(ctx, uid, plan, expiry)
	return args.Int(0), args.Error(1)
}

type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *RepositoryMock, users *UserRepositoryMock, uploader *UploaderMock) *Service {
	return New(repo, users, uploader, nil, "notifications", newNoopLogger())
}

func testUser() *models.User {
	return &models.User{UUID: "uid-1", Email: "user@example.com"}
}

func TestCheckout(t *testing.T) {
	repo := new(RepositoryMock)
	uploader := new(UploaderMock)

	screenshot := []byte{0x89, 0x50, 0x4E, 0x47}
	uploader.On("Upload", mock.Anything, mock.Anything, screenshot, "image/png").
		Return("https://cdn.example.com/screenshots/uid-1/tx.png", nil)
	repo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx models.Transaction) bool {
		return tx.UserUID == "uid-1" &&
			tx.Plan == models.PlanMonthly &&
			tx.Status == models.TransactionPending &&
			tx.ScreenshotURL == "https://cdn.example.com/screenshots/uid-1/tx.png"
	})).Return(nil)

	svc := newService(repo, new(UserRepositoryMock), uploader)

	receipt, err := svc.Checkout(context.Background(), testUser(), models.DummyCheckout{
		Plan:          "Monthly",
		Amount:        49,
		TransactionID: "UPI-12345",
		Screenshot:    base64.StdEncoding.EncodeToString(screenshot),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionPending, receipt.Transaction.Status)
	assert.NotEmpty(t, receipt.Message)
	repo.AssertExpectations(t)
}

func TestCheckout_BadScreenshot(t *testing.T) {
	svc := newService(new(RepositoryMock), new(UserRepositoryMock), new(UploaderMock))

	_, err := svc.Checkout(context.Background(), testUser(), models.DummyCheckout{
		Plan:          "Monthly",
		Amount:        49,
		TransactionID: "UPI-12345",
		Screenshot:    "%%%not-base64%%%",
	})
	assert.ErrorIs(t, err, ErrBadScreenshot)
}

func TestCheckout_FreePlanRejected(t *testing.T) {
	svc := newService(new(RepositoryMock), new(UserRepositoryMock), new(UploaderMock))

	_, err := svc.Checkout(context.Background(), testUser(), models.DummyCheckout{
		Plan:          "Free",
		Amount:        1,
		TransactionID: "UPI-12345",
		Screenshot:    base64.StdEncoding.EncodeToString([]byte("img")),
	})
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestDeliveryMessage(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "weekday afternoon",
			now:  time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC), // понедельник
			want: "Your payment is received! Your plan will be activated today before 10:00 PM.",
		},
		{
			name: "sunday afternoon",
			now:  time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
			want: "Your payment is received! Your plan will be activated tonight before 10:00 PM.",
		},
		{
			name: "late night",
			now:  time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC),
			want: "Since you ordered after 10:00 PM, your plan will be activated tomorrow before 5:00 PM.",
		},
		{
			name: "sunday late night uses night rule",
			now:  time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC),
			want: "Since you ordered after 10:00 PM, your plan will be activated tomorrow before 5:00 PM.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliveryMessage(tt.now))
		})
	}
}

func TestReview_Approve(t *testing.T) {
	repo := new(RepositoryMock)
	users := new(UserRepositoryMock)

	tx := &models.Transaction{
		UUID:      "tx-1",
		UserUID:   "uid-1",
		UserEmail: "user@example.com",
		Plan:      models.PlanYearly,
		Status:    models.TransactionPending,
	}
	repo.On("ReadTransaction", mock.Anything, "tx-1").Return(tx, nil)
	repo.On("UpdateTransactionStatus", mock.Anything, "tx-1", models.TransactionApproved).Return(1, nil)
	users.On("ApplyPlan", mock.Anything, "uid-1", models.PlanYearly, mock.MatchedBy(func(expiry time.Time) bool {
		return expiry.After(time.Now().Add(364 * 24 * time.Hour))
	})).Return(1, nil)

	svc := newService(repo, users, new(UploaderMock))

	got, err := svc.Review(context.Background(), "tx-1", models.TransactionApproved)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionApproved, got.Status)
	users.AssertExpectations(t)
}

func TestReview_RejectDoesNotTouchUser(t *testing.T) {
	repo := new(RepositoryMock)
	users := new(UserRepositoryMock)

	tx := &models.Transaction{UUID: "tx-1", UserUID: "uid-1", Plan: models.PlanMonthly}
	repo.On("ReadTransaction", mock.Anything, "tx-1").Return(tx, nil)
	repo.On("UpdateTransactionStatus", mock.Anything, "tx-1", models.TransactionRejected).Return(1, nil)

	svc := newService(repo, users, new(UploaderMock))

	got, err := svc.Review(context.Background(), "tx-1", models.TransactionRejected)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionRejected, got.Status)
	users.AssertNotCalled(t, "ApplyPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_AlreadyReviewed(t *testing.T) {
	repo := new(RepositoryMock)

	tx := &models.Transaction{UUID: "tx-1", Status: models.TransactionApproved}
	repo.On("ReadTransaction", mock.Anything, "tx-1").Return(tx, nil)
	repo.On("UpdateTransactionStatus", mock.Anything, "tx-1", models.TransactionRejected).Return(0, nil)

	svc := newService(repo, new(UserRepositoryMock), new(UploaderMock))

	_, err := svc.Review(context.Background(), "tx-1", models.TransactionRejected)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}
