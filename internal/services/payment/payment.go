// Package payment реализует оформление покупки тарифа с ручной проверкой:
// пользователь прикладывает идентификатор перевода и скриншот, администратор
// одобряет или отклоняет платеж. Только одобрение меняет тариф.
package payment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/voiceminder/voiceminder/internal/lib/rabbitmq"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
)

// Ошибки уровня бизнес-логики.
var (
	ErrBadScreenshot   = errors.New("invalid screenshot data")
	ErrAlreadyReviewed = errors.New("transaction already reviewed")
	ErrUnknownPlan     = errors.New("unknown plan")
)

// Repository описывает необходимые операции хранилища платежей.
type Repository interface {
	CreateTransaction(ctx context.Context, t models.Transaction) error
	ReadTransaction(ctx context.Context, uuid string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error)
	ListUserTransactions(ctx context.Context, userUID string) ([]*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, uuid string, status models.TransactionStatus) (int, error)
	RemoveTransactions(ctx context.Context, uuids []string) (int, error)
}

// UserRepository применяет одобренный тариф к пользователю.
type UserRepository interface {
	ApplyPlan(ctx context.Context, uid string, plan models.Plan, expiry time.Time) (int, error)
}

// Uploader загружает бинарные вложения и возвращает публичную ссылку.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service реализует бизнес-логику платежей.
type Service struct {
	repo     Repository
	users    UserRepository
	uploader Uploader
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
}

// Receipt результат оформления покупки: ожидающий платеж и сообщение
// о сроке активации.
type Receipt struct {
	Transaction *models.Transaction
	Message     string
}

// New создает сервис платежей.
func New(repo Repository, users UserRepository, uploader Uploader,
	ch *amqp.Channel, exchange string, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		uploader: uploader,
		ch:       ch,
		exchange: exchange,
		log:      log,
	}
}

// Checkout оформляет покупку: скриншот уходит в объектное хранилище,
// платеж записывается со статусом pending до решения администратора.
func (s *Service) Checkout(ctx context.Context, user *models.User, dummy models.DummyCheckout) (*Receipt, error) {
	const op = "payment.Checkout"

	plan := models.Plan(dummy.Plan)
	if !plan.Valid() || plan == models.PlanFree {
		return nil, fmt.Errorf("%s: %w", op, ErrUnknownPlan)
	}

	data, err := base64.StdEncoding.DecodeString(dummy.Screenshot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBadScreenshot)
	}

	txUID := uuid.NewString()
	key := fmt.Sprintf("screenshots/%s/%s.png", user.UUID, txUID)
	url, err := s.uploader.Upload(ctx, key, data, "image/png")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := models.Transaction{
		UUID:          txUID,
		UserUID:       user.UUID,
		UserEmail:     user.Email,
		Plan:          plan,
		Amount:        dummy.Amount,
		TransactionID: dummy.TransactionID,
		ScreenshotURL: url,
		Status:        models.TransactionPending,
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("checkout submitted",
		slog.String("transaction_uid", txUID),
		slog.String("user_uid", user.UUID),
		slog.String("plan", string(plan)))

	return &Receipt{
		Transaction: &t,
		Message:     DeliveryMessage(time.Now()),
	}, nil
}

// DeliveryMessage возвращает обещание о сроке активации тарифа:
// после 22:00 — завтра до 17:00, в воскресенье — сегодня до 22:00,
// в остальное время — сегодня до 22:00.
func DeliveryMessage(now time.Time) string {
	if now.Hour() >= 22 {
		return "Since you ordered after 10:00 PM, your plan will be activated tomorrow before 5:00 PM."
	}
	if now.Weekday() == time.Sunday {
		return "Your payment is received! Your plan will be activated tonight before 10:00 PM."
	}
	return "Your payment is received! Your plan will be activated today before 10:00 PM."
}

// Review применяет решение администратора. Переход односторонний:
// повторное решение по рассмотренному платежу возвращает ошибку.
// Одобрение выставляет пользователю тариф и публикует событие для письма.
func (s *Service) Review(ctx context.Context, txUID string, status models.TransactionStatus) (*models.Transaction, error) {
	const op = "payment.Review"

	t, err := s.repo.ReadTransaction(ctx, txUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.repo.UpdateTransactionStatus(ctx, txUID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyReviewed)
	}
	t.Status = status

	if status == models.TransactionApproved {
		expiry := time.Now().Add(t.Plan.Duration())
		if _, err := s.users.ApplyPlan(ctx, t.UserUID, t.Plan, expiry); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.publish(rabbitmq.RoutingPlanApproved, models.UserEvent{
			Email: t.UserEmail,
			Plan:  t.Plan,
		})
		s.log.Info("plan approved",
			slog.String("transaction_uid", txUID),
			slog.String("user_uid", t.UserUID),
			slog.String("plan", string(t.Plan)))
	}
	return t, nil
}

// List возвращает все платежи для админ-панели.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	const op = "payment.List"

	result, err := s.repo.ListTransactions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListForUser возвращает платежи одного пользователя.
func (s *Service) ListForUser(ctx context.Context, userUID string) ([]*models.Transaction, error) {
	const op = "payment.ListForUser"

	result, err := s.repo.ListUserTransactions(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Remove массово удаляет платежи (очистка истории в админ-панели).
func (s *Service) Remove(ctx context.Context, uuids []string) (int, error) {
	const op = "payment.Remove"

	removed, err := s.repo.RemoveTransactions(ctx, uuids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}

func (s *Service) publish(routingKey string, event models.UserEvent) {
	if s.ch == nil {
		return
	}
	if err := rabbitmq.PublishMessage(s.ch, s.exchange, routingKey, event); err != nil {
		s.log.Error("failed to publish message", sl.Err(err))
	}
}
