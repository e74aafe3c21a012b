// Package session сверяет профиль пользователя с хранилищем.
//
// Любое чтение профиля проходит через Reconcile: состояние пробного периода
// и одноразовый флаг одобрения тарифа выводятся заново из строки базы,
// а не из закешированной копии. Здесь же живет отложенное предложение
// пробного периода после подключения пользователя.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/voiceminder/voiceminder/internal/lib/rabbitmq"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/services/gate"
)

// trialPeriod длительность пробного периода.
const trialPeriod = time.Hour

// trialOfferDelay пауза перед показом предложения пробного периода.
const trialOfferDelay = 10 * time.Second

// ErrTrialUnavailable пользователь уже использовал или отклонил пробный период.
var ErrTrialUnavailable = errors.New("trial unavailable")

// UserRepository описывает необходимые операции хранилища пользователей.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	DeactivateTrial(ctx context.Context, uid string) (int, error)
	ActivateTrial(ctx context.Context, uid string, endsAt time.Time) (int, error)
	RejectTrial(ctx context.Context, uid string) (int, error)
	ClearPlanUpdate(ctx context.Context, uid string) (int, error)
}

// ReminderCounter считает напоминания пользователя за календарный день.
type ReminderCounter interface {
	CountRemindersForDay(ctx context.Context, userUID string, dayStart, dayEnd time.Time) (int, error)
}

// OfferSink доставляет предложение пробного периода подключенному клиенту.
type OfferSink interface {
	OfferTrial(userUID string)
	Connected(userUID string) bool
}

// Service реализует сверку профиля и операции пробного периода.
type Service struct {
	repo       UserRepository
	counter    ReminderCounter
	sink       OfferSink
	ch         *amqp.Channel
	exchange   string
	ownerEmail string
	log        *slog.Logger
}

// Profile сверенный профиль пользователя вместе с его возможностями.
type Profile struct {
	User          *models.User
	Capabilities  gate.Capabilities
	TodayCount    int
	HasPlanUpdate bool
}

// New создает сервис профилей.
func New(repo UserRepository, counter ReminderCounter, sink OfferSink,
	ch *amqp.Channel, exchange, ownerEmail string, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		counter:    counter,
		sink:       sink,
		ch:         ch,
		exchange:   exchange,
		ownerEmail: ownerEmail,
		log:        log,
	}
}

// IsOwner сообщает, принадлежит ли профиль владельцу приложения.
func (s *Service) IsOwner(u *models.User) bool {
	return s.ownerEmail != "" && u.Email == s.ownerEmail
}

// Reconcile перечитывает пользователя из хранилища и гасит истекший
// пробный период, публикуя событие для письма об окончании триала.
func (s *Service) Reconcile(ctx context.Context, uid string) (*models.User, error) {
	const op = "session.Reconcile"

	u, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	if u.TrialActive && u.TrialEndsAt != nil && !now.Before(*u.TrialEndsAt) {
		if _, err := s.repo.DeactivateTrial(ctx, uid); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.TrialActive = false
		s.publish(rabbitmq.RoutingTrialExpired, models.UserEvent{
			Email: u.Email,
			Name:  u.Name,
		})
		s.log.Info("trial expired", slog.String("user_uid", uid))
	}
	return u, nil
}

// Profile возвращает сверенный профиль вместе с возможностями тарифа.
func (s *Service) Profile(ctx context.Context, uid string) (*Profile, error) {
	const op = "session.Profile"

	u, err := s.Reconcile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.counter.CountRemindersForDay(ctx, uid, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Profile{
		User:          u,
		Capabilities:  gate.Evaluate(u.Plan, u.TrialRunning(now), s.IsOwner(u), count),
		TodayCount:    count,
		HasPlanUpdate: u.HasPlanUpdate,
	}, nil
}

// AckPlanUpdate подтверждает показ поздравления об одобренном тарифе,
// после чего флаг не взводится повторно.
func (s *Service) AckPlanUpdate(ctx context.Context, uid string) error {
	const op = "session.AckPlanUpdate"

	if _, err := s.repo.ClearPlanUpdate(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClaimTrial активирует пробный период на час. Повторная активация
// невозможна: право на пробный период сгорает навсегда.
func (s *Service) ClaimTrial(ctx context.Context, uid string) (*models.User, error) {
	const op = "session.ClaimTrial"

	rows, err := s.repo.ActivateTrial(ctx, uid, time.Now().Add(trialPeriod))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrTrialUnavailable)
	}
	u, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("trial activated", slog.String("user_uid", uid))
	return u, nil
}

// RejectTrial отклоняет предложение пробного периода, сжигая право на него.
func (s *Service) RejectTrial(ctx context.Context, uid string) error {
	const op = "session.RejectTrial"

	if _, err := s.repo.RejectTrial(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ScheduleTrialOffer показывает предложение пробного периода через 10 секунд
// после подключения, если пользователь все еще имеет на него право.
func (s *Service) ScheduleTrialOffer(ctx context.Context, uid string) {
	go func() {
		timer := time.NewTimer(trialOfferDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		u, err := s.Reconcile(ctx, uid)
		if err != nil {
			s.log.Error("failed to reconcile user for trial offer", sl.Err(err))
			return
		}
		now := time.Now()
		eligible := u.IsTrialEligible && u.Plan == models.PlanFree &&
			!s.IsOwner(u) && !u.TrialRunning(now)
		if !eligible || !s.sink.Connected(uid) {
			return
		}
		s.sink.OfferTrial(uid)
		s.log.Info("trial offer sent", slog.String("user_uid", uid))
	}()
}

func (s *Service) publish(routingKey string, event models.UserEvent) {
	if s.ch == nil {
		return
	}
	if err := rabbitmq.PublishMessage(s.ch, s.exchange, routingKey, event); err != nil {
		s.log.Error("failed to publish message", sl.Err(err))
	}
}
