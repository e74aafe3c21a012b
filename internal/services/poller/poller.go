// Package poller опрашивает хранилище раз в секунду в поисках напоминаний,
// чье время пришло. Окно срабатывания — пять минут: напоминание, чье время
// прошло раньше, считается пропущенным навсегда.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
)

// tick период опроса хранилища.
const tick = time.Second

// dueWindow допустимое опоздание срабатывания.
const dueWindow = 5 * time.Minute

// Repository описывает необходимые операции хранилища напоминаний.
type Repository interface {
	FindDueReminders(ctx context.Context, from, to time.Time) ([]*models.Reminder, error)
	MarkCompleted(ctx context.Context, uuid string) (int, error)
}

// UserProvider отдает сверенный профиль владельца напоминания.
type UserProvider interface {
	Reconcile(ctx context.Context, uid string) (*models.User, error)
}

// Enqueuer принимает сработавшее напоминание в очередь воспроизведения.
type Enqueuer interface {
	Enqueue(user *models.User, rem *models.Reminder)
}

// Service поллер времени срабатывания.
type Service struct {
	repo     Repository
	users    UserProvider
	playback Enqueuer
	log      *slog.Logger
}

// New создает поллер.
func New(repo Repository, users UserProvider, playback Enqueuer, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		playback: playback,
		log:      log,
	}
}

// Run крутит опрос до отмены контекста.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("starting reminder poller")

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder poller stopped")
			return
		case <-ticker.C:
			s.runTick(ctx, time.Now())
		}
	}
}

// runTick обрабатывает один тик. Ошибка выборки трактуется как
// "срабатываний нет": следующий тик попробует снова, без бэкоффа.
func (s *Service) runTick(ctx context.Context, now time.Time) {
	due, err := s.repo.FindDueReminders(ctx, now.Add(-dueWindow), now)
	if err != nil {
		s.log.Error("failed to find due reminders", sl.Err(err))
		return
	}

	for _, rem := range due {
		// переход в FIRING происходит не более одного раза: запись
		// помечается выполненной до передачи на воспроизведение
		rows, err := s.repo.MarkCompleted(ctx, rem.UUID)
		if err != nil {
			s.log.Error("failed to mark reminder completed", sl.Err(err))
			continue
		}
		if rows == 0 {
			continue
		}

		user, err := s.users.Reconcile(ctx, rem.UserUID)
		if err != nil {
			s.log.Error("failed to load reminder owner", sl.Err(err))
			continue
		}

		s.playback.Enqueue(user, rem)
		s.log.Info("reminder fired",
			slog.String("reminder_uid", rem.UUID),
			slog.String("user_uid", rem.UserUID))
	}
}
