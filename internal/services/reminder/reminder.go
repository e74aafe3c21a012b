// Package reminder реализует операции над напоминаниями: создание с проверкой
// дневного лимита тарифа, просмотр, перенос, закрытие и аналитику.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/services/session"
)

// snoozeDelay перенос напоминания при "напомнить позже".
const snoozeDelay = 5 * time.Minute

// statsTTL время жизни закешированной аналитики.
const statsTTL = time.Minute

// Ошибки уровня бизнес-логики, отображаемые пользователю как 4xx.
var (
	ErrDailyLimit = errors.New("daily reminder limit reached")
	ErrBadTime    = errors.New("invalid reminder time")
	ErrNotFound   = errors.New("reminder not found")
)

// Repository описывает необходимые операции хранилища напоминаний.
type Repository interface {
	CreateReminder(ctx context.Context, r models.Reminder) error
	ListReminders(ctx context.Context, userUID string) ([]*models.Reminder, error)
	RemoveReminder(ctx context.Context, uuid, userUID string) (int, error)
	SnoozeReminder(ctx context.Context, uuid, userUID string, newTime time.Time) (int, error)
	RemoveCompleted(ctx context.Context, userUID string) (int, error)
}

// ProfileProvider отдаёт сверенный профиль с возможностями тарифа.
type ProfileProvider interface {
	Profile(ctx context.Context, uid string) (*session.Profile, error)
}

// Stopper останавливает активный цикл воспроизведения пользователя.
type Stopper interface {
	Stop(userUID string)
}

// Cache кеш аналитики с JSON-сериализацией.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику напоминаний.
type Service struct {
	repo     Repository
	profiles ProfileProvider
	playback Stopper
	cache    Cache
	log      *slog.Logger
}

// New создает сервис напоминаний.
func New(repo Repository, profiles ProfileProvider, playback Stopper, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		playback: playback,
		cache:    cache,
		log:      log,
	}
}

// Create создает напоминание. Лимит тарифа проверяется до записи;
// недоступные тарифу поля формы приводятся к значениям по умолчанию.
func (s *Service) Create(ctx context.Context, userUID string, dummy models.DummyReminder) (*models.Reminder, error) {
	const op = "reminder.Create"

	when, err := time.Parse(time.RFC3339, dummy.Time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBadTime)
	}

	profile, err := s.profiles.Profile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !profile.Capabilities.CanCreate(profile.TodayCount) {
		return nil, fmt.Errorf("%s: %w", op, ErrDailyLimit)
	}

	r := models.Reminder{
		UUID:        uuid.NewString(),
		UserUID:     userUID,
		Subject:     dummy.Subject,
		Text:        dummy.Text,
		Time:        when,
		Mood:        models.MoodCalm,
		Speed:       1.0,
		VoiceID:     "",
		RepeatVoice: dummy.RepeatVoice,
	}
	if profile.Capabilities.AdvancedFields {
		if m := models.Mood(dummy.Mood); m.Valid() {
			r.Mood = m
		}
		r.VoiceID = dummy.VoiceID
	}
	if profile.Capabilities.SpeedControl && dummy.Speed != 0 {
		r.Speed = dummy.Speed
	}

	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateStats(userUID)
	return &r, nil
}

// List возвращает все напоминания пользователя.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Reminder, error) {
	const op = "reminder.List"

	result, err := s.repo.ListReminders(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Remove удаляет напоминание пользователя.
func (s *Service) Remove(ctx context.Context, userUID, reminderUID string) error {
	const op = "reminder.Remove"

	rows, err := s.repo.RemoveReminder(ctx, reminderUID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.invalidateStats(userUID)
	return nil
}

// Dismiss закрывает сработавшее напоминание: останавливает воспроизведение.
// Запись уже помечена выполненной в момент срабатывания.
func (s *Service) Dismiss(_ context.Context, userUID string) {
	s.playback.Stop(userUID)
}

// Snooze откладывает сработавшее напоминание на пять минут: останавливает
// воспроизведение и возвращает запись в очередь поллера.
func (s *Service) Snooze(ctx context.Context, userUID, reminderUID string) error {
	const op = "reminder.Snooze"

	s.playback.Stop(userUID)
	rows, err := s.repo.SnoozeReminder(ctx, reminderUID, userUID, time.Now().Add(snoozeDelay))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.invalidateStats(userUID)
	return nil
}

// ClearHistory удаляет все выполненные напоминания пользователя.
func (s *Service) ClearHistory(ctx context.Context, userUID string) (int, error) {
	const op = "reminder.ClearHistory"

	removed, err := s.repo.RemoveCompleted(ctx, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateStats(userUID)
	return removed, nil
}

// Stats считает сводку для вкладки аналитики. Результат кешируется
// на минуту и сбрасывается при любой записи.
func (s *Service) Stats(ctx context.Context, userUID string) (*models.ReminderStats, error) {
	const op = "reminder.Stats"

	key := statsKey(userUID)
	var cached models.ReminderStats
	if found, err := s.cache.Get(key, &cached); err == nil && found {
		return &cached, nil
	}

	reminders, err := s.repo.ListReminders(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := computeStats(reminders, time.Now())
	if err := s.cache.Set(key, stats, statsTTL); err != nil {
		s.log.Error("failed to cache stats", sl.Err(err))
	}
	return stats, nil
}

func computeStats(reminders []*models.Reminder, now time.Time) *models.ReminderStats {
	stats := &models.ReminderStats{
		MoodCounts:  make(map[models.Mood]int),
		VoiceCounts: make(map[string]int),
	}

	var speedSum float64
	weekEnd := now.Add(7 * 24 * time.Hour)
	for _, r := range reminders {
		stats.Total++
		if r.IsCompleted {
			stats.Completed++
		} else {
			stats.Ongoing++
			if r.Time.After(now) && r.Time.Before(weekEnd) {
				stats.ForecastWeek++
			}
		}
		stats.MoodCounts[r.Mood]++
		if r.VoiceID != "" {
			stats.VoiceCounts[r.VoiceID]++
		}
		speedSum += r.Speed
	}

	if stats.Total > 0 {
		stats.CompletionRate = stats.Completed * 100 / stats.Total
		stats.AverageSpeed = speedSum / float64(stats.Total)
	}
	top, topCount := "", 0
	for voice, count := range stats.VoiceCounts {
		if count > topCount || (count == topCount && voice < top) {
			top, topCount = voice, count
		}
	}
	stats.TopVoice = top
	return stats
}

func (s *Service) invalidateStats(userUID string) {
	if err := s.cache.Invalidate(statsKey(userUID)); err != nil {
		s.log.Error("failed to invalidate stats cache", sl.Err(err))
	}
}

func statsKey(userUID string) string {
	return "stats:" + userUID
}
