package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/voiceminder/voiceminder/internal/models"
)

const reminderColumns = `uuid, user_uid, subject, text, time, mood, speed,
	voice_id, repeat_voice, is_completed, created_at`

func scanReminder(row interface{ Scan(...any) error }) (*models.Reminder, error) {
	var r models.Reminder
	err := row.Scan(&r.UUID, &r.UserUID, &r.Subject, &r.Text, &r.Time, &r.Mood,
		&r.Speed, &r.VoiceID, &r.RepeatVoice, &r.IsCompleted, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReminder вставляет новое напоминание.
func (s *Storage) CreateReminder(ctx context.Context, r models.Reminder) error {
	const op = "storage.CreateReminder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reminders (uuid, user_uid, subject, text, time, mood, speed,
			      voice_id, repeat_voice, is_completed)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		r.UUID, r.UserUID, r.Subject, r.Text, r.Time, r.Mood, r.Speed,
		r.VoiceID, r.RepeatVoice, r.IsCompleted)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListReminders возвращает все напоминания пользователя.
func (s *Storage) ListReminders(ctx context.Context, userUID string) ([]*models.Reminder, error) {
	const op = "storage.ListReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_uid = $1 ORDER BY time`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindDueReminders возвращает невыполненные напоминания всех пользователей,
// чьё время попало в окно (from, to]. Порядок стабильный: по времени, затем
// по времени создания, чтобы одновременные срабатывали в порядке постановки.
func (s *Storage) FindDueReminders(ctx context.Context, from, to time.Time) ([]*models.Reminder, error) {
	const op = "storage.FindDueReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reminderColumns + ` FROM reminders
			  WHERE is_completed = FALSE AND time > $1 AND time <= $2
			  ORDER BY time, created_at`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountRemindersForDay подсчитывает напоминания пользователя, созданные
// на календарный день [dayStart, dayEnd) по времени срабатывания.
func (s *Storage) CountRemindersForDay(ctx context.Context, userUID string, dayStart, dayEnd time.Time) (int, error) {
	const op = "storage.CountRemindersForDay"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM reminders
			  WHERE user_uid = $1 AND time >= $2 AND time < $3`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID, dayStart, dayEnd).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// MarkCompleted помечает напоминание выполненным.
// Условие is_completed = FALSE гарантирует переход ровно один раз.
func (s *Storage) MarkCompleted(ctx context.Context, uuid string) (int, error) {
	const op = "storage.MarkCompleted"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders SET is_completed = TRUE WHERE uuid = $1 AND is_completed = FALSE`
	result, err := s.DB.ExecContext(ctx, query, uuid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SnoozeReminder переносит напоминание пользователя на новое время
// и возвращает его в состояние невыполненного, ставя обратно в очередь поллера.
func (s *Storage) SnoozeReminder(ctx context.Context, uuid, userUID string, newTime time.Time) (int, error) {
	const op = "storage.SnoozeReminder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders SET time = $1, is_completed = FALSE WHERE uuid = $2 AND user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, newTime, uuid, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveReminder удаляет напоминание пользователя.
func (s *Storage) RemoveReminder(ctx context.Context, uuid, userUID string) (int, error) {
	const op = "storage.RemoveReminder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM reminders WHERE uuid = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, uuid, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCompleted удаляет выполненные напоминания пользователя (очистка истории).
func (s *Storage) RemoveCompleted(ctx context.Context, userUID string) (int, error) {
	const op = "storage.RemoveCompleted"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM reminders WHERE user_uid = $1 AND is_completed = TRUE`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
