package models

import "time"

// Mood настроение озвучки напоминания.
type Mood string

// Поддерживаемые настроения.
const (
	MoodCalm     Mood = "calm"
	MoodUrgent   Mood = "urgent"
	MoodCheerful Mood = "cheerful"
)

// Valid сообщает, является ли значение известным настроением.
func (m Mood) Valid() bool {
	switch m {
	case MoodCalm, MoodUrgent, MoodCheerful:
		return true
	}
	return false
}

// Reminder голосовое напоминание пользователя.
//
// Инвариант: IsCompleted переходит из false в true ровно один раз за окно
// срабатывания — либо поллером, либо удалением. Snooze переводит время
// вперёд и возвращает IsCompleted в false, ставя запись обратно в очередь.
type Reminder struct {
	UUID        string    // Уникальный идентификатор напоминания
	UserUID     string    // Владелец
	Subject     string    // Короткий заголовок
	Text        string    // Текст, который будет озвучен
	Time        time.Time // Момент срабатывания
	Mood        Mood      // Настроение озвучки
	Speed       float64   // Скорость воспроизведения, 0.5–2.0
	VoiceID     string    // Выбранный голос (маркетинговое имя)
	RepeatVoice bool      // Зацикливать озвучку до закрытия
	IsCompleted bool
	CreatedAt   time.Time
}

// DummyReminder используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Reminder. Дата приходит строкой,
// чтобы её можно было валидировать и парсить вручную.
type DummyReminder struct {
	Subject     string  `json:"subject" validate:"required"`
	Text        string  `json:"text"`
	Time        string  `json:"time" validate:"required"` // RFC3339
	Mood        string  `json:"mood" validate:"omitempty,oneof=calm urgent cheerful"`
	Speed       float64 `json:"speed" validate:"omitempty,gte=0.5,lte=2"`
	VoiceID     string  `json:"voice_id"`
	RepeatVoice bool    `json:"repeat_voice"`
}

// ReminderStats сводка для вкладки аналитики.
type ReminderStats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Ongoing        int            `json:"ongoing"`
	CompletionRate int            `json:"completion_rate"`
	MoodCounts     map[Mood]int   `json:"mood_counts"`
	VoiceCounts    map[string]int `json:"voice_counts"`
	TopVoice       string         `json:"top_voice"`
	AverageSpeed   float64        `json:"average_speed"`
	ForecastWeek   int            `json:"forecast_week"` // невыполненные в ближайшие 7 дней
}
