// Package models содержит доменные структуры приложения,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Plan тарифный план пользователя.
type Plan string

// Поддерживаемые тарифные планы.
const (
	PlanFree       Plan = "Free"
	PlanMonthly    Plan = "Monthly"
	PlanHalfYearly Plan = "HalfYearly"
	PlanYearly     Plan = "Yearly"
	PlanLifetime   Plan = "Lifetime"
)

// Valid сообщает, является ли значение известным тарифом.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanMonthly, PlanHalfYearly, PlanYearly, PlanLifetime:
		return true
	}
	return false
}

// Duration возвращает срок действия оплаченного тарифа.
// Lifetime условно ограничен ста годами.
func (p Plan) Duration() time.Duration {
	const day = 24 * time.Hour
	switch p {
	case PlanMonthly:
		return 30 * day
	case PlanHalfYearly:
		return 180 * day
	case PlanYearly:
		return 365 * day
	case PlanLifetime:
		return 100 * 365 * day
	}
	return 0
}

// User представляет зарегистрированного пользователя системы.
//
// Инвариант: пробный период, однажды активированный или отклонённый,
// навсегда сбрасывает IsTrialEligible.
type User struct {
	UUID            string     // Уникальный идентификатор пользователя
	Name            string     // Отображаемое имя
	Email           string     // Электронная почта (уникальная)
	PasswordHash    string     // Хэш пароля пользователя
	Plan            Plan       // Текущий тариф
	PlanExpiry      *time.Time // Дата истечения оплаченного тарифа
	IsAdmin         bool       // Признак администратора
	IsTrialEligible bool       // Пользователь ещё не использовал пробный период
	TrialActive     bool       // Пробный период идёт прямо сейчас
	TrialEndsAt     *time.Time // Момент окончания пробного периода
	HasPlanUpdate   bool       // Одноразовый флаг "тариф только что одобрен"
	CreatedAt       time.Time
}

// TrialRunning сообщает, действует ли пробный период в момент now.
func (u *User) TrialRunning(now time.Time) bool {
	return u.TrialActive && u.TrialEndsAt != nil && now.Before(*u.TrialEndsAt)
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
