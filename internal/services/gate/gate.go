// Package gate вычисляет набор возможностей пользователя по его тарифу.
// Вычисление — чистая функция без обращений к хранилищу: вызывающая сторона
// передает свежесверенный профиль и количество напоминаний за сегодня.
package gate

import "github.com/voiceminder/voiceminder/internal/models"

// unlimited фактический "безлимит" для владельца, триала и Lifetime.
const unlimited = 9999

// дневные лимиты напоминаний по тарифам
const (
	limitFree       = 3
	limitMonthly    = 5
	limitHalfYearly = 20
	limitYearly     = 35
	limitTrial      = 10
)

// Capabilities набор возможностей, доступных пользователю прямо сейчас.
type Capabilities struct {
	DailyLimit     int  `json:"daily_limit"`
	AdvancedFields bool `json:"advanced_fields"`
	SpeedControl   bool `json:"speed_control"`
	DataTab        bool `json:"data_tab"`
	AnalyticsTab   bool `json:"analytics_tab"`
}

// CanCreate сообщает, разрешено ли создание еще одного напоминания сегодня.
func (c Capabilities) CanCreate(todayCount int) bool {
	return todayCount < c.DailyLimit
}

// Evaluate возвращает возможности пользователя. Владелец и активный триал
// обходят тарифные ограничения. Monthly блокирует расширенные поля формы,
// когда дневной лимит исчерпан.
func Evaluate(plan models.Plan, trialActive, isOwner bool, todayCount int) Capabilities {
	if isOwner {
		return Capabilities{
			DailyLimit:     unlimited,
			AdvancedFields: true,
			SpeedControl:   true,
			DataTab:        true,
			AnalyticsTab:   true,
		}
	}
	if trialActive {
		return Capabilities{
			DailyLimit:     limitTrial,
			AdvancedFields: true,
			SpeedControl:   true,
			DataTab:        true,
			AnalyticsTab:   true,
		}
	}

	switch plan {
	case models.PlanMonthly:
		return Capabilities{
			DailyLimit:     limitMonthly,
			AdvancedFields: todayCount < limitMonthly,
		}
	case models.PlanHalfYearly:
		return Capabilities{
			DailyLimit:     limitHalfYearly,
			AdvancedFields: true,
			DataTab:        true,
		}
	case models.PlanYearly:
		return Capabilities{
			DailyLimit:     limitYearly,
			AdvancedFields: true,
			SpeedControl:   true,
			DataTab:        true,
			AnalyticsTab:   true,
		}
	case models.PlanLifetime:
		return Capabilities{
			DailyLimit:     unlimited,
			AdvancedFields: true,
			SpeedControl:   true,
			DataTab:        true,
			AnalyticsTab:   true,
		}
	default:
		return Capabilities{DailyLimit: limitFree}
	}
}
