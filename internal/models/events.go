package models

// UserEvent событие о пользователе, публикуемое в очередь уведомлений.
// Используется для писем об одобрении тарифа и об истечении пробного периода.
type UserEvent struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  Plan   `json:"plan,omitempty"`
}
