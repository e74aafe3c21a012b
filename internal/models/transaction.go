package models

import "time"

// TransactionStatus статус ручной проверки платежа.
type TransactionStatus string

// Статусы платежа. Переход pending -> approved/rejected односторонний.
const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionRejected TransactionStatus = "rejected"
)

// Transaction запись о ручном подтверждении оплаты: пользователь прикладывает
// свободный идентификатор перевода и скриншот, админ одобряет или отклоняет.
// Только одобрение меняет тариф пользователя.
type Transaction struct {
	UUID          string
	UserUID       string
	UserEmail     string
	Plan          Plan
	Amount        int
	TransactionID string // Идентификатор перевода со стороны пользователя, свободный текст
	ScreenshotURL string // Публичная ссылка на загруженный скриншот
	Status        TransactionStatus
	CreatedAt     time.Time
}

// DummyCheckout используется для приёма данных оформления покупки из JSON-запроса.
// Скриншот приходит как base64 и заменяется публичной ссылкой при сохранении.
type DummyCheckout struct {
	Plan          string `json:"plan" validate:"required,oneof=Monthly HalfYearly Yearly Lifetime"`
	Amount        int    `json:"amount" validate:"required,gt=0"`
	TransactionID string `json:"transaction_id" validate:"required"`
	Screenshot    string `json:"screenshot" validate:"required"` // base64
}

// DummyReview используется для приёма решения администратора по платежу.
type DummyReview struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}
