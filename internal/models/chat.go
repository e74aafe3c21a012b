package models

import "time"

// AdminPeerID идентификатор второй стороны любого диалога поддержки.
// Принадлежность сообщения диалогу выводится из пары {sender, receiver},
// в которой ровно одна сторона равна AdminPeerID.
const AdminPeerID = "admin"

// AttachmentType тип единственного вложения сообщения.
type AttachmentType string

// Поддерживаемые типы вложений.
const (
	AttachmentImage AttachmentType = "image"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentText  AttachmentType = "text"
)

// ChatMessage сообщение чата поддержки между пользователем и "admin".
type ChatMessage struct {
	UUID           string
	SenderID       string
	ReceiverID     string
	Text           string
	AttachmentURL  string // Публичная ссылка, пусто если вложения нет
	AttachmentName string
	AttachmentType AttachmentType
	SentAt         time.Time
	Read           bool
}

// DummyChatMessage используется для приёма сообщения из JSON-запроса.
type DummyChatMessage struct {
	Text           string `json:"text"`
	Attachment     string `json:"attachment"` // base64, опционально
	AttachmentName string `json:"attachment_name"`
	AttachmentType string `json:"attachment_type" validate:"omitempty,oneof=image pdf text"`
}
