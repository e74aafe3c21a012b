// Package chat реализует чат поддержки: пользователь переписывается
// с "admin", администратор отвечает от имени "admin". Вложения уходят
// в объектное хранилище, в сообщении остается публичная ссылка.
package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voiceminder/voiceminder/internal/models"
)

// Ошибки уровня бизнес-логики.
var (
	ErrEmptyMessage  = errors.New("message has no text and no attachment")
	ErrBadAttachment = errors.New("invalid attachment data")
)

// contentTypes mime-типы вложений по их типу в сообщении.
var contentTypes = map[models.AttachmentType]string{
	models.AttachmentImage: "image/png",
	models.AttachmentPDF:   "application/pdf",
	models.AttachmentText:  "text/plain",
}

// Repository описывает необходимые операции хранилища сообщений.
type Repository interface {
	CreateMessage(ctx context.Context, m models.ChatMessage) error
	ListConversation(ctx context.Context, userID string) ([]*models.ChatMessage, error)
	ListChatPartners(ctx context.Context) ([]string, error)
	MarkConversationRead(ctx context.Context, userID, peerID string) (int, error)
}

// Uploader загружает вложения и возвращает публичную ссылку.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service реализует бизнес-логику чата поддержки.
type Service struct {
	repo     Repository
	uploader Uploader
	log      *slog.Logger
}

// New создает сервис чата.
func New(repo Repository, uploader Uploader, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		uploader: uploader,
		log:      log,
	}
}

// Send отправляет сообщение пользователя в поддержку.
func (s *Service) Send(ctx context.Context, userID string, dummy models.DummyChatMessage) (*models.ChatMessage, error) {
	return s.send(ctx, userID, models.AdminPeerID, dummy)
}

// Reply отправляет ответ администратора пользователю от имени "admin".
func (s *Service) Reply(ctx context.Context, userID string, dummy models.DummyChatMessage) (*models.ChatMessage, error) {
	return s.send(ctx, models.AdminPeerID, userID, dummy)
}

func (s *Service) send(ctx context.Context, senderID, receiverID string, dummy models.DummyChatMessage) (*models.ChatMessage, error) {
	const op = "chat.Send"

	if dummy.Text == "" && dummy.Attachment == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyMessage)
	}

	m := models.ChatMessage{
		UUID:       uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       dummy.Text,
	}

	if dummy.Attachment != "" {
		data, err := base64.StdEncoding.DecodeString(dummy.Attachment)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrBadAttachment)
		}
		attachType := models.AttachmentType(dummy.AttachmentType)
		contentType, ok := contentTypes[attachType]
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, ErrBadAttachment)
		}

		key := fmt.Sprintf("attachments/%s/%s", senderID, m.UUID)
		url, err := s.uploader.Upload(ctx, key, data, contentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.AttachmentURL = url
		m.AttachmentName = dummy.AttachmentName
		m.AttachmentType = attachType
	}

	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("chat message sent",
		slog.String("sender_id", senderID),
		slog.String("receiver_id", receiverID))
	return &m, nil
}

// Conversation возвращает переписку пользователя с поддержкой и помечает
// входящие сообщения прочитанными.
func (s *Service) Conversation(ctx context.Context, userID, readerID string) ([]*models.ChatMessage, error) {
	const op = "chat.Conversation"

	messages, err := s.repo.ListConversation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	peerID := models.AdminPeerID
	if readerID == models.AdminPeerID {
		peerID = userID
	}
	if _, err := s.repo.MarkConversationRead(ctx, readerID, peerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return messages, nil
}

// Partners возвращает идентификаторы пользователей, писавших в поддержку.
func (s *Service) Partners(ctx context.Context) ([]string, error) {
	const op = "chat.Partners"

	partners, err := s.repo.ListChatPartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return partners, nil
}
