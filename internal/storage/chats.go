package storage

import (
	"context"
	"fmt"

	"github.com/voiceminder/voiceminder/internal/models"
)

const chatColumns = `uuid, sender_id, receiver_id, text, attachment_url,
	attachment_name, attachment_type, sent_at, read`

func scanChatMessage(row interface{ Scan(...any) error }) (*models.ChatMessage, error) {
	var m models.ChatMessage
	err := row.Scan(&m.UUID, &m.SenderID, &m.ReceiverID, &m.Text, &m.AttachmentURL,
		&m.AttachmentName, &m.AttachmentType, &m.SentAt, &m.Read)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMessage вставляет сообщение чата поддержки.
func (s *Storage) CreateMessage(ctx context.Context, m models.ChatMessage) error {
	const op = "storage.CreateMessage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO chats (uuid, sender_id, receiver_id, text, attachment_url,
			      attachment_name, attachment_type, read)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		m.UUID, m.SenderID, m.ReceiverID, m.Text, m.AttachmentURL,
		m.AttachmentName, m.AttachmentType, m.Read)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListConversation возвращает переписку пользователя с "admin" в хронологии.
// Принадлежность диалогу выводится из пары {sender, receiver}, не хранится.
func (s *Storage) ListConversation(ctx context.Context, userID string) ([]*models.ChatMessage, error) {
	const op = "storage.ListConversation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chatColumns + ` FROM chats
			  WHERE (sender_id = $1 AND receiver_id = $2)
			     OR (sender_id = $2 AND receiver_id = $1)
			  ORDER BY sent_at`
	rows, err := s.DB.QueryContext(ctx, query, userID, models.AdminPeerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.ChatMessage
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListChatPartners возвращает идентификаторы всех пользователей,
// у которых есть переписка с "admin".
func (s *Storage) ListChatPartners(ctx context.Context) ([]string, error) {
	const op = "storage.ListChatPartners"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END
			  FROM chats`
	rows, err := s.DB.QueryContext(ctx, query, models.AdminPeerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkConversationRead помечает прочитанными входящие сообщения пользователя от peer.
func (s *Storage) MarkConversationRead(ctx context.Context, userID, peerID string) (int, error) {
	const op = "storage.MarkConversationRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE chats SET read = TRUE
			  WHERE sender_id = $1 AND receiver_id = $2 AND read = FALSE`
	result, err := s.DB.ExecContext(ctx, query, peerID, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
