package chat

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voiceminder/voiceminder/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) CreateMessage(ctx context.Context, msg models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *RepositoryMock) ListConversation(ctx context.Context, userID string) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).([]*models.ChatMessage)
	return result, args.Error(1)
}

func (m *RepositoryMock) ListChatPartners(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]string)
	return result, args.Error(1)
}

func (m *RepositoryMock) MarkConversationRead(ctx context.Context, userID, peerID string) (int, error) {
	args := m.Called(ctx, userID, peerID)
	return args.Int(0), args.Error(1)
}

type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSend_TextOnly(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.ChatMessage) bool {
		return m.SenderID == "uid-1" && m.ReceiverID == models.AdminPeerID && m.Text == "help me"
	})).Return(nil)

	svc := New(repo, new(UploaderMock), newNoopLogger())

	msg, err := svc.Send(context.Background(), "uid-1", models.DummyChatMessage{Text: "help me"})
	require.NoError(t, err)
	assert.Empty(t, msg.AttachmentURL)
	repo.AssertExpectations(t)
}

func TestSend_WithAttachment(t *testing.T) {
	repo := new(RepositoryMock)
	uploader := new(UploaderMock)

	data := []byte("%PDF-1.4")
	uploader.On("Upload", mock.Anything, mock.Anything, data, "application/pdf").
		Return("https://cdn.example.com/attachments/uid-1/msg.pdf", nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.ChatMessage) bool {
		return m.AttachmentURL != "" && m.AttachmentType == models.AttachmentPDF
	})).Return(nil)

	svc := New(repo, uploader, newNoopLogger())

	msg, err := svc.Send(context.Background(), "uid-1", models.DummyChatMessage{
		Attachment:     base64.StdEncoding.EncodeToString(data),
		AttachmentName: "receipt.pdf",
		AttachmentType: "pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "receipt.pdf", msg.AttachmentName)
	uploader.AssertExpectations(t)
}

func TestSend_Empty(t *testing.T) {
	svc := New(new(RepositoryMock), new(UploaderMock), newNoopLogger())

	_, err := svc.Send(context.Background(), "uid-1", models.DummyChatMessage{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSend_BadAttachment(t *testing.T) {
	svc := New(new(RepositoryMock), new(UploaderMock), newNoopLogger())

	_, err := svc.Send(context.Background(), "uid-1", models.DummyChatMessage{
		Attachment:     "%%%not-base64%%%",
		AttachmentType: "image",
	})
	assert.ErrorIs(t, err, ErrBadAttachment)
}

func TestReply_SenderIsAdmin(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.ChatMessage) bool {
		return m.SenderID == models.AdminPeerID && m.ReceiverID == "uid-1"
	})).Return(nil)

	svc := New(repo, new(UploaderMock), newNoopLogger())

	_, err := svc.Reply(context.Background(), "uid-1", models.DummyChatMessage{Text: "on it"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestConversation_UserMarksAdminMessagesRead(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("ListConversation", mock.Anything, "uid-1").Return([]*models.ChatMessage{{Text: "hi"}}, nil)
	repo.On("MarkConversationRead", mock.Anything, "uid-1", models.AdminPeerID).Return(1, nil)

	svc := New(repo, new(UploaderMock), newNoopLogger())

	messages, err := svc.Conversation(context.Background(), "uid-1", "uid-1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
	repo.AssertExpectations(t)
}

func TestConversation_AdminMarksUserMessagesRead(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("ListConversation", mock.Anything, "uid-1").Return(nil, nil)
	repo.On("MarkConversationRead", mock.Anything, models.AdminPeerID, "uid-1").Return(2, nil)

	svc := New(repo, new(UploaderMock), newNoopLogger())

	_, err := svc.Conversation(context.Background(), "uid-1", models.AdminPeerID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPartners(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("ListChatPartners", mock.Anything).Return([]string{"uid-1", "uid-2"}, nil)

	svc := New(repo, new(UploaderMock), newNoopLogger())

	partners, err := svc.Partners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-1", "uid-2"}, partners)
}
