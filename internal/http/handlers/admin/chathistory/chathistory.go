// Package chathistory реализует HTTP-обработчик чтения диалога поддержки
// администратором. Входящие от пользователя помечаются прочитанными.
package chathistory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
)

// Handler управляет HTTP-запросами на чтение диалогов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики переписки.
type Service interface {
	Conversation(ctx context.Context, userID, readerID string) ([]*models.ChatMessage, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Диалог с пользователем
// @Description Возвращает переписку поддержки с указанным пользователем.
// @Tags Admin
// @Produce json
// @Param uid path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Сообщения диалога"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/chats/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.chathistory"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")
	messages, err := h.service.Conversation(r.Context(), userUID, models.AdminPeerID)
	if err != nil {
		log.Error("failed to load conversation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load conversation"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(messages))
}
