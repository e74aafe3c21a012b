// Package chatpartners реализует HTTP-обработчик списка диалогов поддержки
// для админ-панели.
package chatpartners

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
)

// Handler управляет HTTP-запросами на список диалогов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка диалогов.
type Service interface {
	Partners(ctx context.Context) ([]string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Диалоги поддержки
// @Description Возвращает идентификаторы пользователей, писавших в поддержку.
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response "Список пользователей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/chats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.chatpartners"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	partners, err := h.service.Partners(r.Context())
	if err != nil {
		log.Error("failed to list chat partners", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list chat partners"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(partners))
}
