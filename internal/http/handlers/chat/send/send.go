// Package send реализует HTTP-обработчик отправки сообщения в поддержку.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/services/chat"
)

// Handler управляет HTTP-запросами на отправку сообщений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики чата.
type Service interface {
	Send(ctx context.Context, userID string, dummy models.DummyChatMessage) (*models.ChatMessage, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Написать в поддержку
// @Description Отправляет сообщение администратору. Вложение приходит как base64.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body models.DummyChatMessage true "Сообщение"
// @Success 200 {object} response.Response "Сообщение отправлено"
// @Failure 400 {object} response.ErrorResponse "Пустое сообщение или битое вложение"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyChatMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	m, err := h.service.Send(r.Context(), userUID, req)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		log.Error("empty message")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("message has no text and no attachment"))
		return
	case errors.Is(err, chat.ErrBadAttachment):
		log.Error("invalid attachment")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid attachment"))
		return
	case err != nil:
		log.Error("failed to send message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send message"))
		return
	}

	log.Info("support message sent", slog.String("message_uid", m.UUID))
	render.JSON(w, r, response.StatusOKWithData(m))
}
