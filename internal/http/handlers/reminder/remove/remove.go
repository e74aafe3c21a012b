// Package remove реализует HTTP-обработчик удаления напоминания.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/services/reminder"
)

// Handler управляет HTTP-запросами на удаление напоминаний.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления напоминания.
type Service interface {
	Remove(ctx context.Context, userUID, reminderUID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить напоминание
// @Tags Reminders
// @Produce json
// @Param uid path string true "Идентификатор напоминания"
// @Success 200 {object} response.Response "Напоминание удалено"
// @Failure 404 {object} response.ErrorResponse "Напоминание не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /reminders/{uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	reminderUID := chi.URLParam(r, "uid")
	err := h.service.Remove(r.Context(), userUID, reminderUID)
	if errors.Is(err, reminder.ErrNotFound) {
		log.Error("reminder not found", slog.String("reminder_uid", reminderUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("reminder not found"))
		return
	}
	if err != nil {
		log.Error("failed to remove reminder", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove reminder"))
		return
	}

	log.Info("reminder removed", slog.String("reminder_uid", reminderUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reminder_uid": reminderUID,
	}))
}
