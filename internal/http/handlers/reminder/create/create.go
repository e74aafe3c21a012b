// Package create реализует HTTP-обработчик создания напоминания.
//
// Handler принимает JSON-запрос с данными напоминания, валидирует их,
// извлекает идентификатор пользователя из контекста и передает создание
// бизнес-логике. Превышение дневного лимита тарифа возвращается как 403.
package create

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
	"github.com/voiceminder/voiceminder/internal/services/reminder"
)

// Handler управляет HTTP-запросами на создание напоминаний.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания напоминания.
type Service interface {
	Create(ctx context.Context, userUID string, dummy models.DummyReminder) (*models.Reminder, error)
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
// @Summary Создать напоминание
// @Description Создает голосовое напоминание. Дневной лимит зависит от тарифа.
// @Tags Reminders
// @Accept json
// @Produce json
// @Param request body models.DummyReminder true "Данные напоминания"
// @Success 200 {object} response.Response "Напоминание создано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или время"
// @Failure 403 {object} response.ErrorResponse "Дневной лимит исчерпан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /reminders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyReminder
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

	created, err := h.service.Create(r.Context(), userUID, req)
	switch {
	case errors.Is(err, reminder.ErrDailyLimit):
		log.Error("daily limit reached")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("daily reminder limit reached"))
		return
	case errors.Is(err, reminder.ErrBadTime):
		log.Error("invalid reminder time")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid reminder time"))
		return
	case err != nil:
		log.Error("failed to create reminder", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create reminder"))
		return
	}

	log.Info("reminder created", slog.String("reminder_uid", created.UUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reminder_uid": created.UUID,
	}))
}
