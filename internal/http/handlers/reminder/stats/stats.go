// Package stats реализует HTTP-обработчик аналитики напоминаний.
//
// Доступ к вкладке аналитики ограничен тарифом: обработчик сверяет
// возможности профиля перед выдачей сводки.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/services/session"
)

// Handler управляет HTTP-запросами на аналитику.
type Handler struct {
	log      *slog.Logger
	service  Service
	profiles ProfileProvider
}

// Service описывает интерфейс бизнес-логики аналитики.
type Service interface {
	Stats(ctx context.Context, userUID string) (*models.ReminderStats, error)
}

// ProfileProvider отдает сверенный профиль с возможностями тарифа.
type ProfileProvider interface {
	Profile(ctx context.Context, uid string) (*session.Profile, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, profiles ProfileProvider) *Handler {
	return &Handler{log: log, service: service, profiles: profiles}
}

// ServeHTTP godoc
// @Summary Аналитика напоминаний
// @Description Возвращает сводку по напоминаниям. Доступно на тарифах с вкладкой аналитики.
// @Tags Reminders
// @Produce json
// @Success 200 {object} response.Response "Сводка аналитики"
// @Failure 403 {object} response.ErrorResponse "Вкладка аналитики недоступна на тарифе"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /reminders/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.stats"
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

	profile, err := h.profiles.Profile(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load profile"))
		return
	}
	if !profile.Capabilities.AnalyticsTab {
		log.Error("analytics tab not available on plan")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("analytics is not available on your plan"))
		return
	}

	stats, err := h.service.Stats(r.Context(), userUID)
	if err != nil {
		log.Error("failed to compute stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not compute stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(stats))
}
