// Package read реализует HTTP-обработчик чтения профиля пользователя.
//
// Ответ включает сверенный профиль, возможности текущего тарифа и счётчик
// созданных за день напоминаний: фронтенд строит по ним интерфейс.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/services/session"
)

// Handler управляет HTTP-запросами на чтение профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики профиля.
type Service interface {
	Profile(ctx context.Context, uid string) (*session.Profile, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Возвращает профиль, возможности тарифа и дневной счетчик напоминаний.
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"
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

	profile, err := h.service.Profile(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load profile"))
		return
	}

	u := profile.User
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid":        u.UUID,
		"name":            u.Name,
		"email":           u.Email,
		"plan":            u.Plan,
		"plan_expiry":     u.PlanExpiry,
		"is_admin":        u.IsAdmin,
		"trial_active":    u.TrialActive,
		"trial_ends_at":   u.TrialEndsAt,
		"trial_eligible":  u.IsTrialEligible,
		"capabilities":    profile.Capabilities,
		"today_count":     profile.TodayCount,
		"has_plan_update": profile.HasPlanUpdate,
	}))
}
