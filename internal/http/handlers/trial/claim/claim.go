// Package claim реализует HTTP-обработчик активации пробного периода.
package claim

import (
	"context"
	"errors"
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

// Handler управляет HTTP-запросами на активацию пробного периода.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики пробного периода.
type Service interface {
	ClaimTrial(ctx context.Context, uid string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активировать пробный период
// @Description Включает часовой пробный период. Право одноразовое.
// @Tags Trial
// @Produce json
// @Success 200 {object} response.Response "Пробный период активирован"
// @Failure 409 {object} response.ErrorResponse "Пробный период недоступен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /trial/claim [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.claim"
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

	u, err := h.service.ClaimTrial(r.Context(), userUID)
	if errors.Is(err, session.ErrTrialUnavailable) {
		log.Error("trial unavailable")
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("trial is not available"))
		return
	}
	if err != nil {
		log.Error("failed to claim trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not claim trial"))
		return
	}

	log.Info("trial claimed", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"trial_active":  u.TrialActive,
		"trial_ends_at": u.TrialEndsAt,
	}))
}
