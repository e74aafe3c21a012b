// Package ackplanupdate реализует HTTP-обработчик подтверждения показа
// поздравления об одобренном тарифе.
package ackplanupdate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
)

// Handler управляет HTTP-запросами на сброс флага обновления тарифа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	AckPlanUpdate(ctx context.Context, uid string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтвердить показ поздравления
// @Description Сбрасывает одноразовый флаг "тариф только что одобрен".
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response "Флаг сброшен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /profile/plan-update/ack [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.ackplanupdate"
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

	if err := h.service.AckPlanUpdate(r.Context(), userUID); err != nil {
		log.Error("failed to ack plan update", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not ack plan update"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(nil))
}
