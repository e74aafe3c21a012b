// Package transactionremove реализует HTTP-обработчик массового удаления
// платежей из админ-панели.
package transactionremove

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
)

// Handler управляет HTTP-запросами на удаление платежей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики удаления платежей.
type Service interface {
	Remove(ctx context.Context, uuids []string) (int, error)
}

// Request тело запроса массового удаления.
type Request struct {
	UUIDs []string `json:"uuids" validate:"required,min=1"`
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
// @Summary Удалить платежи
// @Description Массово удаляет записи о платежах. Только для администратора.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body Request true "Идентификаторы платежей"
// @Success 200 {object} response.Response "Платежи удалены"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/transactions [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.transactionremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	removed, err := h.service.Remove(r.Context(), req.UUIDs)
	if err != nil {
		log.Error("failed to remove transactions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove transactions"))
		return
	}

	log.Info("transactions removed", slog.Int("removed", removed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"removed": removed,
	}))
}
