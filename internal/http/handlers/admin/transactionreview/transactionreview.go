// Package transactionreview реализует HTTP-обработчик решения администратора
// по платежу. Переход статуса односторонний: рассмотренный платеж
// пересмотреть нельзя.
package transactionreview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/services/payment"
	"github.com/voiceminder/voiceminder/internal/storage"
)

// Handler управляет HTTP-запросами на проверку платежей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики проверки платежа.
type Service interface {
	Review(ctx context.Context, txUID string, status models.TransactionStatus) (*models.Transaction, error)
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
// @Summary Решение по платежу
// @Description Одобряет или отклоняет платеж. Одобрение активирует тариф пользователю.
// @Tags Admin
// @Accept json
// @Produce json
// @Param uid path string true "Идентификатор платежа"
// @Param request body models.DummyReview true "Решение"
// @Success 200 {object} response.Response "Решение применено"
// @Failure 404 {object} response.ErrorResponse "Платеж не найден"
// @Failure 409 {object} response.ErrorResponse "Платеж уже рассмотрен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/transactions/{uid} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.transactionreview"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyReview
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

	txUID := chi.URLParam(r, "uid")
	t, err := h.service.Review(r.Context(), txUID, models.TransactionStatus(req.Status))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Error("transaction not found", slog.String("transaction_uid", txUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("transaction not found"))
		return
	case errors.Is(err, payment.ErrAlreadyReviewed):
		log.Error("transaction already reviewed", slog.String("transaction_uid", txUID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("transaction already reviewed"))
		return
	case err != nil:
		log.Error("failed to review transaction", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not review transaction"))
		return
	}

	log.Info("transaction reviewed",
		slog.String("transaction_uid", txUID),
		slog.String("status", string(t.Status)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"transaction_uid": t.UUID,
		"status":          t.Status,
	}))
}
