// Package checkout реализует HTTP-обработчик оформления покупки тарифа.
//
// Скриншот оплаты приходит как base64, уходит в объектное хранилище,
// платеж записывается со статусом pending до решения администратора.
// В ответе возвращается обещание о сроке активации тарифа.
package checkout

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
	"github.com/voiceminder/voiceminder/internal/services/payment"
)

// Handler управляет HTTP-запросами на оформление покупки.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Reconciler
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики платежей.
type Service interface {
	Checkout(ctx context.Context, user *models.User, dummy models.DummyCheckout) (*payment.Receipt, error)
}

// Reconciler перечитывает пользователя перед оформлением покупки.
type Reconciler interface {
	Reconcile(ctx context.Context, uid string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, sessions Reconciler) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить покупку тарифа
// @Description Принимает идентификатор перевода и скриншот оплаты. Тариф активируется после одобрения администратором.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.DummyCheckout true "Данные покупки"
// @Success 200 {object} response.Response "Платеж принят на проверку"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /payments/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCheckout
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

	user, err := h.sessions.Reconcile(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load user"))
		return
	}

	receipt, err := h.service.Checkout(r.Context(), user, req)
	switch {
	case errors.Is(err, payment.ErrUnknownPlan):
		log.Error("unknown plan", slog.String("plan", req.Plan))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	case errors.Is(err, payment.ErrBadScreenshot):
		log.Error("invalid screenshot")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid screenshot data"))
		return
	case err != nil:
		log.Error("failed to checkout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit payment"))
		return
	}

	log.Info("checkout accepted",
		slog.String("transaction_uid", receipt.Transaction.UUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"transaction_uid": receipt.Transaction.UUID,
		"status":          receipt.Transaction.Status,
		"message":         receipt.Message,
	}))
}
