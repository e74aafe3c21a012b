// Package userlist реализует HTTP-обработчик списка пользователей
// для админ-панели.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/response"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
)

const (
	defaultLimit  = 50
	defaultOffset = 0
)

// Handler управляет HTTP-запросами на список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка пользователей.
type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// userView скрывает хэш пароля из ответа админ-панели.
type userView struct {
	UUID        string      `json:"user_uid"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Plan        models.Plan `json:"plan"`
	PlanExpiry  *time.Time  `json:"plan_expiry,omitempty"`
	IsAdmin     bool        `json:"is_admin"`
	TrialActive bool        `json:"trial_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает пользователей с пагинацией. Только для администратора.
// @Tags Admin
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список пользователей"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = defaultOffset
	}

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{
			UUID:        u.UUID,
			Name:        u.Name,
			Email:       u.Email,
			Plan:        u.Plan,
			PlanExpiry:  u.PlanExpiry,
			IsAdmin:     u.IsAdmin,
			TrialActive: u.TrialActive,
			CreatedAt:   u.CreatedAt,
		})
	}

	render.JSON(w, r, response.StatusOKWithData(views))
}
