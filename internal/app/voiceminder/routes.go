// Package voiceminder предоставляет маршруты для основного приложения.
package voiceminder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/voiceminder/voiceminder/internal/config"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/chathistory"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/chatpartners"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/chatreply"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/transactionlist"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/transactionremove"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/transactionreview"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/userlist"
	"github.com/voiceminder/voiceminder/internal/http/handlers/admin/userremove"
	"github.com/voiceminder/voiceminder/internal/http/handlers/auth/login"
	"github.com/voiceminder/voiceminder/internal/http/handlers/auth/register"
	"github.com/voiceminder/voiceminder/internal/http/handlers/chat/history"
	"github.com/voiceminder/voiceminder/internal/http/handlers/chat/send"
	"github.com/voiceminder/voiceminder/internal/http/handlers/health"
	"github.com/voiceminder/voiceminder/internal/http/handlers/payment/checkout"
	"github.com/voiceminder/voiceminder/internal/http/handlers/payment/paymentlist"
	"github.com/voiceminder/voiceminder/internal/http/handlers/profile/ackplanupdate"
	profileread "github.com/voiceminder/voiceminder/internal/http/handlers/profile/read"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/clearhistory"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/create"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/dismiss"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/list"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/remove"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/snooze"
	"github.com/voiceminder/voiceminder/internal/http/handlers/reminder/stats"
	"github.com/voiceminder/voiceminder/internal/http/handlers/trial/claim"
	"github.com/voiceminder/voiceminder/internal/http/handlers/trial/reject"
	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/lib/jwt"
	authservice "github.com/voiceminder/voiceminder/internal/services/auth"
	chatservice "github.com/voiceminder/voiceminder/internal/services/chat"
	paymentservice "github.com/voiceminder/voiceminder/internal/services/payment"
	reminderservice "github.com/voiceminder/voiceminder/internal/services/reminder"
	sessionservice "github.com/voiceminder/voiceminder/internal/services/session"
	"github.com/voiceminder/voiceminder/internal/storage"
	"github.com/voiceminder/voiceminder/internal/ws"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, maker jwt.Maker, hub *ws.Hub,
	authService *authservice.Service, sessionService *sessionservice.Service,
	reminderService *reminderservice.Service, paymentService *paymentservice.Service,
	chatService *chatservice.Service, db *storage.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/profile", profileread.New(logger, sessionService).ServeHTTP)
			r.Post("/profile/plan-update/ack", ackplanupdate.New(logger, sessionService).ServeHTTP)
			r.Post("/trial/claim", claim.New(logger, sessionService).ServeHTTP)
			r.Post("/trial/reject", reject.New(logger, sessionService).ServeHTTP)

			r.Post("/reminders", create.New(logger, reminderService).ServeHTTP)
			r.Get("/reminders", list.New(logger, reminderService).ServeHTTP)
			r.Delete("/reminders/{uid}", remove.New(logger, reminderService).ServeHTTP)
			r.Post("/reminders/{uid}/snooze", snooze.New(logger, reminderService).ServeHTTP)
			r.Post("/reminders/dismiss", dismiss.New(logger, reminderService).ServeHTTP)
			r.Delete("/reminders/history", clearhistory.New(logger, reminderService).ServeHTTP)
			r.Get("/reminders/stats", stats.New(logger, reminderService, sessionService).ServeHTTP)

			r.Post("/payments/checkout", checkout.New(logger, paymentService, sessionService).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, paymentService).ServeHTTP)

			r.Post("/chat", send.New(logger, chatService).ServeHTTP)
			r.Get("/chat", history.New(logger, chatService).ServeHTTP)

			// Websocket-канал доставки звука; предложение пробного периода
			// планируется на время жизни соединения.
			r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
				if uid, ok := req.Context().Value(middlewarectx.UserUID).(string); ok && uid != "" {
					// Контекст запроса гаснет сразу после апгрейда, поэтому
					// таймер предложения живет на фоновом контексте; перед
					// показом проверяется, что подключение еще активно.
					sessionService.ScheduleTrialOffer(context.Background(), uid)
				}
				hub.ServeWS(w, req)
			})
		})

		// Админ-панель: JWT + роль администратора + PIN
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.AdminMiddleware(cfg.AdminPIN, logger))

			r.Get("/admin/transactions", transactionlist.New(logger, paymentService).ServeHTTP)
			r.Patch("/admin/transactions/{uid}", transactionreview.New(logger, paymentService).ServeHTTP)
			r.Delete("/admin/transactions", transactionremove.New(logger, paymentService).ServeHTTP)
			r.Get("/admin/users", userlist.New(logger, db).ServeHTTP)
			r.Delete("/admin/users/{uid}", userremove.New(logger, db).ServeHTTP)
			r.Get("/admin/chats", chatpartners.New(logger, chatService).ServeHTTP)
			r.Get("/admin/chats/{uid}", chathistory.New(logger, chatService).ServeHTTP)
			r.Post("/admin/chats/{uid}", chatreply.New(logger, chatService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
