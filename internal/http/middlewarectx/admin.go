package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/voiceminder/voiceminder/internal/http/response"
)

// AdminMiddleware пропускает дальше только пользователей с ролью admin,
// подтвердивших доступ PIN-кодом в заголовке X-Admin-Pin.
func AdminMiddleware(adminPIN string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role != "admin" {
				log.Error("admin access denied: wrong role")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}

			if r.Header.Get("X-Admin-Pin") != adminPIN {
				log.Error("admin access denied: wrong pin")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("invalid admin pin"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
