package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/session"
)

// WithSessionCookie garantiza una sesión de navegación por request (cookie
// + ID), la inyecta en el contexto, y etiqueta el contexto para que las
// llamadas al backend publiquen eventos hacia la sesión correcta.
func WithSessionCookie(mgr *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := mgr.Ensure(w, r)

			ctx := WithSession(r.Context(), sess)
			ctx = authclient.WithSessionID(ctx, sess.ID)
			ctx = authclient.WithRequestURL(ctx, r.URL.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
