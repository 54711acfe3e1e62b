package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/routeguard"
)

// reservedPath: endpoints técnicos que no son page loads.
func reservedPath(p string) bool {
	return strings.HasPrefix(p, "/static/") ||
		strings.HasPrefix(p, "/auth/") ||
		p == "/metrics" || p == "/healthz" || p == "/favicon.ico"
}

// WithRouteGuard resuelve (user, recovery, path) y aplica la decisión del
// guard a cada page load: renderizar o redirigir. La lectura de estado de
// recovery está garantizada antes del primer render de cualquier página
// gateada, porque este middleware corre antes de los handlers de página.
func WithRouteGuard(auth authclient.Client, store *recovery.Store) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Gatea todos los page loads, incluido el catch-all de paths
			// desconocidos; endpoints técnicos quedan afuera.
			if r.Method != http.MethodGet || reservedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess := GetSession(ctx)

			var user *authclient.User
			if sess != nil {
				if tok := sess.AccessToken(ctx); tok != "" && !authclient.TokenExpired(tok, time.Now()) {
					s, err := auth.FetchCurrentSession(ctx, tok)
					if err != nil {
						// backend caído: se degrada a "sin sesión", la
						// máquina de recovery nunca falla por esto
						logger.From(ctx).Warn("session fetch failed",
							logger.Err(err))
					} else if s != nil {
						user = s.User
					}
				}
			}

			recoveryActive := store.IsActive(ctx, sess, r.URL, r.URL.Path)

			d := routeguard.Decide(user, recoveryActive, r.URL.Path)
			if !d.Render {
				http.Redirect(w, r, d.RedirectTo, http.StatusFound)
				return
			}

			ctx = WithUser(ctx, user)
			ctx = WithRecoveryActive(ctx, recoveryActive)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
