// Package router arma el árbol de rutas y el orden de middlewares.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/lumify/internal/authclient"
	httpx "github.com/dropDatabas3/lumify/internal/http"
	"github.com/dropDatabas3/lumify/internal/http/handlers"
	"github.com/dropDatabas3/lumify/internal/http/middlewares"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/session"
	"github.com/dropDatabas3/lumify/web"
)

// Deps son las dependencias ya construidas del árbol de rutas.
type Deps struct {
	Sessions    *session.Manager
	Auth        authclient.Client
	Interceptor *recovery.Interceptor
	Recovery    *recovery.Store

	Pages *handlers.PagesHandler
	Forms *handlers.AuthHandler
	Reset *handlers.ResetHandler
}

// New construye el handler raíz. Orden de middlewares (de afuera hacia
// adentro): request-id → logging → recover → session → EARLY INTERCEPT →
// route guard → router. El interceptor va antes que cualquier handler de
// página: es la única garantía de orden dura del sistema.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Health + métricas, fuera del pipeline de páginas
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", httpx.RegisterMetrics(prometheus.DefaultRegisterer))

	// Assets estáticos
	staticFS, _ := fs.Sub(web.Static, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Páginas y formularios
	d.Pages.Register(r)
	d.Forms.Register(r)
	d.Reset.Register(r)

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithRecover(),
		middlewares.WithSessionCookie(d.Sessions),
		middlewares.WithEarlyIntercept(d.Interceptor),
		middlewares.WithRouteGuard(d.Auth, d.Recovery),
	)
}
