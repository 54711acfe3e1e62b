package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/routeguard"
)

// WithEarlyIntercept corre el interceptor de recovery ANTES de que el
// router vea el request. Es el único ordenamiento duro del sistema: si
// corriera después, los tokens del link ya habrían sido consumidos o
// limpiados y un link de recovery se clasificaría como sign-in normal.
// Solo aplica a page loads (GET de páginas navegables).
func WithEarlyIntercept(ic *recovery.Interceptor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && routeguard.IsPage(r.URL.Path) {
				sess := GetSession(r.Context())
				if sess != nil && ic.Intercept(w, r, sess) {
					// redirect emitido: el request muere acá y el
					// navegador recarga en el path correcto
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
