package recovery

import (
	"net/http"
	"net/url"
	"time"

	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/internal/session"
)

// otpExpiredCode es el error_code con el que el backend reporta un link
// de recovery vencido.
const otpExpiredCode = "otp_expired"

// Interceptor corre una vez por page load, antes de cualquier handler de
// página. Detecta señales de recovery o de error en la URL, las persiste,
// y repara el caso en que el backend entrega el code de recovery en el
// path equivocado redirigiendo al path correcto.
type Interceptor struct {
	RootPath  string // path raíz de la app ("/")
	ResetPath string // path del formulario de reset ("/reset-password")

	Clock func() time.Time // inyectable para tests; default time.Now

	// OnRepairRedirect / OnDetect son hooks de métricas, opcionales.
	OnRepairRedirect func()
	OnDetect         func(source string)
}

func (i *Interceptor) now() time.Time {
	if i.Clock != nil {
		return i.Clock()
	}
	return time.Now()
}

// Intercept aplica el algoritmo de detección temprana sobre el request.
// Retorna true si emitió un redirect y el request NO debe continuar hacia
// el router; el navegador va a recargar en el path correcto y este mismo
// algoritmo corre de nuevo ahí.
func (i *Interceptor) Intercept(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	ctx := r.Context()
	hash, query := ParseURL(r.URL)
	path := r.URL.Path
	m := merged(hash, query)

	// 1. Errores en la URL primero: se persisten y NO se detecta recovery.
	if m.Error != "" {
		saveAuthError(ctx, sess, AuthError{
			Error:            m.Error,
			ErrorCode:        m.ErrorCode,
			ErrorDescription: m.ErrorDescription,
		})
		if m.ErrorCode == otpExpiredCode && path == i.ResetPath {
			sess.Set(ctx, KeyExpiredMarker, "true")
		}
		logger.From(ctx).Warn("auth error in url",
			logger.String("error", m.Error),
			logger.String("error_code", m.ErrorCode))
		return false
	}

	// 2. Authorization code en la raíz: el backend mandó el link de
	// recovery al path equivocado. Marcamos recovery ANTES de redirigir y
	// cortamos acá; la recarga re-ejecuta la detección en el path correcto.
	// NOTA: esto asume que TODO code en la raíz es recovery; un link OAuth
	// legítimo que aterrice acá caería en el mismo tratamiento.
	if m.Code != "" && path == i.RootPath {
		markActive(ctx, sess, i.now(), m.Code, r.URL.String())
		if i.OnRepairRedirect != nil {
			i.OnRepairRedirect()
		}
		logger.From(ctx).Info("recovery code on root, repairing redirect",
			logger.Component("recovery"))

		target := i.ResetPath + "?code=" + url.QueryEscape(m.Code)
		http.Redirect(w, r, target, http.StatusFound)
		return true
	}

	// 3. Evidencia de recovery: token explícito, o aterrizamos en el path
	// de reset con un code o la marca literal type=recovery.
	if hasRecoveryToken(hash, query) ||
		(path == i.ResetPath && (m.Code != "" || mentionsRecovery(hash, query))) {
		markActive(ctx, sess, i.now(), m.Code, r.URL.String())
		if i.OnDetect != nil {
			src := string(SourceURLQuery)
			if hash.AccessToken != "" || hash.Type == "recovery" {
				src = string(SourceURLHash)
			}
			i.OnDetect(src)
		}
		logger.From(ctx).Info("recovery detected early",
			logger.Component("recovery"),
			logger.Bool("has_code", m.Code != ""))
	}

	// 4. Sin señales: el registro persistido queda intacto.
	return false
}
