package recovery

import (
	"context"
	"net/url"
	"time"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/internal/session"
)

// Store es el dueño único del estado de recovery de cada sesión de
// navegación. Todos los escritores pasan por Activate/Clear; el resto de la
// app solo lee via IsActive. Las activaciones son monótonas: nada pone
// active=false salvo Clear.
type Store struct {
	ResetPath string

	// Window: tras un reload, una activación persistida dentro de esta
	// ventana sigue valiendo en el path de reset aunque la URL ya esté
	// limpia. Generosa a propósito: el ciclo de refresh del backend puede
	// meter una navegación completa en el medio.
	Window time.Duration

	Clock func() time.Time

	// OnActivate es hook de métricas, opcional.
	OnActivate func(source string)
}

func (st *Store) now() time.Time {
	if st.Clock != nil {
		return st.Clock()
	}
	return time.Now()
}

func (st *Store) window() time.Duration {
	if st.Window > 0 {
		return st.Window
	}
	return 60 * time.Second
}

// IsActive reconcilia el estado para el page load actual: flag persistido,
// señales frescas en la URL, y la regla de ventana de tiempo en el path de
// reset. Nunca falla: ausencia de evidencia es "no recovery".
func (st *Store) IsActive(ctx context.Context, sess *session.Session, u *url.URL, path string) bool {
	rec := LoadRecord(ctx, sess)
	if rec.Active {
		return true
	}

	hash, query := ParseURL(u)
	if hasRecoveryToken(hash, query) {
		src := SourceURLQuery
		if hash.AccessToken != "" {
			src = SourceURLHash
		}
		st.Activate(ctx, sess, src)
		return true
	}

	// Regla de ventana: activación reciente + path de reset.
	if !rec.ActivatedAt.IsZero() && path == st.ResetPath &&
		st.now().Sub(rec.ActivatedAt) < st.window() {
		return true
	}
	return false
}

// Activate marca recovery activo con timestamp. Idempotente y monótono.
func (st *Store) Activate(ctx context.Context, sess *session.Session, src Source) {
	markActive(ctx, sess, st.now(), "", "")
	if st.OnActivate != nil {
		st.OnActivate(string(src))
	}
	logger.From(ctx).Info("recovery activated",
		logger.Component("recovery"), logger.Source(string(src)))
}

// Clear resetea el estado y borra el registro persistido. Idempotente;
// se llama solo tras un update de password exitoso (o un clear explícito).
func (st *Store) Clear(ctx context.Context, sess *session.Session) {
	clearRecord(ctx, sess)
	logger.From(ctx).Info("recovery cleared", logger.Component("recovery"))
}

// ApplyAuthEvent aplica un evento del stream de auth del backend.
// currentURL es la URL del request que originó la llamada al backend
// (puede ser nil para eventos tardíos; las transiciones son idempotentes).
func (st *Store) ApplyAuthEvent(ctx context.Context, sess *session.Session, kind authclient.EventKind, currentURL *url.URL) {
	switch kind {
	case authclient.EventPasswordRecovery:
		st.Activate(ctx, sess, SourceAuthEvent)

	case authclient.EventSignedIn:
		rec := LoadRecord(ctx, sess)
		hash, query := ParseURL(currentURL)
		m := merged(hash, query)

		path := ""
		if currentURL != nil {
			path = currentURL.Path
		}
		onReset := path == st.ResetPath

		// Un SIGNED_IN genérico solo activa si hay evidencia de recovery:
		// code en la URL, flag persistido, o marca de recovery en el path
		// de reset.
		if m.Code != "" || rec.Active ||
			(onReset && (mentionsRecovery(hash, query) || m.Code != "" || rec.Active)) {
			st.Activate(ctx, sess, SourceAuthEvent)
		}
	}
}
