// Package session implementa la sesión de navegación: un key-value chico,
// scoped por cookie, que sobrevive reloads completos de página.
//
// Todas las lecturas son best-effort: si el storage no está disponible se
// responde "valor ausente", nunca un error hacia las páginas. Cada key es un
// valor primitivo independiente, así que no hace falta locking (snapshot
// reads sin riesgo de update parcial).
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/lumify/internal/cache"
)

// Session es la vista de la sesión actual sobre el cache compartido.
type Session struct {
	ID    string
	store cache.Client
	ttl   time.Duration
}

// Manager emite y recupera sesiones via cookie.
type Manager struct {
	Store      cache.Client
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Ensure retorna la sesión del request, creando cookie + ID si no existe.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) *Session {
	sid := ""
	if c, err := r.Cookie(m.CookieName); err == nil && c.Value != "" {
		sid = c.Value
	}
	if sid == "" {
		sid = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     m.CookieName,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			Secure:   m.Secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(m.TTL.Seconds()),
		})
	}
	return &Session{ID: sid, store: m.Store, ttl: m.TTL}
}

// ByID retorna la vista de una sesión existente sin pasar por cookies.
// Usado por los handlers de eventos asincrónicos del stream de auth.
func (m *Manager) ByID(sid string) *Session {
	if sid == "" {
		return nil
	}
	return &Session{ID: sid, store: m.Store, ttl: m.TTL}
}

// Get retorna el valor de una key, o "" si no existe o el storage falla.
func (s *Session) Get(ctx context.Context, key string) string {
	if s == nil || s.store == nil {
		return ""
	}
	v, err := s.store.Get(ctx, s.key(key))
	if err != nil {
		return ""
	}
	return v
}

// Set guarda un valor. Los errores de storage se ignoran (best-effort).
func (s *Session) Set(ctx context.Context, key, value string) {
	if s == nil || s.store == nil {
		return
	}
	_ = s.store.Set(ctx, s.key(key), value, s.ttl)
}

// Delete elimina una key. Best-effort.
func (s *Session) Delete(ctx context.Context, key string) {
	if s == nil || s.store == nil {
		return
	}
	_ = s.store.Delete(ctx, s.key(key))
}

func (s *Session) key(k string) string { return "sess:" + s.ID + ":" + k }
