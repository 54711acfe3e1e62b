package middlewares

import (
	"context"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/session"
)

type (
	ridKey     struct{}
	sessKey    struct{}
	userKey    struct{}
	recoverKey struct{}
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ridKey{}, rid)
}

// GetRequestID retorna el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ridKey{}).(string); ok {
		return v
	}
	return ""
}

// WithSession inyecta la sesión de navegación en el contexto.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessKey{}, s)
}

// GetSession retorna la sesión del contexto, o nil.
func GetSession(ctx context.Context) *session.Session {
	if v, ok := ctx.Value(sessKey{}).(*session.Session); ok {
		return v
	}
	return nil
}

// WithUser inyecta el usuario autenticado (read-only, dueño: el backend).
func WithUser(ctx context.Context, u *authclient.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// GetUser retorna el usuario del contexto, o nil si no hay sesión.
func GetUser(ctx context.Context) *authclient.User {
	if v, ok := ctx.Value(userKey{}).(*authclient.User); ok {
		return v
	}
	return nil
}

// WithRecoveryActive marca en el contexto la decisión de recovery del request.
func WithRecoveryActive(ctx context.Context, active bool) context.Context {
	return context.WithValue(ctx, recoverKey{}, active)
}

// GetRecoveryActive retorna la decisión de recovery calculada por el guard.
func GetRecoveryActive(ctx context.Context) bool {
	v, _ := ctx.Value(recoverKey{}).(bool)
	return v
}
