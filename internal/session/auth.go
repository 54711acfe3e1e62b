package session

import "context"

// Keys de la sesión de auth delegada al backend.
const (
	keyAccessToken  = "auth_access_token"
	keyRefreshToken = "auth_refresh_token"
)

// AccessToken retorna el access token guardado, o "".
func (s *Session) AccessToken(ctx context.Context) string {
	return s.Get(ctx, keyAccessToken)
}

// SetAuthTokens guarda los tokens emitidos por el backend.
func (s *Session) SetAuthTokens(ctx context.Context, access, refresh string) {
	if access != "" {
		s.Set(ctx, keyAccessToken, access)
	}
	if refresh != "" {
		s.Set(ctx, keyRefreshToken, refresh)
	}
}

// ClearAuthTokens borra la sesión de auth (logout).
func (s *Session) ClearAuthTokens(ctx context.Context) {
	s.Delete(ctx, keyAccessToken)
	s.Delete(ctx, keyRefreshToken)
}
