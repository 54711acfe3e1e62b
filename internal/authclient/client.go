// Package authclient habla con el backend hosted de autenticación
// (API REST estilo GoTrue). Toda operación retorna (valor, error);
// ningún error cruza este límite como panic.
package authclient

import (
	"context"
	"errors"
)

// User es el usuario del backend, referenciado read-only por la app.
type User struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"user_metadata,omitempty"`
}

// Session representa la sesión vigente emitida por el backend.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

// APIError es el error estructurado que reporta el backend.
type APIError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	Status      int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}

// ErrBackendUnavailable marca fallas de red/transporte contra el backend.
// Se muestran como notificación transitoria y la operación queda reintentable.
var ErrBackendUnavailable = errors.New("authclient: backend unavailable")

// SignUpOptions son los datos extra del registro.
type SignUpOptions struct {
	Metadata map[string]string
}

// Client es la interfaz requerida del backend de auth.
type Client interface {
	// FetchCurrentSession valida el access token guardado y retorna la
	// sesión vigente, o nil si no hay sesión.
	FetchCurrentSession(ctx context.Context, accessToken string) (*Session, error)

	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error

	// RequestPasswordReset dispara el mail de recovery; redirectTarget es la
	// URL a la que el backend debería mandar el link (no siempre la respeta).
	RequestPasswordReset(ctx context.Context, email, redirectTarget string) error

	// ExchangeCode canjea un authorization code (flujo PKCE) por una sesión.
	ExchangeCode(ctx context.Context, code string) (*Session, error)

	UpdatePassword(ctx context.Context, accessToken, newPassword string) error

	// SubscribeAuthEvents registra un handler para eventos asincrónicos.
	SubscribeAuthEvents(h Handler) (unsubscribe func())
}
