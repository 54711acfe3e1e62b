package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/http/middlewares"
	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/internal/rate"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/routeguard"
	"github.com/dropDatabas3/lumify/internal/session"
)

// AuthHandler procesa los formularios de auth delegando en el backend.
// Ningún error del backend cruza como excepción: todo termina en una
// notificación y un redirect.
type AuthHandler struct {
	Auth          authclient.Client
	BaseURL       string // URL pública, para el redirect target de recovery
	LoginLimiter  rate.Limiter
	ForgotLimiter rate.Limiter
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/register", h.signup)
	r.Post("/auth/logout", h.logout)
	r.Post("/auth/forgot", h.forgot)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middlewares.GetSession(ctx)

	if limited(ctx, h.LoginLimiter, "login:"+clientIP(r), w, r, sess, routeguard.PathLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	s, err := h.Auth.SignIn(ctx, email, password)
	if err != nil {
		flashAuthError(ctx, sess, "Falla en el login", translateAuthError(err))
		http.Redirect(w, r, routeguard.PathLogin, http.StatusSeeOther)
		return
	}

	sess.SetAuthTokens(ctx, s.AccessToken, s.RefreshToken)
	logger.From(ctx).Info("sign in ok", logger.UserID(userID(s)))
	http.Redirect(w, r, routeguard.PathDashboard, http.StatusSeeOther)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middlewares.GetSession(ctx)

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	name := strings.TrimSpace(r.FormValue("name"))

	opts := authclient.SignUpOptions{}
	if name != "" {
		opts.Metadata = map[string]string{"nome": name}
	}

	if _, err := h.Auth.SignUp(ctx, email, password, opts); err != nil {
		flashAuthError(ctx, sess, "Falla en el registro", translateAuthError(err))
		http.Redirect(w, r, routeguard.PathRegister, http.StatusSeeOther)
		return
	}

	sess.Flash(ctx, session.Notice{
		Kind:    "success",
		Title:   "¡Registro exitoso!",
		Message: "Te enviamos un e-mail de confirmación.",
	})
	http.Redirect(w, r, routeguard.PathLogin, http.StatusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middlewares.GetSession(ctx)

	if tok := sess.AccessToken(ctx); tok != "" {
		if err := h.Auth.SignOut(ctx, tok); err != nil {
			// la sesión local se limpia igual
			logger.From(ctx).Warn("backend sign out failed", logger.Err(err))
		}
	}
	sess.ClearAuthTokens(ctx)
	sess.Delete(ctx, recovery.KeyLoginToastFlag)
	http.Redirect(w, r, routeguard.PathRoot, http.StatusSeeOther)
}

func (h *AuthHandler) forgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middlewares.GetSession(ctx)

	if limited(ctx, h.ForgotLimiter, "forgot:"+clientIP(r), w, r, sess, routeguard.PathLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	redirectTarget := strings.TrimRight(h.BaseURL, "/") + routeguard.PathReset

	if err := h.Auth.RequestPasswordReset(ctx, email, redirectTarget); err != nil {
		flashAuthError(ctx, sess, "No pudimos enviar el e-mail", translateAuthError(err))
		http.Redirect(w, r, routeguard.PathLogin+"?forgot=1", http.StatusSeeOther)
		return
	}

	sess.Flash(ctx, session.Notice{
		Kind:    "success",
		Title:   "Revisá tu e-mail",
		Message: "Te enviamos un link para redefinir tu contraseña.",
	})
	http.Redirect(w, r, routeguard.PathLogin, http.StatusSeeOther)
}

func userID(s *authclient.Session) string {
	if s != nil && s.User != nil {
		return s.User.ID
	}
	return ""
}

func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i > 0 {
		ip = ip[:i]
	}
	return ip
}

func flashAuthError(ctx context.Context, sess *session.Session, title, msg string) {
	sess.Flash(ctx, session.Notice{Kind: "error", Title: title, Message: msg})
}

// limited aplica el rate limit; si corresponde, responde con aviso y corta.
func limited(ctx context.Context, l rate.Limiter, key string, w http.ResponseWriter, r *http.Request, sess *session.Session, backTo string) bool {
	if l == nil {
		return false
	}
	res, err := l.Allow(ctx, key)
	if err != nil {
		logger.From(ctx).Warn("rate limiter error", logger.Err(err))
	}
	if res.Allowed {
		return false
	}
	flashAuthError(ctx, sess, "Demasiados intentos",
		"Probá de nuevo en unos minutos.")
	http.Redirect(w, r, backTo, http.StatusSeeOther)
	return true
}

// translateAuthError convierte los mensajes comunes del backend en texto
// entendible. Cualquier otro error se muestra tal cual lo reportó.
func translateAuthError(err error) string {
	if err == nil {
		return "No pudimos completar la operación."
	}
	if errors.Is(err, authclient.ErrBackendUnavailable) {
		return "Problema de conexión. Verificá tu internet y probá de nuevo."
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid login credentials"):
		return "Credenciales inválidas. Verificá y probá de nuevo."
	case strings.Contains(msg, "email not confirmed"):
		return "E-mail no confirmado. Revisá tu casilla para confirmarlo."
	case strings.Contains(msg, "user not found"):
		return "Usuario no encontrado."
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many"):
		return "Demasiados intentos. Probá de nuevo en unos minutos."
	}
	var apiErr *authclient.APIError
	if errors.As(err, &apiErr) && apiErr.Description != "" {
		return apiErr.Description
	}
	return err.Error()
}
