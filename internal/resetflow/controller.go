// Package resetflow gatea el formulario de reset de password y maneja el
// submit. Estados: CHECKING → ERROR | INVALID | VALID → SUBMITTING →
// VALID (falla) | DONE (éxito, recovery limpiado, redirect diferido).
package resetflow

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/routeguard"
	"github.com/dropDatabas3/lumify/internal/session"
)

// State del flujo de reset.
type State string

const (
	StateError   State = "error"   // error terminal del link (ej. vencido)
	StateInvalid State = "invalid" // sin evidencia de recovery; redirige
	StateValid   State = "valid"   // formulario habilitado
	StateDone    State = "done"    // password actualizado
)

// MinPasswordLength es el mínimo aceptado localmente.
// La política completa vive en el backend.
const MinPasswordLength = 6

// DoneRedirectDelay: tras el éxito, la página redirige a login con esta demora fija.
const DoneRedirectDelay = 2 * time.Second

// Evaluation es el resultado de chequear el link al cargar la página.
type Evaluation struct {
	State      State
	Message    string // mensaje visible para ERROR / INVALID
	RedirectTo string // destino si State == StateInvalid
}

// ValidationError es un error local, sincrónico, que nunca llega al backend.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// IsValidationError reporta si err es una falla de validación local.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Controller consume el estado de recovery para gatear el formulario.
type Controller struct {
	Auth     authclient.Client
	Recovery *recovery.Store
}

// Evaluate corre el chequeo CHECKING → {ERROR, INVALID, VALID}.
// u es la URL del page load actual; user la sesión vigente (o nil).
func (c *Controller) Evaluate(ctx context.Context, sess *session.Session, u *url.URL, user *authclient.User) Evaluation {
	rec := recovery.LoadRecord(ctx, sess)

	// Error estructurado persistido: pantalla terminal. Suprime la
	// detección de recovery aunque la misma URL traiga otros tokens.
	if rec.AuthError != nil || rec.Expired {
		msg := "El link de redefinición no es válido."
		if rec.Expired || (rec.AuthError != nil && rec.AuthError.ErrorCode == "otp_expired") {
			msg = "El link de redefinición venció. Pedí uno nuevo desde la pantalla de login."
		} else if rec.AuthError != nil && rec.AuthError.ErrorDescription != "" {
			msg = rec.AuthError.ErrorDescription
		}
		return Evaluation{State: StateError, Message: msg}
	}

	hash, query := recovery.ParseURL(u)

	// Canje del authorization code (flujo PKCE): si el link trae code y la
	// sesión todavía no tiene tokens, lo canjeamos acá para poder llamar
	// updatePassword después.
	code := query.Code
	if code == "" {
		code = hash.Code
	}
	if code == "" {
		code = rec.AuthorizationCode
	}
	if code != "" && sess.AccessToken(ctx) == "" {
		if s, err := c.Auth.ExchangeCode(ctx, code); err == nil && s != nil {
			sess.SetAuthTokens(ctx, s.AccessToken, s.RefreshToken)
			user = s.User
			if pub, ok := c.Auth.(interface {
				PublishRecovery(context.Context, *authclient.Session)
			}); ok {
				pub.PublishRecovery(ctx, s)
			}
		} else if err != nil {
			var apiErr *authclient.APIError
			if errors.As(err, &apiErr) {
				// code ya usado o vencido: mismo tratamiento que un error en la URL
				logger.From(ctx).Warn("recovery code exchange failed",
					logger.Component("resetflow"), logger.Err(err))
				return Evaluation{
					State:   StateError,
					Message: "El link de redefinición no es válido o ya fue usado.",
				}
			}
			// backend caído: dejamos el formulario gateado como inválido suave
			return Evaluation{
				State:      StateInvalid,
				Message:    "No pudimos validar el link. Probá de nuevo en unos minutos.",
				RedirectTo: routeguard.PathLogin,
			}
		}
	}

	// Evidencia válida: flag persistido, evidencia en la URL, o el store
	// reporta activo (regla de ventana incluida) con una sesión presente.
	hasURLEvidence := recovery.HasRecoveryEvidence(hash, query)
	if rec.Active || code != "" || hasURLEvidence {
		return Evaluation{State: StateValid}
	}
	if user != nil && c.Recovery.IsActive(ctx, sess, u, routeguard.PathReset) {
		return Evaluation{State: StateValid}
	}

	// Usuario autenticado que llegó acá por error → dashboard.
	if user != nil {
		return Evaluation{State: StateInvalid, RedirectTo: routeguard.PathDashboard}
	}

	// Sin sesión y sin evidencia → login con aviso de link inválido.
	return Evaluation{
		State:      StateInvalid,
		Message:    "Este link de redefinición no es válido o ya fue usado.",
		RedirectTo: routeguard.PathLogin,
	}
}

// Submit valida y envía el password nuevo. Orden de validación, cada una
// corta con mensaje visible: link aún válido, largo mínimo, confirmación.
// Éxito: limpia recovery y retorna nil (estado DONE).
func (c *Controller) Submit(ctx context.Context, sess *session.Session, linkValid bool, password, confirm string) error {
	if !linkValid {
		return &ValidationError{Msg: "Este link de redefinición no es válido."}
	}
	if utf8.RuneCountInString(strings.TrimSpace(password)) < MinPasswordLength {
		return &ValidationError{Msg: "La contraseña debe tener al menos 6 caracteres."}
	}
	if password != confirm {
		return &ValidationError{Msg: "Las contraseñas no coinciden."}
	}

	token := sess.AccessToken(ctx)
	if err := c.Auth.UpdatePassword(ctx, token, password); err != nil {
		// queda en VALID, reintentable; el error se muestra tal cual
		logger.From(ctx).Warn("password update failed",
			logger.Component("resetflow"), logger.Err(err))
		return err
	}

	c.Recovery.Clear(ctx, sess)
	logger.From(ctx).Info("password updated, recovery cleared",
		logger.Component("resetflow"))
	return nil
}
