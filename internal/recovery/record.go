package recovery

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/dropDatabas3/lumify/internal/session"
)

// Keys del registro persistido en la sesión de navegación.
// Sobreviven reloads completos de página dentro de la misma sesión.
const (
	KeyActiveFlag     = "recovery_active_flag"
	KeyActivatedAt    = "recovery_activated_at"
	KeyAuthCode       = "recovery_authorization_code"
	KeyOriginalURL    = "recovery_original_url"
	KeyAuthError      = "auth_error_record"
	KeyExpiredMarker  = "recovery_expired_marker"
	KeyLoginToastFlag = "login_toast_shown_flag"
)

// AuthError es el error estructurado reportado por el backend en la URL.
type AuthError struct {
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// Record es el snapshot del registro persistido de recovery.
type Record struct {
	Active            bool
	ActivatedAt       time.Time // zero si nunca se activó
	AuthorizationCode string
	OriginalURL       string
	AuthError         *AuthError
	Expired           bool
}

// LoadRecord lee el registro desde la sesión. Best-effort: storage
// inaccesible o JSON corrupto se tratan como "señal ausente".
func LoadRecord(ctx context.Context, sess *session.Session) Record {
	var rec Record
	rec.Active = sess.Get(ctx, KeyActiveFlag) == "true"
	if ts := sess.Get(ctx, KeyActivatedAt); ts != "" {
		if ms, err := strconv.ParseInt(ts, 10, 64); err == nil {
			rec.ActivatedAt = time.UnixMilli(ms)
		}
	}
	rec.AuthorizationCode = sess.Get(ctx, KeyAuthCode)
	rec.OriginalURL = sess.Get(ctx, KeyOriginalURL)
	rec.Expired = sess.Get(ctx, KeyExpiredMarker) == "true"

	if raw := sess.Get(ctx, KeyAuthError); raw != "" {
		var ae AuthError
		if err := json.Unmarshal([]byte(raw), &ae); err == nil {
			rec.AuthError = &ae
		}
		// JSON corrupto: se ignora
	}
	return rec
}

// markActive persiste la activación: flag + timestamp, y opcionalmente el
// code y la URL original de la primera detección.
func markActive(ctx context.Context, sess *session.Session, now time.Time, code, originalURL string) {
	sess.Set(ctx, KeyActiveFlag, "true")
	sess.Set(ctx, KeyActivatedAt, strconv.FormatInt(now.UnixMilli(), 10))
	if code != "" {
		sess.Set(ctx, KeyAuthCode, code)
	}
	if originalURL != "" {
		sess.Set(ctx, KeyOriginalURL, originalURL)
	}
}

// saveAuthError persiste el error estructurado del backend.
func saveAuthError(ctx context.Context, sess *session.Session, ae AuthError) {
	b, err := json.Marshal(ae)
	if err != nil {
		return
	}
	sess.Set(ctx, KeyAuthError, string(b))
}

// clearRecord borra todo rastro de recovery de la sesión.
// Idempotente: borrar keys ausentes no es un error.
func clearRecord(ctx context.Context, sess *session.Session) {
	sess.Delete(ctx, KeyActiveFlag)
	sess.Delete(ctx, KeyActivatedAt)
	sess.Delete(ctx, KeyAuthCode)
	sess.Delete(ctx, KeyOriginalURL)
	sess.Delete(ctx, KeyAuthError)
	sess.Delete(ctx, KeyExpiredMarker)
}
