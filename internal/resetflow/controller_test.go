package resetflow_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/cache"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/resetflow"
	"github.com/dropDatabas3/lumify/internal/session"
)

// fakeAuth registra llamadas; los métodos no configurados fallan el test.
type fakeAuth struct {
	t *testing.T

	exchangeResp *authclient.Session
	exchangeErr  error
	exchanged    []string

	updateErr error
	updates   []string
}

func (f *fakeAuth) FetchCurrentSession(context.Context, string) (*authclient.Session, error) {
	return nil, nil
}

func (f *fakeAuth) SignIn(context.Context, string, string) (*authclient.Session, error) {
	f.t.Fatal("unexpected SignIn")
	return nil, nil
}

func (f *fakeAuth) SignUp(context.Context, string, string, authclient.SignUpOptions) (*authclient.Session, error) {
	f.t.Fatal("unexpected SignUp")
	return nil, nil
}

func (f *fakeAuth) SignOut(context.Context, string) error {
	f.t.Fatal("unexpected SignOut")
	return nil
}

func (f *fakeAuth) RequestPasswordReset(context.Context, string, string) error {
	f.t.Fatal("unexpected RequestPasswordReset")
	return nil
}

func (f *fakeAuth) ExchangeCode(_ context.Context, code string) (*authclient.Session, error) {
	f.exchanged = append(f.exchanged, code)
	return f.exchangeResp, f.exchangeErr
}

func (f *fakeAuth) UpdatePassword(_ context.Context, _ string, newPassword string) error {
	f.updates = append(f.updates, newPassword)
	return f.updateErr
}

func (f *fakeAuth) SubscribeAuthEvents(authclient.Handler) func() { return func() {} }

func newController(t *testing.T) (*resetflow.Controller, *fakeAuth, *session.Session) {
	t.Helper()
	fa := &fakeAuth{t: t}
	mgr := &session.Manager{Store: cache.NewMemory(cache.Config{}), TTL: time.Hour}
	sess := mgr.ByID("reset-test")
	c := &resetflow.Controller{
		Auth:     fa,
		Recovery: &recovery.Store{ResetPath: "/reset-password"},
	}
	return c, fa, sess
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestEvaluate_ExpiredLink(t *testing.T) {
	ctx := context.Background()
	c, _, sess := newController(t)
	sess.Set(ctx, recovery.KeyExpiredMarker, "true")

	ev := c.Evaluate(ctx, sess, mustURL(t, "/reset-password"), nil)
	if ev.State != resetflow.StateError {
		t.Fatalf("expected ERROR, got %+v", ev)
	}
	if ev.Message == "" {
		t.Fatal("expected a visible message")
	}
}

func TestEvaluate_PersistedAuthError(t *testing.T) {
	ctx := context.Background()
	c, _, sess := newController(t)
	sess.Set(ctx, recovery.KeyAuthError, `{"error":"access_denied","error_code":"otp_expired"}`)

	ev := c.Evaluate(ctx, sess, mustURL(t, "/reset-password#type=recovery&access_token=tok"), nil)
	if ev.State != resetflow.StateError {
		t.Fatalf("persisted error must win over URL tokens, got %+v", ev)
	}
}

func TestEvaluate_CodeExchange(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)
	fa.exchangeResp = &authclient.Session{
		AccessToken:  "at",
		RefreshToken: "rt",
		User:         &authclient.User{ID: "u1", Email: "a@b.com"},
	}

	ev := c.Evaluate(ctx, sess, mustURL(t, "/reset-password?code=abc"), nil)
	if ev.State != resetflow.StateValid {
		t.Fatalf("expected VALID, got %+v", ev)
	}
	if len(fa.exchanged) != 1 || fa.exchanged[0] != "abc" {
		t.Fatalf("expected one exchange of abc, got %v", fa.exchanged)
	}
	if sess.AccessToken(ctx) != "at" {
		t.Fatal("expected tokens persisted after exchange")
	}

	// segunda evaluación: los tokens ya están, no se re-canjea
	ev = c.Evaluate(ctx, sess, mustURL(t, "/reset-password?code=abc"), nil)
	if ev.State != resetflow.StateValid || len(fa.exchanged) != 1 {
		t.Fatalf("expected no re-exchange, got state=%s exchanges=%v", ev.State, fa.exchanged)
	}
}

func TestEvaluate_CodeExchangeAPIError(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)
	fa.exchangeErr = &authclient.APIError{Code: "invalid_grant", Status: 400}

	ev := c.Evaluate(ctx, sess, mustURL(t, "/reset-password?code=used"), nil)
	if ev.State != resetflow.StateError {
		t.Fatalf("used code should be terminal, got %+v", ev)
	}
}

func TestEvaluate_CodeExchangeBackendDown(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)
	fa.exchangeErr = authclient.ErrBackendUnavailable

	ev := c.Evaluate(ctx, sess, mustURL(t, "/reset-password?code=abc"), nil)
	if ev.State != resetflow.StateInvalid || ev.RedirectTo != "/login" {
		t.Fatalf("backend down should soft-fail to login, got %+v", ev)
	}
}

func TestEvaluate_NoEvidence(t *testing.T) {
	ctx := context.Background()
	c, _, sess := newController(t)

	// sin user, sin evidencia → login
	ev := c.Evaluate(ctx, sess, mustURL(t, "/reset-password"), nil)
	if ev.State != resetflow.StateInvalid || ev.RedirectTo != "/login" {
		t.Fatalf("expected INVALID→login, got %+v", ev)
	}

	// con user y sin recovery → dashboard
	ev = c.Evaluate(ctx, sess, mustURL(t, "/reset-password"), &authclient.User{ID: "u1"})
	if ev.State != resetflow.StateInvalid || ev.RedirectTo != "/dashboard" {
		t.Fatalf("expected INVALID→dashboard, got %+v", ev)
	}
}

func TestSubmit_ValidationOrder(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)

	// 1. link inválido corta primero
	err := c.Submit(ctx, sess, false, "secreta", "secreta")
	if !resetflow.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// 2. largo mínimo
	err = c.Submit(ctx, sess, true, "corta", "corta")
	if !resetflow.IsValidationError(err) {
		t.Fatalf("expected length validation error, got %v", err)
	}

	// 3. confirmación
	err = c.Submit(ctx, sess, true, "secreta1", "secreta2")
	if !resetflow.IsValidationError(err) {
		t.Fatalf("expected mismatch validation error, got %v", err)
	}

	// ninguna validación local llegó al backend
	if len(fa.updates) != 0 {
		t.Fatalf("local validation must not call the backend, got %v", fa.updates)
	}
}

func TestSubmit_MinLengthCountsRunes(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)

	// 5 runas, 10 bytes: igual de corta que "corta"
	err := c.Submit(ctx, sess, true, "ñññññ", "ñññññ")
	if !resetflow.IsValidationError(err) {
		t.Fatalf("expected length validation error for 5-rune password, got %v", err)
	}
	if len(fa.updates) != 0 {
		t.Fatalf("short multibyte password must not reach the backend, got %v", fa.updates)
	}

	// 6 runas multibyte alcanzan el mínimo
	if err := c.Submit(ctx, sess, true, "ññññññ", "ññññññ"); err != nil {
		t.Fatalf("6-rune password should pass validation, got %v", err)
	}
	if len(fa.updates) != 1 {
		t.Fatalf("expected one backend update, got %v", fa.updates)
	}
}

func TestSubmit_SuccessClearsRecovery(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)

	c.Recovery.Activate(ctx, sess, recovery.SourceURLQuery)
	sess.SetAuthTokens(ctx, "at", "rt")

	if err := c.Submit(ctx, sess, true, "secreta1", "secreta1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(fa.updates) != 1 || fa.updates[0] != "secreta1" {
		t.Fatalf("expected one update, got %v", fa.updates)
	}
	if c.Recovery.IsActive(ctx, sess, nil, "/dashboard") {
		t.Fatal("recovery must be cleared after success")
	}
}

func TestSubmit_BackendFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	c, fa, sess := newController(t)
	fa.updateErr = &authclient.APIError{Code: "weak_password", Description: "too weak", Status: 422}

	c.Recovery.Activate(ctx, sess, recovery.SourceURLQuery)

	err := c.Submit(ctx, sess, true, "secreta1", "secreta1")
	if err == nil || resetflow.IsValidationError(err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	// el flujo sigue activo, reintentable
	if !c.Recovery.IsActive(ctx, sess, nil, "/reset-password") {
		t.Fatal("recovery must survive a failed update")
	}
}
