package recovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/cache"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	mgr := &session.Manager{
		Store:      cache.NewMemory(cache.Config{}),
		CookieName: "lumify_sid",
		TTL:        time.Hour,
	}
	return mgr.ByID("test-session")
}

func TestStore_ActivateAndIsActive(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	st := &recovery.Store{ResetPath: "/reset-password"}

	if st.IsActive(ctx, sess, nil, "/dashboard") {
		t.Fatal("fresh session should not be active")
	}

	st.Activate(ctx, sess, recovery.SourceURLHash)
	if !st.IsActive(ctx, sess, nil, "/dashboard") {
		t.Fatal("expected active after Activate")
	}

	// monótono: re-activar no rompe nada
	st.Activate(ctx, sess, recovery.SourceAuthEvent)
	if !st.IsActive(ctx, sess, nil, "/login") {
		t.Fatal("expected still active")
	}
}

func TestStore_IsActive_URLToken(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	var source string
	st := &recovery.Store{
		ResetPath:  "/reset-password",
		OnActivate: func(s string) { source = s },
	}

	u := mustURL(t, "/reset-password#type=recovery&access_token=tok")
	if !st.IsActive(ctx, sess, u, u.Path) {
		t.Fatal("expected recovery token in URL to activate")
	}
	if source != string(recovery.SourceURLHash) {
		t.Fatalf("expected hash source, got %q", source)
	}

	// quedó persistido: sin URL sigue activo
	if !st.IsActive(ctx, sess, nil, "/dashboard") {
		t.Fatal("expected persisted activation")
	}

	// misma detección con el token en la query
	sess2 := newTestSession(t)
	source = ""
	u2 := mustURL(t, "/login?type=recovery&access_token=tok")
	if !st.IsActive(ctx, sess2, u2, u2.Path) {
		t.Fatal("expected recovery token in query to activate")
	}
	if source != string(recovery.SourceURLQuery) {
		t.Fatalf("expected query source, got %q", source)
	}
}

func TestStore_WindowRule(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	// Dentro de la ventana: activación hace 30s, URL ya limpia.
	sess := newTestSession(t)
	past := &recovery.Store{
		ResetPath: "/reset-password",
		Clock:     func() time.Time { return now.Add(-30 * time.Second) },
	}
	past.Activate(ctx, sess, recovery.SourceURLHash)
	// borra el flag pero no el timestamp, como hace un reload tras limpiar URL
	sess.Delete(ctx, recovery.KeyActiveFlag)

	st := &recovery.Store{ResetPath: "/reset-password", Clock: func() time.Time { return now }}
	if !st.IsActive(ctx, sess, nil, "/reset-password") {
		t.Fatal("activation 30s ago on reset path should count")
	}
	if st.IsActive(ctx, sess, nil, "/dashboard") {
		t.Fatal("window rule only applies on the reset path")
	}

	// Fuera de la ventana: 90s > 60s
	sess2 := newTestSession(t)
	old := &recovery.Store{
		ResetPath: "/reset-password",
		Clock:     func() time.Time { return now.Add(-90 * time.Second) },
	}
	old.Activate(ctx, sess2, recovery.SourceURLHash)
	sess2.Delete(ctx, recovery.KeyActiveFlag)

	if st.IsActive(ctx, sess2, nil, "/reset-password") {
		t.Fatal("activation 90s ago should be outside the window")
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	st := &recovery.Store{ResetPath: "/reset-password"}

	st.Activate(ctx, sess, recovery.SourceURLQuery)
	st.Clear(ctx, sess)
	st.Clear(ctx, sess) // doble clear: inofensivo

	if st.IsActive(ctx, sess, nil, "/dashboard") {
		t.Fatal("expected inactive after clear")
	}
	rec := recovery.LoadRecord(ctx, sess)
	if rec.Active || !rec.ActivatedAt.IsZero() || rec.AuthorizationCode != "" {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestStore_ApplyAuthEvent(t *testing.T) {
	ctx := context.Background()
	st := &recovery.Store{ResetPath: "/reset-password"}

	// PASSWORD_RECOVERY activa siempre
	sess := newTestSession(t)
	st.ApplyAuthEvent(ctx, sess, authclient.EventPasswordRecovery, nil)
	if !st.IsActive(ctx, sess, nil, "/login") {
		t.Fatal("PASSWORD_RECOVERY should activate")
	}

	// SIGNED_IN genérico no activa
	sess2 := newTestSession(t)
	st.ApplyAuthEvent(ctx, sess2, authclient.EventSignedIn, mustURL(t, "/login"))
	if st.IsActive(ctx, sess2, nil, "/login") {
		t.Fatal("plain SIGNED_IN must not activate")
	}

	// SIGNED_IN con code en la URL sí
	sess3 := newTestSession(t)
	st.ApplyAuthEvent(ctx, sess3, authclient.EventSignedIn, mustURL(t, "/reset-password?code=abc"))
	if !st.IsActive(ctx, sess3, nil, "/login") {
		t.Fatal("SIGNED_IN with code should activate")
	}

	// evento tardío sin URL sobre sesión ya activa: idempotente
	st.ApplyAuthEvent(ctx, sess3, authclient.EventSignedIn, nil)
	if !st.IsActive(ctx, sess3, nil, "/login") {
		t.Fatal("late event should keep activation")
	}
}
