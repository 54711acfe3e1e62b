package routeguard_test

import (
	"testing"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/routeguard"
)

func TestDecide_UnauthOnlyPages(t *testing.T) {
	user := &authclient.User{ID: "u1", Email: "a@b.com"}

	for _, path := range []string{"/", "/login", "/register"} {
		// sin user: renderiza
		if d := routeguard.Decide(nil, false, path); !d.Render {
			t.Fatalf("%s sin user: expected render, got redirect to %s", path, d.RedirectTo)
		}
		// user + recovery: sigue renderizando (la sesión puede ser la
		// transitoria que crea el backend al validar el link)
		if d := routeguard.Decide(user, true, path); !d.Render {
			t.Fatalf("%s user+recovery: expected render, got redirect to %s", path, d.RedirectTo)
		}
		// user sin recovery: dashboard
		d := routeguard.Decide(user, false, path)
		if d.Render || d.RedirectTo != routeguard.PathDashboard {
			t.Fatalf("%s con user: expected redirect to dashboard, got %+v", path, d)
		}
	}
}

func TestDecide_ResetAlwaysRenders(t *testing.T) {
	user := &authclient.User{ID: "u1"}
	cases := []struct {
		user     *authclient.User
		recovery bool
	}{
		{nil, false},
		{nil, true},
		{user, false},
		{user, true},
	}
	for _, c := range cases {
		if d := routeguard.Decide(c.user, c.recovery, routeguard.PathReset); !d.Render {
			t.Fatalf("reset (user=%v recovery=%v): expected render, got %+v", c.user != nil, c.recovery, d)
		}
	}
}

func TestDecide_AuthedPages(t *testing.T) {
	user := &authclient.User{ID: "u1"}
	pages := []string{
		"/dashboard", "/expenses", "/incomes", "/investments", "/projection",
		"/accounts", "/patrimony", "/calculator", "/reports", "/achievements",
		"/settings", "/plans",
	}
	for _, p := range pages {
		if d := routeguard.Decide(user, false, p); !d.Render {
			t.Fatalf("%s con user: expected render, got %+v", p, d)
		}
		d := routeguard.Decide(nil, false, p)
		if d.Render || d.RedirectTo != routeguard.PathLogin {
			t.Fatalf("%s sin user: expected redirect to login, got %+v", p, d)
		}
	}
}

func TestDecide_UnknownPath(t *testing.T) {
	user := &authclient.User{ID: "u1"}

	d := routeguard.Decide(user, false, "/nope")
	if d.Render || d.RedirectTo != routeguard.PathDashboard {
		t.Fatalf("unknown con user: expected dashboard, got %+v", d)
	}
	d = routeguard.Decide(nil, false, "/nope")
	if d.Render || d.RedirectTo != routeguard.PathRoot {
		t.Fatalf("unknown sin user: expected root, got %+v", d)
	}
	// en recovery el catch-all no arrastra al dashboard
	d = routeguard.Decide(user, true, "/nope")
	if d.Render || d.RedirectTo != routeguard.PathRoot {
		t.Fatalf("unknown user+recovery: expected root, got %+v", d)
	}
}

func TestIsPage(t *testing.T) {
	for _, p := range []string{"/", "/login", "/dashboard", "/reset-password"} {
		if !routeguard.IsPage(p) {
			t.Fatalf("expected page: %s", p)
		}
	}
	for _, p := range []string{"/static/app.css", "/metrics", "/healthz", "/auth/login"} {
		if routeguard.IsPage(p) {
			t.Fatalf("expected non-page: %s", p)
		}
	}
}
