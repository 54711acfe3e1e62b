package authclient_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/lumify/internal/authclient"
)

func TestBus_SubscribePublishUnsubscribe(t *testing.T) {
	bus := authclient.NewBus()

	var got []authclient.EventKind
	unsub := bus.Subscribe(func(evt authclient.Event) {
		got = append(got, evt.Kind)
	})

	bus.Publish(authclient.Event{Kind: authclient.EventSignedIn, SessionID: "s1"})
	if len(got) != 1 || got[0] != authclient.EventSignedIn {
		t.Fatalf("expected one SIGNED_IN, got %v", got)
	}

	unsub()
	bus.Publish(authclient.Event{Kind: authclient.EventSignedOut})
	if len(got) != 1 {
		t.Fatalf("unsubscribed handler still called: %v", got)
	}
}

func TestBus_PanicDoesNotStopDelivery(t *testing.T) {
	bus := authclient.NewBus()

	delivered := 0
	bus.Subscribe(func(authclient.Event) { panic("boom") })
	bus.Subscribe(func(authclient.Event) { delivered++ })

	bus.Publish(authclient.Event{Kind: authclient.EventPasswordRecovery})
	if delivered != 1 {
		t.Fatalf("expected delivery despite panic, got %d", delivered)
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	if authclient.TokenExpired(signedToken(t, now.Add(time.Hour)), now) {
		t.Fatal("fresh token reported expired")
	}
	if !authclient.TokenExpired(signedToken(t, now.Add(-time.Hour)), now) {
		t.Fatal("stale token reported valid")
	}
	if !authclient.TokenExpired("", now) {
		t.Fatal("empty token is expired by definition")
	}
	// token opaco: decide el backend
	if authclient.TokenExpired("not-a-jwt", now) {
		t.Fatal("opaque token must not short-circuit")
	}
}

func TestTokenSubject(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	if got := authclient.TokenSubject(tok); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
	if got := authclient.TokenSubject("garbage"); got != "" {
		t.Fatalf("expected empty subject, got %q", got)
	}
}
