package authclient

import (
	"sync"

	"github.com/dropDatabas3/lumify/internal/observability/logger"
)

// EventKind identifica el tipo de evento de auth que emite el backend.
type EventKind string

const (
	EventSignedIn         EventKind = "SIGNED_IN"
	EventSignedOut        EventKind = "SIGNED_OUT"
	EventPasswordRecovery EventKind = "PASSWORD_RECOVERY"
)

// Event es una notificación asincrónica del stream de auth.
// SessionID identifica la sesión de navegación que originó la operación;
// CurrentURL es la URL del request en curso en ese momento (puede faltar).
type Event struct {
	Kind       EventKind
	SessionID  string
	CurrentURL string
	Session    *Session
}

// Handler consume eventos. No debe bloquear.
type Handler func(Event)

// Bus es el dispatcher in-process de eventos de auth.
// Los handlers se invocan en orden de registro, sincrónicamente respecto
// del goroutine que publica; las transiciones del consumidor son
// idempotentes así que un evento tardío es inofensivo.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registra un handler y retorna la función para darlo de baja.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish entrega el evento a todos los handlers registrados.
// Un panic en un handler no tumba el bus.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Named("authbus").Sugar().Errorw("auth event handler panicked",
						"event", string(evt.Kind), "panic", r)
				}
			}()
			h(evt)
		}()
	}
}
