package session

import (
	"context"
	"encoding/json"
)

const flashKey = "flash_notice"

// Notice es una notificación transitoria para la próxima página renderizada
// (equivalente a los toasts del frontend original).
type Notice struct {
	Kind    string `json:"kind"` // "success" | "error"
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Flash encola una notificación para el próximo render.
func (s *Session) Flash(ctx context.Context, n Notice) {
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	s.Set(ctx, flashKey, string(b))
}

// PopFlash retorna y consume la notificación pendiente, si hay.
func (s *Session) PopFlash(ctx context.Context) (Notice, bool) {
	raw := s.Get(ctx, flashKey)
	if raw == "" {
		return Notice{}, false
	}
	s.Delete(ctx, flashKey)
	var n Notice
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return Notice{}, false
	}
	return n, true
}
