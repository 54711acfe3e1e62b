// Package rate implementa rate limiting de ventana fija (INCR + EXPIRE)
// sobre el cache compartido. Protege login y forgot-password.
package rate

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/lumify/internal/cache"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// FixedWindow: ventana fija sencilla sobre cache.Client.Incr.
// Con el driver redis el contador es atómico cross-instancia; con memory
// vale para un solo nodo.
type FixedWindow struct {
	Cache  cache.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewFixedWindow(c cache.Client, prefix string, max int, window time.Duration) *FixedWindow {
	if prefix == "" {
		prefix = "rl:"
	}
	return &FixedWindow{Cache: c, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	k := l.Prefix + strings.ReplaceAll(key, " ", "_") + ":" + winStart.Format("20060102150405")

	hits, err := l.Cache.Incr(ctx, k, l.Window)
	if err != nil {
		// cache caído: fail-open, no bloqueamos logins por un redis caído
		return Result{Allowed: true, Remaining: l.Max}, err
	}

	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !res.Allowed {
		// Retry after: resto de la ventana
		res.RetryAfter = winStart.Add(l.Window).Sub(now)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}

// Noop permite deshabilitar el limiting por config.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}
