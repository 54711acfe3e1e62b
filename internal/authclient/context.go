package authclient

import "context"

type (
	sidKey struct{}
	urlKey struct{}
)

// WithSessionID etiqueta el contexto con la sesión de navegación que origina
// la llamada, para que los eventos publicados lleguen a la sesión correcta.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sidKey{}, sid)
}

// SessionIDFrom extrae el ID de sesión del contexto, o "".
func SessionIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(sidKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestURL guarda la URL del request en curso, para que los eventos
// la lleven: los consumidores inspeccionan la URL al decidir si un
// SIGNED_IN genérico trae evidencia de recovery.
func WithRequestURL(ctx context.Context, u string) context.Context {
	return context.WithValue(ctx, urlKey{}, u)
}

// RequestURLFrom extrae la URL del request del contexto, o "".
func RequestURLFrom(ctx context.Context) string {
	if v, ok := ctx.Value(urlKey{}).(string); ok {
		return v
	}
	return ""
}
