package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired decide si un access token ya venció, leyendo el claim exp
// SIN verificar la firma. La verificación es responsabilidad del backend;
// acá solo evitamos un round-trip con un token obviamente vencido.
func TokenExpired(accessToken string, now time.Time) bool {
	if accessToken == "" {
		return true
	}
	tok, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		// token opaco o malformado: que decida el backend
		return false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

// TokenSubject retorna el claim sub (user ID) sin verificar la firma.
// Solo para logging; nunca para decisiones de autorización.
func TokenSubject(accessToken string) string {
	tok, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, _ := tok.Claims.GetSubject()
	return sub
}
