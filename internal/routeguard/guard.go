// Package routeguard decide, para cada navegación, si se renderiza la
// página pedida o se redirige. Función total de (user, recovery, path):
// sin memoria propia, idempotente, segura de re-evaluar en cada request.
package routeguard

import "github.com/dropDatabas3/lumify/internal/authclient"

// Paths de la superficie de rutas gateada.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathReset     = "/reset-password"
	PathDashboard = "/dashboard"
)

// authedPages: dashboard y todas las páginas financieras/reportes.
var authedPages = map[string]bool{
	PathDashboard:   true,
	"/expenses":     true,
	"/incomes":      true,
	"/investments":  true,
	"/projection":   true,
	"/accounts":     true,
	"/patrimony":    true,
	"/calculator":   true,
	"/reports":      true,
	"/achievements": true,
	"/settings":     true,
	"/plans":        true,
}

// unauthOnly: páginas accesibles solo sin sesión (o en recovery).
var unauthOnly = map[string]bool{
	PathRoot:     true,
	PathLogin:    true,
	PathRegister: true,
}

// Decision es el resultado del guard.
type Decision struct {
	Render     bool
	RedirectTo string // válido si !Render
}

func render() Decision           { return Decision{Render: true} }
func redirect(p string) Decision { return Decision{RedirectTo: p} }

// Decide evalúa las reglas en orden:
//
//  1. Páginas unauth-only: renderizan sin user O en recovery. El modo
//     recovery las mantiene accesibles aunque exista sesión, porque el
//     backend puede haber creado una sesión transitoria al validar el link.
//  2. El path de reset siempre renderiza su propio gate, independiente del
//     user; nunca entra en la regla de redirect de páginas autenticadas.
//  3. Páginas autenticadas: renderizan con user; sin user van a login.
//  4. Catch-all: con user y sin recovery va al dashboard; si no, a la raíz.
func Decide(user *authclient.User, recoveryActive bool, path string) Decision {
	switch {
	case unauthOnly[path]:
		if user == nil || recoveryActive {
			return render()
		}
		return redirect(PathDashboard)

	case path == PathReset:
		return render()

	case authedPages[path]:
		if user != nil {
			return render()
		}
		return redirect(PathLogin)

	default:
		if user != nil && !recoveryActive {
			return redirect(PathDashboard)
		}
		return redirect(PathRoot)
	}
}

// IsPage reconoce los paths navegables (para aplicar el interceptor solo a
// page loads, no a assets ni endpoints de API).
func IsPage(path string) bool {
	return unauthOnly[path] || authedPages[path] || path == PathReset
}
