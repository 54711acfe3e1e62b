package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lumify/internal/finance"
	"github.com/dropDatabas3/lumify/internal/http/middlewares"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/session"
)

// PagesHandler sirve las páginas de la app. El route guard ya corrió:
// si llegamos acá, la decisión fue renderizar.
type PagesHandler struct {
	Render  *Renderer
	Finance *finance.Client
}

// financePages: título visible por path.
var financePages = map[string]string{
	"/expenses":     "Gastos",
	"/incomes":      "Ingresos",
	"/investments":  "Inversiones",
	"/projection":   "Proyección de inversiones",
	"/accounts":     "Cuentas",
	"/patrimony":    "Patrimonio",
	"/calculator":   "Calculadora",
	"/reports":      "Reportes",
	"/achievements": "Conquistas",
	"/settings":     "Configuración",
	"/plans":        "Planes",
}

func (h *PagesHandler) Register(r chi.Router) {
	r.Get("/", h.landing)
	r.Get("/login", h.login)
	r.Get("/register", h.register)
	r.Get("/dashboard", h.dashboard)
	for path := range financePages {
		r.Get(path, h.financePage)
	}
}

func (h *PagesHandler) landing(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, r, "landing", "Tu control financiero personal", nil)
}

func (h *PagesHandler) login(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, r, "login", "Entrar", map[string]any{
		"ShowForgot": r.URL.Query().Get("forgot") != "",
	})
}

func (h *PagesHandler) register(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, r, "register", "Crear cuenta", nil)
}

func (h *PagesHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middlewares.GetUser(ctx)
	sess := middlewares.GetSession(ctx)

	name := ""
	if user != nil {
		name = user.Metadata["nome"]
		if name == "" {
			name = user.Email
		}
	}

	var sum finance.Summary
	if h.Finance != nil && sess != nil {
		sum = finance.Summarize(h.Finance.FetchEntries(ctx, sess.AccessToken(ctx)))
	}

	h.showLoginToast(r, sess, name)
	h.Render.Render(w, r, "dashboard", "Resumen", map[string]any{
		"UserName": name,
		"Summary":  sum,
	})
}

func (h *PagesHandler) financePage(w http.ResponseWriter, r *http.Request) {
	title := financePages[r.URL.Path]
	h.Render.Render(w, r, "finance_page", title, map[string]any{})
}

// showLoginToast muestra el aviso de login exitoso una sola vez por sesión
// (flag login_toast_shown_flag).
func (h *PagesHandler) showLoginToast(r *http.Request, sess *session.Session, name string) {
	if sess == nil {
		return
	}
	ctx := r.Context()
	if sess.Get(ctx, recovery.KeyLoginToastFlag) == "true" {
		return
	}
	sess.Set(ctx, recovery.KeyLoginToastFlag, "true")
	sess.Flash(ctx, session.Notice{
		Kind:    "success",
		Title:   "¡Sesión iniciada!",
		Message: "Bienvenido de vuelta, " + name + ".",
	})
}
