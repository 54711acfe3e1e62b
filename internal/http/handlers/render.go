package handlers

import (
	"html/template"
	"net/http"

	"github.com/dropDatabas3/lumify/internal/http/middlewares"
	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/web"
)

// Renderer renderiza los templates embebidos con los datos base de página.
type Renderer struct {
	SiteName string
	tmpl     *template.Template
}

func NewRenderer(siteName string) (*Renderer, error) {
	t, err := template.ParseFS(web.Templates, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Renderer{SiteName: siteName, tmpl: t}, nil
}

// Render ejecuta el template con los campos base (SiteName, Notice)
// completados desde el contexto del request.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["SiteName"] = rd.SiteName
	data["Title"] = title

	ctx := r.Context()
	if sess := middlewares.GetSession(ctx); sess != nil {
		if n, ok := sess.PopFlash(ctx); ok {
			data["Notice"] = n
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rd.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.From(ctx).Error("template render failed",
			logger.String("template", name), logger.Err(err))
	}
}
