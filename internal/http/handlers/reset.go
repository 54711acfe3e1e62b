package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/lumify/internal/http"
	"github.com/dropDatabas3/lumify/internal/http/middlewares"
	"github.com/dropDatabas3/lumify/internal/resetflow"
	"github.com/dropDatabas3/lumify/internal/routeguard"
	"github.com/dropDatabas3/lumify/internal/session"
)

// ResetHandler sirve el formulario de redefinición de contraseña,
// gateado por el estado de recovery.
type ResetHandler struct {
	Render *Renderer
	Flow   *resetflow.Controller
}

func (h *ResetHandler) Register(r chi.Router) {
	r.Get(routeguard.PathReset, h.page)
	r.Post(routeguard.PathReset, h.submit)
}

func (h *ResetHandler) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middlewares.GetSession(ctx)
	user := middlewares.GetUser(ctx)

	ev := h.Flow.Evaluate(ctx, sess, r.URL, user)
	switch ev.State {
	case resetflow.StateError:
		httpx.CountExpiredLink()
		h.renderState(w, r, ev.State, ev.Message)

	case resetflow.StateInvalid:
		if ev.Message != "" {
			sess.Flash(ctx, session.Notice{
				Kind:    "error",
				Title:   "Link no válido",
				Message: ev.Message,
			})
		}
		http.Redirect(w, r, ev.RedirectTo, http.StatusFound)

	default: // VALID
		// limpiar la URL de tokens: la evidencia ya quedó persistida
		if r.URL.RawQuery != "" {
			http.Redirect(w, r, routeguard.PathReset, http.StatusFound)
			return
		}
		h.renderState(w, r, ev.State, "")
	}
}

func (h *ResetHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middlewares.GetSession(ctx)
	user := middlewares.GetUser(ctx)

	ev := h.Flow.Evaluate(ctx, sess, r.URL, user)

	// ERROR es terminal también en el submit: nunca se re-muestra el form
	// sobre un link vencido o inválido.
	if ev.State == resetflow.StateError {
		h.renderState(w, r, ev.State, ev.Message)
		return
	}
	linkValid := ev.State == resetflow.StateValid

	err := h.Flow.Submit(ctx, sess, linkValid,
		r.FormValue("password"), r.FormValue("confirm"))
	if err != nil {
		msg := translateAuthError(err)
		if resetflow.IsValidationError(err) {
			msg = err.Error()
		}
		// queda en VALID con el error a la vista, reintentable
		h.renderState(w, r, resetflow.StateValid, msg)
		return
	}

	httpx.CountRecoveryCleared()
	sess.Flash(ctx, session.Notice{
		Kind:    "success",
		Title:   "Contraseña actualizada",
		Message: "Tu contraseña fue cambiada con éxito.",
	})
	h.renderState(w, r, resetflow.StateDone, "")
}

func (h *ResetHandler) renderState(w http.ResponseWriter, r *http.Request, st resetflow.State, msg string) {
	h.Render.Render(w, r, "reset_password", "Redefinir contraseña", map[string]any{
		"State":                string(st),
		"Message":              msg,
		"RedirectDelaySeconds": int(resetflow.DoneRedirectDelay.Seconds()),
	})
}
