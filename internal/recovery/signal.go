// Package recovery implementa la máquina de estados de password recovery:
// detección de señales en la URL y el storage persistido, el interceptor
// temprano que repara links mal ruteados por el backend, y el estado
// reconciliado "esta sesión está en un flujo de recovery".
package recovery

import (
	"net/url"
	"time"
)

// Source indica dónde se observó una señal.
type Source string

const (
	SourceURLHash        Source = "url_hash"
	SourceURLQuery       Source = "url_query"
	SourcePersistedStore Source = "persisted_store"
	SourceAuthEvent      Source = "auth_event"
)

// Kind clasifica la evidencia encontrada.
type Kind string

const (
	KindRecoveryToken     Kind = "recovery_token"
	KindAuthorizationCode Kind = "authorization_code"
	KindError             Kind = "error"
)

// Signal es un snapshot inmutable de evidencia de recovery en una ubicación.
type Signal struct {
	Source           Source
	Kind             Kind
	Type             string // valor del parámetro "type" (ej: "recovery")
	HasAccessToken   bool
	HasAuthCode      bool
	Code             string // valor del authorization code, si hay
	ErrorCode        string
	ErrorDescription string
	Timestamp        time.Time
}

// Params son los parámetros reconocidos de una ubicación de la URL
// (fragment o query string), parseados como lista key=value común.
type Params struct {
	Type             string
	AccessToken      string
	Code             string
	Error            string
	ErrorCode        string
	ErrorDescription string
}

func parseParams(raw string) Params {
	v, err := url.ParseQuery(raw)
	if err != nil {
		// parse parcial: url.ParseQuery retorna lo que pudo leer
		if v == nil {
			return Params{}
		}
	}
	return Params{
		Type:             v.Get("type"),
		AccessToken:      v.Get("access_token"),
		Code:             v.Get("code"),
		Error:            v.Get("error"),
		ErrorCode:        v.Get("error_code"),
		ErrorDescription: v.Get("error_description"),
	}
}

// ParseURL extrae los parámetros del fragment y de la query por separado.
// Los links de recovery llegan con los tokens en cualquiera de las dos
// posiciones; ambas se chequean de forma independiente.
func ParseURL(u *url.URL) (hash, query Params) {
	if u == nil {
		return Params{}, Params{}
	}
	return parseParams(u.Fragment), parseParams(u.RawQuery)
}

// Extract produce las señales presentes en la URL y el registro persistido.
// Función pura de sus inputs; sin efectos.
func Extract(u *url.URL, rec Record, now time.Time) []Signal {
	var out []Signal

	hash, query := ParseURL(u)
	for _, loc := range []struct {
		p   Params
		src Source
	}{
		{hash, SourceURLHash},
		{query, SourceURLQuery},
	} {
		if loc.p.Error != "" {
			out = append(out, Signal{
				Source:           loc.src,
				Kind:             KindError,
				ErrorCode:        loc.p.ErrorCode,
				ErrorDescription: loc.p.ErrorDescription,
				Timestamp:        now,
			})
			continue
		}
		if loc.p.Code != "" {
			out = append(out, Signal{
				Source:      loc.src,
				Kind:        KindAuthorizationCode,
				HasAuthCode: true,
				Code:        loc.p.Code,
				Type:        loc.p.Type,
				Timestamp:   now,
			})
		}
		if loc.p.Type != "" || loc.p.AccessToken != "" {
			out = append(out, Signal{
				Source:         loc.src,
				Kind:           KindRecoveryToken,
				Type:           loc.p.Type,
				HasAccessToken: loc.p.AccessToken != "",
				Timestamp:      now,
			})
		}
	}

	if rec.Active {
		out = append(out, Signal{
			Source:    SourcePersistedStore,
			Kind:      KindRecoveryToken,
			Type:      "recovery",
			Timestamp: rec.ActivatedAt,
		})
	}
	return out
}

// merged combina fragment y query: cualquiera de las dos puede traer la
// evidencia, con prioridad para el fragment (orden de llegada del backend).
func merged(hash, query Params) Params {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Params{
		Type:             pick(hash.Type, query.Type),
		AccessToken:      pick(hash.AccessToken, query.AccessToken),
		Code:             pick(hash.Code, query.Code),
		Error:            pick(hash.Error, query.Error),
		ErrorCode:        pick(hash.ErrorCode, query.ErrorCode),
		ErrorDescription: pick(hash.ErrorDescription, query.ErrorDescription),
	}
}

// hasRecoveryToken: type=recovery con access token presente, en cualquiera
// de las dos posiciones de la URL.
func hasRecoveryToken(hash, query Params) bool {
	m := merged(hash, query)
	return m.Type == "recovery" && m.AccessToken != ""
}

// HasRecoveryEvidence: token de recovery completo, o la marca literal
// type=recovery, en cualquiera de las dos posiciones de la URL.
func HasRecoveryEvidence(hash, query Params) bool {
	return hasRecoveryToken(hash, query) || mentionsRecovery(hash, query)
}

// mentionsRecovery detecta la marca literal type=recovery aunque no haya
// token (el backend a veces limpia el access_token antes del redirect).
func mentionsRecovery(hash, query Params) bool {
	return hash.Type == "recovery" || query.Type == "recovery"
}
