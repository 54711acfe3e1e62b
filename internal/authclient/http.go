package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/lumify/internal/observability/logger"
)

// HTTPClient implementa Client contra la API REST del backend hosted.
type HTTPClient struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client
	Bus     *Bus
}

// NewHTTP crea el cliente con timeout y bus de eventos propios.
func NewHTTP(baseURL, anonKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: timeout},
		Bus:     NewBus(),
	}
}

func (c *HTTPClient) SubscribeAuthEvents(h Handler) func() {
	return c.Bus.Subscribe(h)
}

func (c *HTTPClient) FetchCurrentSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	var u User
	status, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, &u)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
			// token vencido o revocado: no hay sesión, no es un error
			return nil, nil
		}
		return nil, err
	}
	if status != http.StatusOK || u.ID == "" {
		return nil, nil
	}
	return &Session{AccessToken: accessToken, TokenType: "bearer", User: &u}, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if _, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, "", &s); err != nil {
		return nil, err
	}
	c.publish(ctx, EventSignedIn, &s)
	return &s, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	if len(opts.Metadata) > 0 {
		body["data"] = opts.Metadata
	}
	var s Session
	if _, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", body, "", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", struct{}{}, accessToken, nil)
	if err != nil {
		return err
	}
	c.publish(ctx, EventSignedOut, nil)
	return nil
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email, redirectTarget string) error {
	path := "/auth/v1/recover"
	if redirectTarget != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTarget)
	}
	_, err := c.do(ctx, http.MethodPost, path, map[string]string{"email": email}, "", nil)
	return err
}

func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	body := map[string]string{"auth_code": code}
	var s Session
	if _, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=pkce", body, "", &s); err != nil {
		return nil, err
	}
	c.publish(ctx, EventSignedIn, &s)
	return &s, nil
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	body := map[string]string{"password": newPassword}
	_, err := c.do(ctx, http.MethodPut, "/auth/v1/user", body, accessToken, nil)
	return err
}

// PublishRecovery emite el evento PASSWORD_RECOVERY para la sesión dada.
// Lo dispara el flujo de reset al confirmar un link de recovery.
func (c *HTTPClient) PublishRecovery(ctx context.Context, s *Session) {
	c.publish(ctx, EventPasswordRecovery, s)
}

func (c *HTTPClient) publish(ctx context.Context, kind EventKind, s *Session) {
	if c.Bus == nil {
		return
	}
	c.Bus.Publish(Event{
		Kind:       kind,
		SessionID:  SessionIDFrom(ctx),
		CurrentURL: RequestURLFrom(ctx),
		Session:    s,
	})
}

// do ejecuta el request y decodifica la respuesta en out (si no es nil).
// Errores de transporte se mapean a ErrBackendUnavailable; errores del
// backend a *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, bearer string, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, err
	}
	req.Header.Set("apikey", c.AnonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else if c.AnonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.AnonKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.From(ctx).Warn("auth backend unreachable",
			logger.Op(method+" "+path), logger.Err(err))
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 400 {
		return resp.StatusCode, parseAPIError(resp.StatusCode, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("authclient: respuesta inválida: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// parseAPIError tolera las dos formas de error que devuelve el backend:
// {"error","error_description"} y {"msg"} / {"message"}.
func parseAPIError(status int, raw []byte) *APIError {
	var e struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
		Msg         string `json:"msg"`
		Message     string `json:"message"`
	}
	_ = json.Unmarshal(raw, &e)

	out := &APIError{Code: e.Error, Description: e.Description, Status: status}
	if out.Code == "" {
		out.Code = "request_failed"
	}
	if out.Description == "" {
		if e.Msg != "" {
			out.Description = e.Msg
		} else if e.Message != "" {
			out.Description = e.Message
		}
	}
	return out
}
