package finance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/lumify/internal/observability/logger"
)

// Client lee movimientos de la API de datos del backend.
type Client struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client
}

func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchEntries trae los movimientos del usuario autenticado.
// Best-effort: ante cualquier falla retorna lista vacía y loguea; el
// dashboard renderiza con totales en cero antes que romper la navegación.
func (c *Client) FetchEntries(ctx context.Context, accessToken string) []Entry {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/rest/v1/entries?select=amount,kind", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.From(ctx).Warn("data backend unreachable", logger.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.From(ctx).Warn("data backend error",
			logger.Status(resp.StatusCode))
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.From(ctx).Warn("data backend invalid payload", logger.Err(err))
		return nil
	}
	return entries
}
