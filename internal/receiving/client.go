package receiving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://api.devbr.site/preentrada"
	DefaultTimeout = 15 * time.Second
)

const (
	pathPending  = "/"
	pathReceipts = "/enrtada" // так называется эндпоинт на бэкенде
	pathCreate   = "/pre"
	pathConfirm  = "/confirmar"
)

// Client ходит в удалённый сервис пре-энтрад. Ретраев нет: каждый вызов делает ровно одну попытку.
type Client struct {
	http    *http.Client
	baseURL string
	log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (c *Client) FetchPending(ctx context.Context) ([]PreEntradaItem, int, error) {
	env, _, err := c.do(ctx, OpFetchPending, http.MethodGet, pathPending, nil)
	if err != nil {
		return nil, 0, err
	}
	items := normalizePending(env.Data)
	return items, resolveTotal(env.Total, len(items)), nil
}

func (c *Client) FetchReceipts(ctx context.Context) ([]EntradaNotaItem, int, error) {
	env, _, err := c.do(ctx, OpFetchReceipts, http.MethodGet, pathReceipts, nil)
	if err != nil {
		return nil, 0, err
	}
	items := normalizeReceipts(env.Data)
	return items, resolveTotal(env.Total, len(items)), nil
}

// Create регистрирует приёмку по пре-энтраде (POST /pre). Возвращает сырое тело ответа.
func (c *Client) Create(ctx context.Context, p EntradaPayload) (map[string]any, error) {
	_, body, err := c.do(ctx, OpCreate, http.MethodPost, pathCreate, p)
	if err != nil {
		return nil, err
	}
	return decodeObject(body), nil
}

// Confirm подтверждает приёмку (PUT /confirmar). Повторное подтверждение не проверяется.
func (c *Client) Confirm(ctx context.Context, p EntradaPayload) (map[string]any, error) {
	_, body, err := c.do(ctx, OpConfirm, http.MethodPut, pathConfirm, p)
	if err != nil {
		return nil, err
	}
	return decodeObject(body), nil
}

func (c *Client) do(ctx context.Context, op Op, method, path string, payload any) (env *envelope, body []byte, err error) {
	started := time.Now()
	reqID := uuid.NewString()
	defer func() { observe(op, started, err) }()

	var reqBody io.Reader
	if payload != nil {
		raw, mErr := json.Marshal(payload)
		if mErr != nil {
			return nil, nil, transportError(op, 0, nil, fmt.Errorf("encode request: %w", mErr))
		}
		reqBody = bytes.NewReader(raw)
	}

	req, rErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if rErr != nil {
		return nil, nil, transportError(op, 0, nil, rErr)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("preentrada request", "op", op, "method", method, "path", path, "request_id", reqID)

	resp, dErr := c.http.Do(req)
	if dErr != nil {
		c.log.Warn("preentrada request failed", "op", op, "request_id", reqID, "err", dErr)
		return nil, nil, transportError(op, 0, nil, dErr)
	}
	defer func() { _ = resp.Body.Close() }()

	body, rdErr := io.ReadAll(resp.Body)
	if rdErr != nil {
		return nil, nil, transportError(op, resp.StatusCode, nil, fmt.Errorf("read body: %w", rdErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("preentrada bad status", "op", op, "request_id", reqID, "status", resp.StatusCode)
		return nil, body, transportError(op, resp.StatusCode, body, statusError{code: resp.StatusCode})
	}

	env, decErr := decodeEnvelope(body)
	if decErr != nil {
		c.log.Warn("preentrada malformed response", "op", op, "request_id", reqID, "err", decErr)
		return nil, body, envelopeError(op, resp.StatusCode, nil)
	}
	if !env.OK {
		return nil, body, envelopeError(op, resp.StatusCode, env)
	}
	return env, body, nil
}
