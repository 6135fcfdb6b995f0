// Package apiclient - тонкий JSON-клиент к REST backend портала.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"equipment-portal/pkg/contextkeys"
	"equipment-portal/pkg/metrics"
	"equipment-portal/pkg/types"
)

type tokenKey struct{}

// WithToken кладёт bearer-токен пользователя в контекст исходящих запросов.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope покрывает оба формата backend: {success, data, message, pagination} и "голое" тело.
type envelope struct {
	Success    *bool               `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Message    string              `json:"message"`
	Pagination *upstreamPagination `json:"pagination"`
}

type upstreamPagination struct {
	Total      uint64 `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

func (p *upstreamPagination) toPagination() *types.Pagination {
	if p == nil {
		return nil
	}
	totalPages := p.TotalPages
	if totalPages == 0 && p.Limit > 0 {
		totalPages = int((p.Total + uint64(p.Limit) - 1) / uint64(p.Limit))
	}
	return &types.Pagination{TotalCount: p.Total, Page: p.Page, Limit: p.Limit, TotalPages: totalPages}
}

// Do выполняет запрос и раскладывает data в out. Возвращает пагинацию, если backend её прислал.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*types.Pagination, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации тела запроса %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID, _ := ctx.Value(contextkeys.RequestIDKey).(string); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	resource := resourceLabel(path)
	if err != nil {
		c.metrics.ObserveUpstream(resource, method, "error", time.Since(started).Seconds())
		return nil, fmt.Errorf("ошибка выполнения запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(resource, method, strconv.Itoa(resp.StatusCode), time.Since(started).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp.StatusCode, raw)
		c.logger.Warn("backend вернул ошибку",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var env envelope
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("ошибка парсинга JSON для %s %s: %w", method, path, err)
		}
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	payload := raw
	if len(env.Data) > 0 {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return nil, fmt.Errorf("ошибка разбора данных для %s %s: %w", method, path, err)
	}

	c.logger.Debug("запрос к backend выполнен",
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("took", time.Since(started)),
	)
	return env.Pagination.toPagination(), nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) (*types.Pagination, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.Do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.Do(ctx, http.MethodPut, path, nil, body, out)
	return err
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.Do(ctx, http.MethodPatch, path, nil, body, out)
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// resourceLabel - первый сегмент пути, чтобы метрики не разрастались по id.
func resourceLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}

// Path склеивает сегменты пути, экранируя каждый.
func Path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(strings.Trim(s, "/")))
	}
	return b.String()
}
