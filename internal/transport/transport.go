// Package transport 定义标注仓库消费的传输契约及其 HTTP 实现
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashwinyue/next-label/internal/errs"
)

// Transport 传输契约
// Do 返回响应负载（已去除外层信封），204 时返回 nil。
// 404 返回 errs.ErrNotFound，400 返回 errs.ErrInvalidArgument，409 返回 errs.ErrConflict，
// 其余失败返回 *errs.TransportError。
type Transport interface {
	Do(ctx context.Context, method, path string, body any) ([]byte, error)
}

// envelope 服务端统一响应
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HTTPTransport 基于 net/http 的传输实现
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// Option HTTPTransport 选项
type Option func(*HTTPTransport)

// WithToken 设置 Bearer Token
func WithToken(token string) Option {
	return func(t *HTTPTransport) { t.token = token }
}

// WithHTTPClient 设置 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.client = c }
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(t *HTTPTransport) { t.logger = l }
}

// NewHTTPTransport 创建 HTTP 传输，baseURL 形如 http://host:8080/api/v1
func NewHTTPTransport(baseURL string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do 发送请求；不做重试
func (t *HTTPTransport) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, &errs.TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &errs.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}
	t.logger.Debug("transport request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency", time.Since(start))

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	var env envelope
	if len(raw) > 0 {
		// 错误响应可能来自网关或路由层，不是 JSON 时按状态码归类
		if err := json.Unmarshal(raw, &env); err != nil {
			if ok {
				return nil, &errs.TransportError{Method: method, Path: path, Status: resp.StatusCode,
					Err: fmt.Errorf("malformed response envelope: %w", err)}
			}
			env = envelope{}
		}
	}
	if ok {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, nil
		}
		return env.Data, nil
	}

	msg := env.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, errs.NotFound("%s %s: %s", method, path, msg)
	case http.StatusBadRequest:
		return nil, errs.InvalidArgument("%s %s: %s", method, path, msg)
	case http.StatusConflict:
		return nil, errs.Conflict("%s %s: %s", method, path, msg)
	default:
		return nil, &errs.TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: errors.New(msg)}
	}
}
