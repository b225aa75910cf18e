package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Session 由调用方注入：提供当前的访问令牌，以及在 401 时刷新令牌的回调
type Session interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	logger     *slog.Logger

	admin   *AdminService
	company *CompanyService
	invites *InviteService
	periods *PeriodService
	auth    *AuthService
}

type Option func(*Client)

func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.admin = &AdminService{c: c}
	c.company = &CompanyService{c: c}
	c.invites = &InviteService{c: c}
	c.periods = &PeriodService{c: c}
	c.auth = &AuthService{c: c}
	return c
}

func (c *Client) Admin() *AdminService     { return c.admin }
func (c *Client) Company() *CompanyService { return c.company }
func (c *Client) Invites() *InviteService  { return c.invites }
func (c *Client) Periods() *PeriodService  { return c.periods }
func (c *Client) Auth() *AuthService       { return c.auth }

func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	cookies []*http.Cookie
}

// send 发出请求并返回 2xx 响应，调用方负责关闭 Body；
// 带会话时遇到 401 会刷新一次令牌并重放请求
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", req.method, req.path, err)
		}
	}

	token := ""
	if c.session != nil {
		var err error
		token, err = c.session.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
	}

	resp, err := c.attempt(ctx, req, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.session != nil && token != "" {
		drain(resp)
		token, err = c.session.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		resp, err = c.attempt(ctx, req, payload, token)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, newError(req.method, req.path, resp)
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, req request, payload []byte, token string) (*http.Response, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for _, ck := range req.cookies {
		httpReq.AddCookie(ck)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", req.method, "path", req.path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	c.logger.Debug("request done", "method", req.method, "path", req.path, "status", resp.StatusCode, "request_id", requestID, "duration", time.Since(start))
	return resp, nil
}

// do 发出请求并把响应体解码到 out，out 为 nil 时丢弃响应体
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, req request) ([]byte, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", req.method, req.path, err)
	}
	return data, nil
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, request{method: method, path: path, body: body}, &out)
	return out, err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
