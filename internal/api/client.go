// Package api is the REST client for the inventory service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock-cli/internal/logger"
	"stock-cli/internal/model"
)

// CredentialProvider hands out the bearer token for each request. It is read on
// every call, so a new login takes effect without rebuilding the client.
type CredentialProvider interface {
	Token() (string, error)
}

// StaticToken is a fixed credential, mostly for tests and scripts.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

type Options struct {
	BaseURL     string
	Credentials CredentialProvider
	HTTPClient  *http.Client
	Logger      logger.Logger
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

type Client struct {
	baseURL string
	creds   CredentialProvider
	http    *http.Client
	log     logger.Logger
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: missing base URL")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("api: base URL: %w", err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{baseURL: base, creds: opts.Credentials, http: hc, log: log}, nil
}

func (c *Client) Items() *Items { return &Items{c: c} }
func (c *Client) Lots() *Lots   { return &Lots{c: c} }

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token. Only a 200 counts as success.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		body:   loginRequest{Username: username, Password: password},
		accept: exactly(http.StatusOK),
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", &StatusError{Method: http.MethodPost, Path: "/login", Code: http.StatusOK, Message: "empty token"}
	}
	return out.Token, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	accept func(int) bool
	out    any
}

func exactly(code int) func(int) bool {
	return func(got int) bool { return got == code }
}

func success(code int) bool { return code >= 200 && code < 300 }

type errorBody struct {
	Erro    string `json:"erro"`
	Error   string `json:"error"`
	Message string `json:"mensagem"`
}

func (c *Client) do(ctx context.Context, r request) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return &TransportError{Method: r.method, Path: r.path, Err: err}
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if r.auth {
		if c.creds == nil {
			return ErrNoCredentials
		}
		tok, err := c.creds.Token()
		if err != nil {
			return fmt.Errorf("api: read credentials: %w", err)
		}
		if strings.TrimSpace(tok) != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "api request failed", "method", r.method, "path", r.path, "error", err.Error())
		return &TransportError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	accept := r.accept
	if accept == nil {
		accept = success
	}
	if !accept(resp.StatusCode) {
		se := &StatusError{Method: r.method, Path: r.path, Code: resp.StatusCode}
		var eb errorBody
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); rerr == nil && json.Unmarshal(b, &eb) == nil {
			se.Message = firstNonEmpty(eb.Erro, eb.Error, eb.Message)
		}
		c.log.WarnContext(ctx, "api request rejected", "method", r.method, "path", r.path, "status", resp.StatusCode, "message", se.Message)
		return se
	}

	if r.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return &TransportError{Method: r.method, Path: r.path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// Items is the /items resource.
type Items struct{ c *Client }

// List returns every item, optionally filtered by a name substring.
func (r *Items) List(ctx context.Context, name string) ([]model.Item, error) {
	q := url.Values{}
	if s := strings.TrimSpace(name); s != "" {
		q.Set("name", s)
	}
	out := []model.Item{}
	if err := r.c.do(ctx, request{method: http.MethodGet, path: "/items", query: q, auth: true, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Items) Create(ctx context.Context, p model.ItemPayload) error {
	return r.c.do(ctx, request{method: http.MethodPost, path: "/items", body: p, auth: true})
}

func (r *Items) Update(ctx context.Context, id int64, p model.ItemPayload) error {
	return r.c.do(ctx, request{method: http.MethodPut, path: idPath("/items", id), body: p, auth: true})
}

// Delete removes an item. Only a 200 counts as success.
func (r *Items) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, request{method: http.MethodDelete, path: idPath("/items", id), auth: true, accept: exactly(http.StatusOK)})
}

// Lots is the /lots resource.
type Lots struct{ c *Client }

// ListForItem returns the lots of one item.
func (r *Lots) ListForItem(ctx context.Context, itemID int64) ([]model.Lot, error) {
	out := []model.Lot{}
	if err := r.c.do(ctx, request{method: http.MethodGet, path: idPath("/lots/item", itemID), auth: true, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Lots) Create(ctx context.Context, p model.LotCreatePayload) error {
	return r.c.do(ctx, request{method: http.MethodPost, path: "/lots", body: p, auth: true})
}

func (r *Lots) Update(ctx context.Context, id int64, p model.LotUpdatePayload) error {
	return r.c.do(ctx, request{method: http.MethodPut, path: idPath("/lots", id), body: p, auth: true})
}

// Delete removes a lot. Only a 200 counts as success.
func (r *Lots) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, request{method: http.MethodDelete, path: idPath("/lots", id), auth: true, accept: exactly(http.StatusOK)})
}
