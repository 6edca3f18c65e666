// Package client is the Go SDK for the back-office API. Besides the
// plain REST wrappers it carries the list/dialog state the admin screens
// are built from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// APIPrefix is the versioned prefix of every authenticated route.
const APIPrefix = "/api/v1"

// FallbackMessage is used when an error response carries no detail.
const FallbackMessage = "Request failed"

// RequestError is the single failure class returned by the client.
// Message comes from the response body's detail when there is one.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status of a RequestError, or zero.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds requests whose context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "talentdesk-client",
			MaxIdleConnDuration: time.Minute,
		},
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after the auth API refreshes it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// call performs an API request. Successful responses are unwrapped from
// the {"success", "data"} envelope into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, raw, err := c.raw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &RequestError{Status: status, Message: errorMessage(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &RequestError{Status: status, Message: "Invalid response body", Err: err}
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RequestError{Status: status, Message: "Invalid response body", Err: err}
	}
	return nil
}

// raw sends one request and returns the status and a copy of the body.
func (c *Client) raw(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, &RequestError{Message: FallbackMessage, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &RequestError{Message: "Invalid request body", Err: err}
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return 0, nil, &RequestError{Message: FallbackMessage, Err: err}
	}
	return resp.StatusCode(), bytes.Clone(resp.Body()), nil
}

// errorMessage reads detail as a string or as a list of {msg} objects.
func errorMessage(raw []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return FallbackMessage
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		if s != "" {
			return s
		}
		return FallbackMessage
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
		return list[0].Msg
	}
	return FallbackMessage
}
