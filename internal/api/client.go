// Package api is the typed HTTP client for the mahjong backend. It owns the
// request envelope, failure normalization, and the retry policy; the typed
// endpoint groups (rooms, games, chat) sit on top of it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer credential and supports evicting it when
// the backend answers 401.
type TokenSource interface {
	Token() string
	ClearToken() error
}

// Options configures a Client. All collaborators are injected; the client
// holds no ambient globals.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Tokens   TokenSource
	Notifier Notifier
	Logger   zerolog.Logger
	Retry    RetryConfig

	// Loading is invoked around calls that do not suppress the loading
	// indicator. Optional.
	Loading func(active bool)
}

// Client is the transport client. Construct once and share.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	notifier Notifier
	log      zerolog.Logger
	retrier  *Retrier
	loading  func(bool)
}

// NewClient builds a Client from Options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:9980/api/v1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	return &Client{
		baseURL:  opts.BaseURL,
		http:     &http.Client{Timeout: opts.Timeout},
		tokens:   opts.Tokens,
		notifier: opts.Notifier,
		log:      opts.Logger,
		retrier:  NewRetrier(opts.Retry),
		loading:  opts.Loading,
	}
}

type callSettings struct {
	quiet          bool
	idempotencyKey string
	query          url.Values
}

type callOpt func(*callSettings)

// withQuiet suppresses the loading indicator for background calls.
func withQuiet() callOpt {
	return func(s *callSettings) { s.quiet = true }
}

// withQuery attaches query parameters.
func withQuery(q url.Values) callOpt {
	return func(s *callSettings) { s.query = q }
}

// withIdempotencyKey marks a state-changing call as safe to retry; the key
// lets the backend deduplicate a request whose first delivery succeeded.
func withIdempotencyKey(key string) callOpt {
	return func(s *callSettings) { s.idempotencyKey = key }
}

// do performs one request/response cycle and decodes the envelope's data
// field into out (when out is non-nil). Every failure is normalized into an
// *APIError and surfaced through the notifier before being returned.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...callOpt) error {
	var settings callSettings
	for _, opt := range opts {
		opt(&settings)
	}

	if c.loading != nil && !settings.quiet {
		c.loading(true)
		defer c.loading(false)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.fail(&APIError{Message: "request failed", Err: err})
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(settings.query) > 0 {
		u += "?" + settings.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return c.fail(&APIError{Message: "request failed", Err: err})
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if settings.idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", settings.idempotencyKey)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Msg("api request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(c.transportError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&APIError{Status: resp.StatusCode, Message: "network connection failed", Err: err})
	}

	c.log.Debug().
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api response")

	var env Envelope
	_ = json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		if resp.StatusCode == 401 && c.tokens != nil {
			_ = c.tokens.ClearToken()
		}
		return c.fail(&APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: statusMessage(resp.StatusCode, env.Message),
		})
	}

	if env.Code != 200 {
		return c.fail(&APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: orDefault(env.Message, "request failed"),
		})
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return c.fail(&APIError{Status: resp.StatusCode, Message: "request failed", Err: err})
		}
	}
	return nil
}

// transportError classifies a failure where no response arrived at all.
func (c *Client) transportError(err error) *APIError {
	var nerr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &nerr) && nerr.Timeout())
	if timedOut {
		return &APIError{Timeout: true, Message: "request timed out, check your network", Err: err}
	}
	return &APIError{Message: "network connection failed", Err: err}
}

// fail logs and surfaces the failure, then returns it.
func (c *Client) fail(apiErr *APIError) error {
	c.log.Warn().
		Int("status", apiErr.Status).
		Int("code", apiErr.Code).
		Err(apiErr.Err).
		Msg(apiErr.Message)
	c.notifier.Notify(apiErr.Message)
	return apiErr
}

// get wraps a read call with the automatic retry policy.
func (c *Client) get(ctx context.Context, path string, out any, opts ...callOpt) error {
	return c.retrier.Do(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, nil, out, opts...)
	})
}

// post wraps a state-changing call. Retries are only safe because every such
// call carries a fresh idempotency key the backend can deduplicate on.
func (c *Client) post(ctx context.Context, path string, body, out any, opts ...callOpt) error {
	opts = append(opts, withIdempotencyKey(uuid.NewString()))
	return c.retrier.Do(ctx, func() error {
		return c.do(ctx, http.MethodPost, path, body, out, opts...)
	})
}
