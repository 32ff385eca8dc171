// Package apiclient is the Auth Gateway: an HTTP client for the external
// auth API that converts transport and HTTP outcomes into *domain.AuthError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
	"github.com/sunrise-apartments/portal/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the settings of the upstream API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client implements ports.AuthGateway.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	session  ports.SessionReader
	validate *validator.Validate
	log      zerolog.Logger
}

var _ ports.AuthGateway = (*Client)(nil)

// New returns a Client that reads the bearer credential from session.
func New(cfg Config, session ports.SessionReader, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		timeout:  timeout,
		http:     hc,
		session:  session,
		validate: validator.New(),
		log:      log,
	}
}

// BaseURL is the upstream API root, exposed for readiness checks.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping reports whether the upstream API answers at all. Any HTTP status
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return resp.Body.Close()
}

// call describes one upstream request.
type call struct {
	op     string
	method string
	path   string
	body   any
	authed bool
}

// reply is a completed HTTP exchange.
type reply struct {
	status int
	body   []byte
}

func (r reply) ok() bool { return r.status >= 200 && r.status < 300 }

// serverMessage extracts {message} or {error} from an error body.
func (r reply) serverMessage() string {
	var m messageResponse
	if err := json.Unmarshal(r.body, &m); err != nil {
		return ""
	}
	return m.text()
}

// do performs the request. It only fails when no response was received.
func (c *Client) do(ctx context.Context, cl call) (reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return reply{}, &domain.AuthError{Kind: domain.ErrRequestFailed, Err: fmt.Errorf("encode %s request: %w", cl.op, err)}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return reply{}, &domain.AuthError{Kind: domain.ErrRequestFailed, Err: fmt.Errorf("build %s request: %w", cl.op, err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.authed {
		if credential := c.session.Current().Credential; credential != "" {
			req.Header.Set("Authorization", "Bearer "+credential)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	if err != nil {
		return reply{}, &domain.AuthError{Kind: domain.ErrUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return reply{}, &domain.AuthError{Kind: domain.ErrUnreachable, Status: resp.StatusCode, Err: fmt.Errorf("read %s response: %w", cl.op, err)}
	}

	c.log.Debug().Str("op", cl.op).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("auth api call")
	return reply{status: resp.StatusCode, body: raw}, nil
}

// decode unmarshals a success body into dst and validates required fields.
func (c *Client) decode(r reply, dst any) error {
	if err := json.Unmarshal(r.body, dst); err != nil {
		return &domain.AuthError{Kind: domain.ErrMalformedResponse, Status: r.status, Err: err}
	}
	if err := c.validate.Struct(dst); err != nil {
		return &domain.AuthError{Kind: domain.ErrMalformedResponse, Status: r.status, Err: err}
	}
	return nil
}

// record counts the outcome of op and passes err through.
func record(op string, err error) error {
	metrics.GatewayRequestsTotal.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, domain.ErrCredentialExpired):
		return "credential_expired"
	case errors.Is(err, domain.ErrUnreachable):
		return "unreachable"
	default:
		return "request_failed"
	}
}
