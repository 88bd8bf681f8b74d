// Package backend is the REST client for the Arogya backend.
package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gmsas95/arogya-cli/internal/config"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/gmsas95/arogya-cli/internal/metrics"
	"github.com/gmsas95/arogya-cli/internal/session"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the backend through a rate limiter and a circuit breaker.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	limiter *rate.Limiter
	session *session.Session
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClient creates a client for cfg.BaseURL
func NewClient(cfg config.BackendConfig, sess *session.Session, m *metrics.Metrics, logger *zap.Logger) *Client {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout()).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(300 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryIdempotent).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openFor := time.Duration(cfg.Breaker.OpenSeconds) * time.Second
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	if m == nil {
		m = metrics.Default()
	}

	c := &Client{
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		session: sess,
		metrics: m,
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Backend circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			c.metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		},
	})
	return c
}

// retryIdempotent retries server errors on reads only.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil {
		return false
	}
	return resp.Request.Method == http.MethodGet && resp.StatusCode() >= 500
}

// serverError marks 5xx so the breaker counts it as a failure.
type serverError struct{ status int }

func (e *serverError) Error() string { return fmt.Sprintf("server error: status %d", e.status) }

type call struct {
	endpoint string // metrics label
	method   string
	path     string
	auth     bool
	query    map[string]string
	body     any
}

// do performs rc and returns the raw response body for a 2xx answer.
func (c *Client) do(ctx context.Context, rc call) ([]byte, error) {
	start := time.Now()
	body, err := c.execute(ctx, rc)
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.GetKind(err))
		c.logger.Debug("Backend request failed",
			zap.String("endpoint", rc.endpoint),
			zap.String("method", rc.method),
			zap.String("path", rc.path),
			zap.Error(err))
	}
	c.metrics.RecordBackendRequest(rc.endpoint, outcome, time.Since(start))
	return body, err
}

func (c *Client) execute(ctx context.Context, rc call) ([]byte, error) {
	req := c.http.R().SetContext(ctx)

	if rc.auth {
		token, err := c.session.Bearer(ctx)
		if err != nil {
			return nil, err
		}
		req.SetAuthToken(token)
	}
	if len(rc.query) > 0 {
		q := make(map[string]string, len(rc.query))
		for k, v := range rc.query {
			if v != "" {
				q[k] = v
			}
		}
		req.SetQueryParams(q)
	}
	if rc.body != nil {
		req.SetBody(rc.body)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.From(apperrors.ErrTransport, err)
	}

	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		resp, err := req.Execute(rc.method, rc.path)
		if err != nil {
			return resp, err
		}
		if resp.StatusCode() >= 500 {
			return resp, &serverError{status: resp.StatusCode()}
		}
		return resp, nil
	})

	switch {
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, apperrors.From(apperrors.ErrBreakerOpen, err)
	case err != nil:
		return nil, apperrors.From(apperrors.ErrTransport, err)
	}

	return resp.Body(), statusError(resp.StatusCode(), resp.Body())
}

func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.From(apperrors.ErrUnauthorized, fmt.Errorf("status %d", status))
	case status == http.StatusNotFound:
		return apperrors.From(apperrors.ErrNotFound, fmt.Errorf("status %d", status))
	default:
		return apperrors.New(apperrors.ErrRejected.Code, rejectionMessage(body), fmt.Errorf("status %d", status))
	}
}

// rejectionMessage pulls message or error out of a JSON error body.
func rejectionMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, s := range []string{payload.Message, payload.Error, payload.Detail} {
			if s != "" {
				return s
			}
		}
	}
	return apperrors.ErrRejected.Message
}

// decode unmarshals a JSON body, mapping failures to shape errors.
func decode(body []byte, what string, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrShape.Code, what)
	}
	return nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}
