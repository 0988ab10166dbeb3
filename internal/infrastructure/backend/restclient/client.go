// Package restclient talks to the wallet backend's JSON API over fasthttp.
package restclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures a Client.
type Options struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	RateLimit       float64 // requests per second, 0 disables limiting
	Burst           int
	MaxConnsPerHost int
}

// Client implements the backend read ports and port.WalletAdminBackend.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Client.
func New(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{
		client: &fasthttp.Client{
			Name:                "wallet-dashboard",
			MaxConnsPerHost:     opts.MaxConnsPerHost,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		timeout: opts.Timeout,
		limiter: limiter,
		logger:  logger.Named("BackendClient"),
	}
}

// BackendError describes a failed backend call. It unwraps to entity.ErrNotFound for 404,
// entity.ErrBackendUnavailable for transport failures and 5xx, or a *entity.ValidationError
// for rejected payloads.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// envelope is the {success, data, message} wrapper some endpoints answer with.
type envelope struct {
	Success *bool               `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Message string              `json:"message"`
}

// do sends one request and returns the response body for 2xx answers.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	start := time.Now()
	body, err := c.roundTrip(ctx, op, method, path, query, payload)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ObserveSince(metrics.BackendRequestDuration.WithLabelValues(op, result), start)
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &BackendError{Op: op, Err: fmt.Errorf("%w: %v", entity.ErrBackendUnavailable, err)}
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &BackendError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(raw)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Backend request", zap.String("op", op), zap.String("method", method), zap.String("url", requestURL))

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Warn("Backend request failed", zap.String("op", op), zap.String("url", requestURL), zap.Error(err))
		return nil, &BackendError{Op: op, Err: fmt.Errorf("%w: %v", entity.ErrBackendUnavailable, err)}
	}

	status := resp.StatusCode()
	rawBody := append([]byte(nil), resp.Body()...)
	if status >= 200 && status < 300 {
		return rawBody, nil
	}

	msg := errorMessage(rawBody)
	c.logger.Warn("Backend answered with error status",
		zap.String("op", op),
		zap.String("url", requestURL),
		zap.Int("statusCode", status),
		zap.String("message", msg))

	var cause error
	switch {
	case status == fasthttp.StatusNotFound:
		cause = fmt.Errorf("%w: %s", entity.ErrNotFound, msg)
	case status == fasthttp.StatusBadRequest || status == fasthttp.StatusUnprocessableEntity || status == fasthttp.StatusConflict:
		cause = entity.NewValidationError("request", msg)
	case status == fasthttp.StatusForbidden:
		cause = fmt.Errorf("%w: %s", entity.ErrForbidden, msg)
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		cause = fmt.Errorf("%w: %s", entity.ErrBackendUnavailable, msg)
	default:
		cause = errors.New(msg)
	}
	return nil, &BackendError{Op: op, StatusCode: status, Err: cause}
}

func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}

// decodeData unmarshals either the data member of an envelope or the raw body into out.
func decodeData(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			return entity.NewValidationError("request", env.Message)
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(body, out)
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	body, err := c.do(ctx, op, fasthttp.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := decodeData(body, out); err != nil {
		return &BackendError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// create posts payload and extracts the new record id from idKey.
func (c *Client) create(ctx context.Context, op, path, idKey string, payload any) (int64, error) {
	body, err := c.do(ctx, op, fasthttp.MethodPost, path, nil, payload)
	if err != nil {
		return 0, err
	}
	var fields map[string]any
	if err := decodeData(body, &fields); err != nil {
		return 0, &BackendError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	switch v := fields[idKey].(type) {
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, &BackendError{Op: op, Err: fmt.Errorf("parse %s: %w", idKey, err)}
		}
		return id, nil
	default:
		return 0, &BackendError{Op: op, Err: fmt.Errorf("response carries no %s", idKey)}
	}
}
