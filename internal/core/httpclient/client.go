package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"acp-checkout/internal/core/logger"

	"go.uber.org/zap"
)

// UserAgent is sent on every outgoing request that does not set one.
const UserAgent = "acp-checkout/1.0"

// LoggingRoundTripper logs every outgoing request.
// Query strings are left out of the logs since they may carry credentials.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	target := req.URL.Host + req.URL.Path

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", target),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Duration("duration", duration),
			zap.Bool("timeout", IsTimeout(err)),
			zap.Error(err),
		)
		return nil, err
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Get().Warn("HTTP Request Completed With Server Error", fields...)
	} else {
		logger.Get().Debug("HTTP Request Completed", fields...)
	}

	return resp, nil
}

// BasicAuthRoundTripper adds HTTP basic credentials and a user agent to each request.
type BasicAuthRoundTripper struct {
	Username string
	Password string
	Proxied  http.RoundTripper
}

// RoundTrip clones the request, decorates it and forwards it.
func (b *BasicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(b.Username, b.Password)
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", UserAgent)
	}
	return b.Proxied.RoundTrip(r)
}

// Option customizes a client built by NewClient.
type Option func(*http.Client)

// WithBasicAuth authenticates every request with the given credentials.
func WithBasicAuth(username, password string) Option {
	return func(c *http.Client) {
		c.Transport = &BasicAuthRoundTripper{
			Username: username,
			Password: password,
			Proxied:  c.Transport,
		}
	}
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	c := &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsTimeout reports whether err was caused by a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
