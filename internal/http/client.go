// Package http builds the transport breeze clients run on: a retryablehttp
// client wrapped in round trippers that apply the cache policy and the
// user agent.
package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
)

type options struct {
	logger       breeze.Logger
	debug        bool
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	base         http.RoundTripper
}

// Option configures the HTTP client.
type Option func(*options)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger breeze.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebug enables retry diagnostics on the configured logger.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithUserAgent sets the User-Agent header for requests that carry none.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithTimeout sets the timeout of one HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetryConfig enables transport retries for connection errors, 429 and
// 5xx responses. maxRetries of zero means a single attempt.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.retryMax = maxRetries
		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// WithBaseTransport replaces the pooled default round tripper.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(o *options) {
		o.base = base
	}
}

// NewClient creates an *http.Client suitable as a breeze.Doer.
//
// When retries are exhausted the last response is returned as is, so a final
// 5xx still surfaces to the caller as *breeze.HTTPError.
func NewClient(opts ...Option) *http.Client {
	o := &options{
		userAgent:    constants.DefaultUserAgent,
		timeout:      constants.DefaultHTTPTimeout,
		retryMax:     constants.DefaultRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(o)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = o.retryMax
	retryClient.RetryWaitMin = o.retryWaitMin
	retryClient.RetryWaitMax = o.retryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if o.debug && o.logger != nil {
		retryClient.Logger = &leveledLogger{logger: o.logger}
	}

	base := o.base
	if base == nil {
		base = retryClient.HTTPClient.Transport
	}

	retryClient.HTTPClient.Timeout = o.timeout
	retryClient.HTTPClient.Transport = &CachePolicyTransport{
		Base: &userAgentTransport{base: base, userAgent: o.userAgent},
	}

	return retryClient.StandardClient()
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)

	return t.base.RoundTrip(clone)
}

// leveledLogger adapts breeze.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger breeze.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFrom(keysAndValues))
}

func fieldsFrom(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	if len(keysAndValues)%2 == 1 {
		fields["extra"] = keysAndValues[len(keysAndValues)-1]
	}

	return fields
}
