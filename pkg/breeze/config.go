package breeze

import "time"

// Config represents the client configuration consumed by breezeclient.New.
//
// Per-request timeouts should generally be controlled via the context passed
// to client methods. RetryMax defaults to zero, so each operation makes a
// single transport attempt unless retries are asked for explicitly.
type Config struct {
	// Required fields
	// BaseURL: root of the backend (e.g., "https://abc123.execute-api.us-east-1.amazonaws.com").
	// breezeclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	BaseURL string
	// Path: resource path appended to BaseURL (e.g., "items").
	Path string

	// Headers
	// Headers: additional headers merged over the required JSON headers.
	Headers Headers
	// StaticHeaders: when true, Headers is sent verbatim and per-call tokens
	// are ignored.
	StaticHeaders bool

	// Transport
	// HTTPTimeout: overall timeout for one HTTP exchange. Zero selects a default.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport-level retries (>=500, 429 and
	// connection errors). Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// CachePolicy: cache directive attached to every request. The transport
	// only applies it when the request carries no Cache-Control header, so
	// in the default header mode, whose required headers include
	// cache-control: no-cache, it takes effect only with WithStaticHeaders.
	CachePolicy CachePolicy
	// Codec: body codec name, "json" (default) or "sonic".
	Codec string

	// Observability
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and the
	// logging observer.
	Logger Logger
	// Observer: optional observer notified alongside the logging observer.
	Observer Observer
}
