package breeze

import (
	"fmt"
	"net/http"
	"net/url"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Environment is the immutable configuration shared by every request a client
// builds. It is safe for concurrent use once constructed.
type Environment struct {
	transport   Doer
	baseURL     *url.URL
	cachePolicy CachePolicy
	observer    Observer
	encoder     Encoder
	decoder     Decoder
}

// EnvironmentOption configures an Environment.
type EnvironmentOption func(*Environment)

// WithCachePolicy sets the cache policy carried by every request. A
// Cache-Control header already on the request takes precedence over it.
func WithCachePolicy(policy CachePolicy) EnvironmentOption {
	return func(e *Environment) {
		e.cachePolicy = policy
	}
}

// WithObserver sets the observer notified of requests and responses.
func WithObserver(observer Observer) EnvironmentOption {
	return func(e *Environment) {
		e.observer = observer
	}
}

// WithEncoder replaces the default JSON encoder.
func WithEncoder(encoder Encoder) EnvironmentOption {
	return func(e *Environment) {
		if encoder != nil {
			e.encoder = encoder
		}
	}
}

// WithDecoder replaces the default JSON decoder.
func WithDecoder(decoder Decoder) EnvironmentOption {
	return func(e *Environment) {
		if decoder != nil {
			e.decoder = decoder
		}
	}
}

// WithCodec replaces both the encoder and the decoder.
func WithCodec(codec Codec) EnvironmentOption {
	return func(e *Environment) {
		if codec != nil {
			e.encoder = codec
			e.decoder = codec
		}
	}
}

// NewEnvironment creates an Environment. baseURL must be absolute.
func NewEnvironment(transport Doer, baseURL string, opts ...EnvironmentOption) (*Environment, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidURL, baseURL, err)
	}

	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, baseURL)
	}

	env := &Environment{
		transport:   transport,
		baseURL:     parsed,
		cachePolicy: UseProtocolCachePolicy,
		encoder:     JSONCodec{},
		decoder:     JSONCodec{},
	}

	for _, opt := range opts {
		opt(env)
	}

	return env, nil
}

// BaseURL returns a copy of the base URL.
func (e *Environment) BaseURL() *url.URL {
	u := *e.baseURL

	return &u
}

// CachePolicy returns the cache policy applied to built requests.
func (e *Environment) CachePolicy() CachePolicy {
	return e.cachePolicy
}

// Transport returns the transport requests are executed on.
func (e *Environment) Transport() Doer {
	return e.transport
}

// Observer returns the configured observer, or nil.
func (e *Environment) Observer() Observer {
	return e.observer
}

// Encoder returns the body encoder.
func (e *Environment) Encoder() Encoder {
	return e.encoder
}

// Decoder returns the body decoder.
func (e *Environment) Decoder() Decoder {
	return e.decoder
}
