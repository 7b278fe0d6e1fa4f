package breezeclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	breezehttp "github.com/fivetwenty-io/breeze-client/internal/http"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/fivetwenty-io/breeze-client/pkg/codec"
)

// New creates a typed client for the resource described by config.
func New[T breeze.KeyedItem](config *breeze.Config, opts ...breeze.ClientOption) (*breeze.Client[T], error) {
	env, err := NewEnvironment(config)
	if err != nil {
		return nil, err
	}

	clientOpts := make([]breeze.ClientOption, 0, len(opts)+1)
	if config.StaticHeaders {
		clientOpts = append(clientOpts, breeze.WithStaticHeaders(config.Headers))
	} else if len(config.Headers) > 0 {
		clientOpts = append(clientOpts, breeze.WithAdditionalHeaders(config.Headers))
	}

	clientOpts = append(clientOpts, opts...)

	client, err := breeze.NewClient[T](env, config.Path, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NewWithEndpoint creates a client with default settings for baseURL and path.
func NewWithEndpoint[T breeze.KeyedItem](baseURL, path string) (*breeze.Client[T], error) {
	return New[T](&breeze.Config{BaseURL: baseURL, Path: path})
}

// NewEnvironment builds the transport and environment described by config.
// The base URL is normalized in place.
func NewEnvironment(config *breeze.Config) (*breeze.Environment, error) {
	if config == nil {
		return nil, breeze.ErrConfigRequired
	}

	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, breeze.ErrBaseURLRequired
	}

	config.BaseURL = NormalizeBaseURL(config.BaseURL)

	bodyCodec, err := codec.ByName(config.Codec)
	if err != nil {
		return nil, fmt.Errorf("selecting codec: %w", err)
	}

	httpOpts := []breezehttp.Option{
		breezehttp.WithTimeout(config.HTTPTimeout),
		breezehttp.WithUserAgent(config.UserAgent),
		breezehttp.WithLogger(config.Logger),
		breezehttp.WithDebug(config.Debug),
	}

	if config.RetryMax > 0 {
		waitMin, waitMax := config.RetryWaitMin, config.RetryWaitMax
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		if waitMax < waitMin {
			waitMax = max(constants.DefaultRetryWaitMax, waitMin)
		}

		httpOpts = append(httpOpts, breezehttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	var observers []breeze.Observer
	if config.Debug && config.Logger != nil {
		observers = append(observers, breeze.NewLoggingObserver(config.Logger))
	}

	if config.Observer != nil {
		observers = append(observers, config.Observer)
	}

	envOpts := []breeze.EnvironmentOption{
		breeze.WithCachePolicy(config.CachePolicy),
		breeze.WithCodec(bodyCodec),
	}

	switch len(observers) {
	case 0:
	case 1:
		envOpts = append(envOpts, breeze.WithObserver(observers[0]))
	default:
		envOpts = append(envOpts, breeze.WithObserver(breeze.NewObserverChain(observers...)))
	}

	env, err := breeze.NewEnvironment(breezehttp.NewClient(httpOpts...), config.BaseURL, envOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating environment: %w", err)
	}

	return env, nil
}

// NormalizeBaseURL trims trailing slashes and adds "https://" when no scheme
// is present.
func NormalizeBaseURL(baseURL string) string {
	normalized := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	lower := strings.ToLower(normalized)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		normalized = "https://" + normalized
	}

	return normalized
}
