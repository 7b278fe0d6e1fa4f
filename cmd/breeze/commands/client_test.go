package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	t.Parallel()

	headers, err := parseHeaders([]string{"ClientType: cli", "X-Trace=abc", "X-Empty:"})
	require.NoError(t, err)
	assert.Equal(t, breeze.Headers{"ClientType": "cli", "X-Trace": "abc", "X-Empty": ""}, headers)

	_, err = parseHeaders([]string{"no separator"})
	require.ErrorIs(t, err, constants.ErrInvalidHeader)

	_, err = parseHeaders([]string{": value"})
	require.ErrorIs(t, err, constants.ErrInvalidHeader)
}

func TestBuildClientConfig(t *testing.T) {
	resetViper(t)

	_, err := buildClientConfig(&Config{}, &bytes.Buffer{})
	require.ErrorIs(t, err, constants.ErrNoBaseURLConfigured)

	viper.Set("base_url", "api.example.com")
	viper.Set("path", "notes")
	viper.Set("header", []string{"clienttype: flag"})
	viper.Set("cache_policy", "reload-revalidating")
	viper.Set("retry_max", 2)
	viper.Set("timeout", "5s")
	viper.Set("verbose", true)

	config, err := buildClientConfig(&Config{Headers: map[string]string{"ClientType": "file", "X-Team": "core"}}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "api.example.com", config.BaseURL)
	assert.Equal(t, "notes", config.Path)
	assert.Equal(t, breeze.Headers{"clienttype": "flag", "X-Team": "core"}, config.Headers)
	assert.Equal(t, breeze.ReloadRevalidatingCacheData, config.CachePolicy)
	assert.Equal(t, 2, config.RetryMax)
	assert.Equal(t, 5*time.Second, config.HTTPTimeout)
	assert.True(t, config.Debug)
	assert.NotNil(t, config.Logger)

	viper.Set("cache_policy", "never")

	_, err = buildClientConfig(&Config{}, &bytes.Buffer{})
	require.ErrorIs(t, err, constants.ErrInvalidCachePolicy)
}

func TestResolveToken(t *testing.T) {
	resetViper(t)

	viper.Set("token", "flag-token")

	token, err := resolveToken(NewItemsCommand())
	require.NoError(t, err)
	assert.Equal(t, "flag-token", token)
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer

	logger := newLogger(&quiet, false)
	logger.Debug("hidden", nil)
	logger.Warn("shown", map[string]interface{}{"status": 503})
	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")
	assert.Contains(t, quiet.String(), "status=503")

	var verbose bytes.Buffer

	logger = newLogger(&verbose, true)
	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})
	assert.Contains(t, verbose.String(), "HTTP Request")
	assert.Contains(t, verbose.String(), "method=GET")
}
