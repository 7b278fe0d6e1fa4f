package commands

import (
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/fivetwenty-io/breeze-client/internal/events"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/fivetwenty-io/breeze-client/pkg/breezeclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// session holds a configured document client and the token to send with it.
type session struct {
	client *breeze.Client[Document]
	token  string
	close  func()
}

// newSession builds a document client from flags, environment and the
// config file, in that order of precedence.
func newSession(cmd *cobra.Command) (*session, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	fileConfig, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	config, err := buildClientConfig(fileConfig, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	closeFn := func() {}

	if natsURL := viper.GetString("nats_url"); natsURL != "" {
		conn, err := events.Connect(natsURL, "breeze-cli")
		if err != nil {
			return nil, err
		}

		config.Observer = events.NewNATSObserver(conn, viper.GetString("nats_subject"), config.Logger)
		closeFn = func() {
			_ = conn.Drain()
		}
	}

	client, err := breezeclient.New[Document](config)
	if err != nil {
		closeFn()

		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	token, err := resolveToken(cmd)
	if err != nil {
		closeFn()

		return nil, err
	}

	return &session{client: client, token: token, close: closeFn}, nil
}

// buildClientConfig resolves settings from viper. Headers from the config
// file are merged with --header flags, the flags winning.
func buildClientConfig(fileConfig *Config, logOut io.Writer) (*breeze.Config, error) {
	baseURL := viper.GetString("base_url")
	if strings.TrimSpace(baseURL) == "" {
		return nil, constants.ErrNoBaseURLConfigured
	}

	flagHeaders, err := parseHeaders(viper.GetStringSlice("header"))
	if err != nil {
		return nil, err
	}

	policy, err := parseCachePolicy(viper.GetString("cache_policy"))
	if err != nil {
		return nil, err
	}

	verbose := viper.GetBool("verbose")

	config := &breeze.Config{
		BaseURL:       baseURL,
		Path:          viper.GetString("path"),
		Headers:       breeze.Headers(fileConfig.Headers).Merge(flagHeaders),
		StaticHeaders: viper.GetBool("static_headers"),
		HTTPTimeout:   viper.GetDuration("timeout"),
		RetryMax:      viper.GetInt("retry_max"),
		CachePolicy:   policy,
		Codec:         viper.GetString("codec"),
		Debug:         verbose,
		Logger:        newLogger(logOut, verbose),
	}

	return config, nil
}

// parseHeaders parses "Name: value" or "Name=value" entries.
func parseHeaders(entries []string) (breeze.Headers, error) {
	headers := breeze.Headers{}

	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			name, value, ok = strings.Cut(entry, "=")
		}

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, entry)
		}

		headers[name] = strings.TrimSpace(value)
	}

	return headers, nil
}

// resolveToken returns --token (or BREEZE_TOKEN, or the config file token),
// prompting on the terminal when --prompt-token is set.
func resolveToken(cmd *cobra.Command) (string, error) {
	if !viper.GetBool("prompt_token") {
		return viper.GetString("token"), nil
	}

	fd := int(syscall.Stdin) //nolint:unconvert // syscall.Stdin is not an int on every platform
	if !term.IsTerminal(fd) {
		return "", constants.ErrTokenPromptNotTerminal
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Token: ")

	tokenBytes, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(string(tokenBytes)), nil
}
