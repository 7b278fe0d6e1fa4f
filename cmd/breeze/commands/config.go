package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/fivetwenty-io/breeze-client/pkg/codec"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const headersKeyPrefix = "headers."

// Config represents the CLI configuration file.
type Config struct {
	BaseURL       string            `json:"base_url,omitempty"       yaml:"base_url,omitempty"`
	Path          string            `json:"path,omitempty"           yaml:"path,omitempty"`
	Token         string            `json:"token,omitempty"          yaml:"token,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"        yaml:"headers,omitempty"`
	StaticHeaders bool              `json:"static_headers,omitempty" yaml:"static_headers,omitempty"`
	Output        string            `json:"output,omitempty"         yaml:"output,omitempty"`
	Codec         string            `json:"codec,omitempty"          yaml:"codec,omitempty"`
	CachePolicy   string            `json:"cache_policy,omitempty"   yaml:"cache_policy,omitempty"`
	RetryMax      int               `json:"retry_max,omitempty"      yaml:"retry_max,omitempty"`
	Timeout       string            `json:"timeout,omitempty"        yaml:"timeout,omitempty"`
	NATSURL       string            `json:"nats_url,omitempty"       yaml:"nats_url,omitempty"`
	NATSSubject   string            `json:"nats_subject,omitempty"   yaml:"nats_subject,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the breeze config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configuration file contents with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			config, err := loadConfigFile(path)
			if err != nil {
				return err
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			return renderConfig(cmd.OutOrStdout(), format, maskConfig(config))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Keys: base_url, path, token, static_headers,
output, codec, cache_policy, retry_max, timeout, nats_url, nats_subject and
headers.<Name>.`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			return updateConfigFile(func(config *Config) error {
				return setConfigValue(config, key, value)
			}, func() {
				if key == "token" {
					value = constants.MaskedSecret
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			})
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			return updateConfigFile(func(config *Config) error {
				return unsetConfigValue(config, key)
			}, func() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)
			})
		},
	}
}

func updateConfigFile(change func(*Config) error, done func()) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	config, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	err = change(config)
	if err != nil {
		return err
	}

	err = saveConfigFile(path, config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	done()

	return nil
}

// configFilePath returns the file given with --config, the file viper
// loaded, or ~/.breeze/config.yml.
func configFilePath() (string, error) {
	if path := viper.GetString("config"); path != "" {
		return path, nil
	}

	if path := viper.ConfigFileUsed(); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+"."+constants.ConfigFileType), nil
}

// loadConfigFile reads path. A missing file yields an empty config.
func loadConfigFile(path string) (*Config, error) {
	config := &Config{}

	// #nosec G304 -- the path comes from the user's home or --config
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

func saveConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setConfigValue validates value and stores it under key.
//
//nolint:cyclop // One case per configuration key
func setConfigValue(config *Config, key, value string) error {
	if name, ok := strings.CutPrefix(key, headersKeyPrefix); ok && name != "" {
		if config.Headers == nil {
			config.Headers = map[string]string{}
		}

		config.Headers[name] = value

		return nil
	}

	switch key {
	case "base_url":
		config.BaseURL = value
	case "path":
		config.Path = value
	case "token":
		config.Token = value
	case "static_headers":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid static_headers value %q: %w", value, err)
		}

		config.StaticHeaders = enabled
	case "output":
		err := validateOutputFormat(value)
		if err != nil {
			return err
		}

		config.Output = value
	case "codec":
		_, err := codec.ByName(value)
		if err != nil {
			return fmt.Errorf("invalid codec: %w", err)
		}

		config.Codec = value
	case "cache_policy":
		_, err := parseCachePolicy(value)
		if err != nil {
			return err
		}

		config.CachePolicy = value
	case "retry_max":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("%w: retry_max must be a non-negative integer, got %q", constants.ErrInvalidConfigValue, value)
		}

		config.RetryMax = retries
	case "timeout":
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout value %q: %w", value, err)
		}

		config.Timeout = value
	case "nats_url":
		config.NATSURL = value
	case "nats_subject":
		config.NATSSubject = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	if name, ok := strings.CutPrefix(key, headersKeyPrefix); ok && name != "" {
		delete(config.Headers, name)

		if len(config.Headers) == 0 {
			config.Headers = nil
		}

		return nil
	}

	handlers := map[string]func(*Config){
		"base_url":       func(c *Config) { c.BaseURL = "" },
		"path":           func(c *Config) { c.Path = "" },
		"token":          func(c *Config) { c.Token = "" },
		"headers":        func(c *Config) { c.Headers = nil },
		"static_headers": func(c *Config) { c.StaticHeaders = false },
		"output":         func(c *Config) { c.Output = "" },
		"codec":          func(c *Config) { c.Codec = "" },
		"cache_policy":   func(c *Config) { c.CachePolicy = "" },
		"retry_max":      func(c *Config) { c.RetryMax = 0 },
		"timeout":        func(c *Config) { c.Timeout = "" },
		"nats_url":       func(c *Config) { c.NATSURL = "" },
		"nats_subject":   func(c *Config) { c.NATSSubject = "" },
	}

	handler, exists := handlers[key]
	if !exists {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	handler(config)

	return nil
}

func parseCachePolicy(name string) (breeze.CachePolicy, error) {
	if name == "" {
		return breeze.UseProtocolCachePolicy, nil
	}

	policy, ok := breeze.ParseCachePolicy(name)
	if !ok {
		return policy, fmt.Errorf("%w: %q", constants.ErrInvalidCachePolicy, name)
	}

	return policy, nil
}

func maskConfig(config *Config) *Config {
	masked := *config
	if masked.Token != "" {
		masked.Token = constants.MaskedSecret
	}

	return &masked
}

func renderConfig(out io.Writer, format string, config *Config) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(config)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		return encoder.Encode(config)
	default:
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		_ = table.Append([]string{"Base URL", formatConfigValue(config.BaseURL)})
		_ = table.Append([]string{"Path", formatConfigValue(config.Path)})
		_ = table.Append([]string{"Token", formatConfigValue(config.Token)})
		_ = table.Append([]string{"Static Headers", strconv.FormatBool(config.StaticHeaders)})
		_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
		_ = table.Append([]string{"Codec", formatConfigValue(config.Codec)})
		_ = table.Append([]string{"Cache Policy", formatConfigValue(config.CachePolicy)})
		_ = table.Append([]string{"Retry Max", strconv.Itoa(config.RetryMax)})
		_ = table.Append([]string{"Timeout", formatConfigValue(config.Timeout)})
		_ = table.Append([]string{"NATS URL", formatConfigValue(config.NATSURL)})
		_ = table.Append([]string{"NATS Subject", formatConfigValue(config.NATSSubject)})

		names := make([]string, 0, len(config.Headers))
		for name := range config.Headers {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			_ = table.Append([]string{"Header " + name, config.Headers[name]})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
