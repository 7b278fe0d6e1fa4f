package main

import (
	"fmt"
	"os"

	"github.com/fivetwenty-io/breeze-client/cmd/breeze/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "breeze",
	Short: "Typed CRUD client for JSON resource backends",
	Long: `A command-line interface for a JSON resource backend.

It creates, reads, updates, deletes and lists the items of one resource
collection, sending a bearer token with every request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(commands.InitConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.breeze/config.yml)")
	flags.StringP("base-url", "u", "", "backend base URL")
	flags.StringP("path", "p", "", "resource path appended to the base URL")
	flags.StringP("token", "t", "", "bearer token")
	flags.Bool("prompt-token", false, "read the bearer token from the terminal")
	flags.StringArrayP("header", "H", nil, "extra header as 'Name: value' (repeatable)")
	flags.Bool("static-headers", false, "send headers verbatim and never add a token")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("codec", "", "body codec (json, sonic)")
	flags.String("cache-policy", "", "cache policy (use-protocol, reload-ignoring-cache, return-cache-else-load, return-cache-dont-load, reload-revalidating)")
	flags.Int("retry-max", 0, "transport retries for connection errors, 429 and 5xx")
	flags.Duration("timeout", 0, "HTTP timeout per attempt")
	flags.String("nats-url", "", "publish request events to this NATS server")
	flags.String("nats-subject", "", "NATS subject prefix for request events")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":         "config",
		"base_url":       "base-url",
		"path":           "path",
		"token":          "token",
		"prompt_token":   "prompt-token",
		"header":         "header",
		"static_headers": "static-headers",
		"output":         "output",
		"verbose":        "verbose",
		"codec":          "codec",
		"cache_policy":   "cache-policy",
		"retry_max":      "retry-max",
		"timeout":        "timeout",
		"nats_url":       "nats-url",
		"nats_subject":   "nats-subject",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewItemsCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
