package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Configuration file locations.
const (
	// ConfigDirName is the directory under the user's home holding breeze config.
	ConfigDirName = ".breeze"

	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"

	// ConfigFileType is the config file format.
	ConfigFileType = "yml"

	// EnvPrefix is the environment variable prefix read by the CLI.
	EnvPrefix = "BREEZE"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as NATS connects.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are off unless configured.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 50

	// StringTruncationLength is the default length for truncating table cells.
	StringTruncationLength = 60
)

// Command argument counts.
const (
	// MinimumArgumentCount is the argument count of "config set".
	MinimumArgumentCount = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Client identity.
const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "breeze-client/1.0"

	// DefaultEventSubject is the NATS subject prefix for request events.
	DefaultEventSubject = "breeze.http"

	// DocumentKeyField is the JSON field holding a document's key.
	DocumentKeyField = "key"

	// CreatedAtField and UpdatedAtField hold the stored timestamps that a
	// delete must echo back.
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)
