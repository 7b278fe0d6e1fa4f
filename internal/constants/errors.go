package constants

import "errors"

// Configuration errors.
var (
	ErrNoBaseURLConfigured = errors.New("no base URL configured, use 'breeze config set base_url <url>' or --base-url")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidCachePolicy  = errors.New("invalid cache policy")
	ErrInvalidConfigValue  = errors.New("invalid configuration value")
	ErrInvalidHeader       = errors.New("invalid header, expected \"Name: value\"")
)

// Item errors.
var (
	ErrItemDataRequired = errors.New("item data is required, use --data or --file")
	ErrItemNotObject    = errors.New("item data must be a JSON object")
	ErrItemKeyRequired  = errors.New("item must carry a non-empty \"key\" field")
	ErrTimestampsNeeded = errors.New("--created-at and --updated-at are required")
	ErrKeysRequired     = errors.New("at least one key is required")
	ErrBatchFailed      = errors.New("one or more batch operations failed")
	ErrItemTimestamps   = errors.New("stored item has no createdAt/updatedAt")
)

// Token errors.
var (
	ErrTokenPromptNotTerminal = errors.New("cannot prompt for token: stdin is not a terminal")
)
