package breeze

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveEndpoint composes base, path and query into an absolute URL.
//
// An empty path leaves the base path untouched; otherwise path is appended as
// one more segment, verbatim: dot segments and repeated slashes are kept. Empty query leaves the URL without a query string added;
// otherwise the items replace any base query and are written in order.
func ResolveEndpoint(base *url.URL, path string, query QueryItems) (*url.URL, error) {
	if base == nil || !base.IsAbs() || base.Host == "" {
		return nil, ErrInvalidURL
	}

	resolved := *base

	if path != "" {
		err := appendPath(&resolved, path)
		if err != nil {
			return nil, err
		}
	}

	if len(query) > 0 {
		resolved.RawQuery = encodeQuery(query)
		resolved.ForceQuery = false
	}

	reparsed, err := url.Parse(resolved.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	return reparsed, nil
}

// appendPath concatenates the escaped path onto the base path, trimming a
// single trailing slash from the base.
func appendPath(u *url.URL, path string) error {
	escaped := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + (&url.URL{Path: path}).EscapedPath()

	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	u.Path = unescaped
	u.RawPath = escaped

	return nil
}

func encodeQuery(query QueryItems) string {
	var builder strings.Builder

	for i, item := range query {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(escapeQueryComponent(item.Name))
		builder.WriteByte('=')
		builder.WriteString(escapeQueryComponent(item.Value))
	}

	return builder.String()
}

// escapeQueryComponent percent-encodes everything outside the characters a
// query component may carry literally, minus the pair and item separators.
// Timestamps such as 2024-01-01T00:00:00Z pass through unchanged.
func escapeQueryComponent(value string) string {
	const hex = "0123456789ABCDEF"

	var builder strings.Builder

	for i := 0; i < len(value); i++ {
		char := value[i]
		if queryLiteral(char) {
			builder.WriteByte(char)

			continue
		}

		builder.WriteByte('%')
		builder.WriteByte(hex[char>>4])
		builder.WriteByte(hex[char&0x0F])
	}

	return builder.String()
}

func queryLiteral(char byte) bool {
	switch {
	case 'a' <= char && char <= 'z', 'A' <= char && char <= 'Z', '0' <= char && char <= '9':
		return true
	}

	switch char {
	case '-', '.', '_', '~', '!', '$', '\'', '(', ')', '*', ',', ';', ':', '@', '/', '?':
		return true
	default:
		return false
	}
}

func joinSegment(path, segment string) string {
	if path == "" {
		return segment
	}

	return strings.TrimSuffix(path, "/") + "/" + segment
}
