package breeze

import "strings"

// KeyedItem is implemented by every resource type a Client can manage.
// Key returns the value that uniquely identifies the item within its collection.
type KeyedItem interface {
	Key() string
}

// Headers maps header names to values.
type Headers map[string]string

// Clone returns a copy of the header set. A nil set clones to an empty one.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for name, value := range h {
		out[name] = value
	}

	return out
}

// Merge returns a new header set holding h overlaid with other. Values from
// other win. A name in other replaces any entry in h that differs from it only
// by case, so the merged set never carries two spellings of one header.
func (h Headers) Merge(other Headers) Headers {
	out := h.Clone()

	for name, value := range other {
		for existing := range out {
			if existing != name && strings.EqualFold(existing, name) {
				delete(out, existing)
			}
		}

		out[name] = value
	}

	return out
}

// QueryItem is a single name/value query parameter.
type QueryItem struct {
	Name  string
	Value string
}

// QueryItems is an ordered list of query parameters. Order is kept when the
// items are written into a URL.
type QueryItems []QueryItem

// ListEnvelope is the wire shape of a list response.
type ListEnvelope[T any] struct {
	Items []T `json:"items"`
}

// CachePolicy tells the transport how to use previously cached responses.
type CachePolicy int

const (
	// UseProtocolCachePolicy leaves caching to the protocol's own rules.
	UseProtocolCachePolicy CachePolicy = iota
	// ReloadIgnoringCacheData always loads from the origin.
	ReloadIgnoringCacheData
	// ReturnCacheDataElseLoad uses cached data regardless of age, loading only on a miss.
	ReturnCacheDataElseLoad
	// ReturnCacheDataDontLoad uses cached data only and never loads.
	ReturnCacheDataDontLoad
	// ReloadRevalidatingCacheData revalidates cached data with the origin before use.
	ReloadRevalidatingCacheData
)

// String returns the policy name.
func (p CachePolicy) String() string {
	switch p {
	case UseProtocolCachePolicy:
		return "use-protocol"
	case ReloadIgnoringCacheData:
		return "reload-ignoring-cache"
	case ReturnCacheDataElseLoad:
		return "return-cache-else-load"
	case ReturnCacheDataDontLoad:
		return "return-cache-dont-load"
	case ReloadRevalidatingCacheData:
		return "reload-revalidating"
	default:
		return "unknown"
	}
}

// Directive returns the Cache-Control request directive equivalent to the
// policy, or "" when the policy adds nothing to the request.
func (p CachePolicy) Directive() string {
	switch p {
	case ReloadIgnoringCacheData:
		return "no-cache"
	case ReturnCacheDataElseLoad:
		return "max-stale"
	case ReturnCacheDataDontLoad:
		return "only-if-cached"
	case ReloadRevalidatingCacheData:
		return "max-age=0"
	case UseProtocolCachePolicy:
		return ""
	default:
		return ""
	}
}

// ParseCachePolicy maps a policy name as returned by String back to its value.
func ParseCachePolicy(name string) (CachePolicy, bool) {
	for _, policy := range []CachePolicy{
		UseProtocolCachePolicy,
		ReloadIgnoringCacheData,
		ReturnCacheDataElseLoad,
		ReturnCacheDataDontLoad,
		ReloadRevalidatingCacheData,
	} {
		if policy.String() == name {
			return policy, true
		}
	}

	return UseProtocolCachePolicy, false
}
