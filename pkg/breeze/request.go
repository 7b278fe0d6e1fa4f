package breeze

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"
)

var requestSequence atomic.Uint64

// Request describes one outgoing call. It is built fresh for every operation.
type Request struct {
	Method      string
	URL         *url.URL
	Header      Headers
	Body        []byte
	CachePolicy CachePolicy

	id uint64
}

// ID identifies the request for its whole lifetime. It is zero for requests
// not built by an Environment.
func (r *Request) ID() uint64 {
	return r.id
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	clone := &Request{
		Method:      r.Method,
		Header:      r.Header.Clone(),
		CachePolicy: r.CachePolicy,
		id:          r.id,
	}

	if r.URL != nil {
		u := *r.URL
		clone.URL = &u
	}

	if r.Body != nil {
		clone.Body = slices.Clone(r.Body)
	}

	return clone
}

// HTTPRequest converts the descriptor into an *http.Request bound to ctx.
// The cache policy and request ID travel on the request context; see
// CachePolicyFromContext and RequestIDFromContext.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	if r.URL == nil {
		return nil, ErrInvalidURL
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	ctx = ContextWithCachePolicy(ctx, r.CachePolicy)
	if r.id != 0 {
		ctx = context.WithValue(ctx, requestIDKey{}, r.id)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating http request: %w", err)
	}

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		req.Header.Set(name, r.Header[name])
	}

	return req, nil
}

type (
	cachePolicyKey struct{}
	requestIDKey   struct{}
)

// RequestIDFromContext returns the ID of the Request an *http.Request was
// built from. Redirects keep the original context, so the ID survives them.
func RequestIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(requestIDKey{}).(uint64)

	return id, ok
}

// ContextWithCachePolicy returns a context carrying policy.
func ContextWithCachePolicy(ctx context.Context, policy CachePolicy) context.Context {
	return context.WithValue(ctx, cachePolicyKey{}, policy)
}

// CachePolicyFromContext returns the cache policy stored by HTTPRequest.
func CachePolicyFromContext(ctx context.Context) (CachePolicy, bool) {
	policy, ok := ctx.Value(cachePolicyKey{}).(CachePolicy)

	return policy, ok
}

// BuildRequest creates a request descriptor using exactly the given headers
// and the environment's cache policy, then notifies the observer.
func (e *Environment) BuildRequest(method string, endpoint *url.URL, headers Headers, body []byte) *Request {
	req := &Request{
		Method:      method,
		URL:         endpoint,
		Header:      headers.Clone(),
		Body:        body,
		CachePolicy: e.cachePolicy,
		id:          requestSequence.Add(1),
	}

	notifyRequest(e.observer, req)

	return req
}

// Get builds a GET request.
func (e *Environment) Get(endpoint *url.URL, headers Headers) *Request {
	return e.BuildRequest(http.MethodGet, endpoint, headers, nil)
}

// Delete builds a DELETE request.
func (e *Environment) Delete(endpoint *url.URL, headers Headers) *Request {
	return e.BuildRequest(http.MethodDelete, endpoint, headers, nil)
}

// Post builds a POST request carrying body.
func (e *Environment) Post(endpoint *url.URL, headers Headers, body []byte) *Request {
	return e.BuildRequest(http.MethodPost, endpoint, headers, body)
}

// Put builds a PUT request carrying body.
func (e *Environment) Put(endpoint *url.URL, headers Headers, body []byte) *Request {
	return e.BuildRequest(http.MethodPut, endpoint, headers, body)
}
