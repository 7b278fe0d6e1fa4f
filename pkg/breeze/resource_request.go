package breeze

import (
	"fmt"
	"strings"
)

const authorizationHeader = "Authorization"

// HeaderMode selects how a ResourceRequests factory derives per-call headers.
type HeaderMode int

const (
	// BearerPerCall merges caller headers over the required set once and adds
	// "Authorization: Bearer <token>" on each call that supplies a token.
	BearerPerCall HeaderMode = iota
	// StaticHeaders sends the caller's complete header set unchanged and
	// ignores per-call tokens.
	StaticHeaders
)

// RequiredHeaders returns the headers every BearerPerCall request carries
// underneath caller headers.
func RequiredHeaders() Headers {
	return Headers{
		"Content-Type":  "application/json",
		"cache-control": "no-cache",
	}
}

// ResourceRequests builds the five CRUD requests for one resource path.
type ResourceRequests[T KeyedItem] struct {
	env     *Environment
	path    string
	headers Headers
	mode    HeaderMode
}

// NewResourceRequests creates a factory for path. In BearerPerCall mode the
// given headers are merged over RequiredHeaders; in StaticHeaders mode they
// are used as given.
func NewResourceRequests[T KeyedItem](env *Environment, path string, headers Headers, mode HeaderMode) *ResourceRequests[T] {
	merged := headers.Clone()
	if mode == BearerPerCall {
		merged = RequiredHeaders().Merge(headers)
	}

	return &ResourceRequests[T]{
		env:     env,
		path:    path,
		headers: merged,
		mode:    mode,
	}
}

// Path returns the resource path.
func (r *ResourceRequests[T]) Path() string {
	return r.path
}

// Headers returns a copy of the stored header set.
func (r *ResourceRequests[T]) Headers() Headers {
	return r.headers.Clone()
}

// Mode returns the header mode.
func (r *ResourceRequests[T]) Mode() HeaderMode {
	return r.mode
}

// Create builds a POST of the encoded item to the resource path.
func (r *ResourceRequests[T]) Create(token string, item T) (*Request, error) {
	body, err := r.encode(item)
	if err != nil {
		return nil, err
	}

	endpoint, err := ResolveEndpoint(r.env.baseURL, r.path, nil)
	if err != nil {
		return nil, err
	}

	return r.env.Post(endpoint, r.authorized(token), body), nil
}

// Read builds a GET of path/key.
func (r *ResourceRequests[T]) Read(token, key string) (*Request, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	endpoint, err := ResolveEndpoint(r.env.baseURL, joinSegment(r.path, key), nil)
	if err != nil {
		return nil, err
	}

	return r.env.Get(endpoint, r.authorized(token)), nil
}

// Update builds a PUT of the encoded item to the resource path. The key
// travels in the body.
func (r *ResourceRequests[T]) Update(token string, item T) (*Request, error) {
	body, err := r.encode(item)
	if err != nil {
		return nil, err
	}

	endpoint, err := ResolveEndpoint(r.env.baseURL, r.path, nil)
	if err != nil {
		return nil, err
	}

	return r.env.Put(endpoint, r.authorized(token), body), nil
}

// Delete builds a DELETE of path/key with query.
func (r *ResourceRequests[T]) Delete(token, key string, query QueryItems) (*Request, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	endpoint, err := ResolveEndpoint(r.env.baseURL, joinSegment(r.path, key), query)
	if err != nil {
		return nil, err
	}

	return r.env.Delete(endpoint, r.authorized(token)), nil
}

// List builds a GET of the resource path with query.
func (r *ResourceRequests[T]) List(token string, query QueryItems) (*Request, error) {
	endpoint, err := ResolveEndpoint(r.env.baseURL, r.path, query)
	if err != nil {
		return nil, err
	}

	return r.env.Get(endpoint, r.authorized(token)), nil
}

func (r *ResourceRequests[T]) encode(item T) ([]byte, error) {
	body, err := r.env.encoder.Encode(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return body, nil
}

// authorized returns the header set for one call. The stored set is never
// modified.
func (r *ResourceRequests[T]) authorized(token string) Headers {
	headers := r.headers.Clone()
	if r.mode == StaticHeaders || token == "" {
		return headers
	}

	for name := range headers {
		if strings.EqualFold(name, authorizationHeader) {
			delete(headers, name)
		}
	}

	headers[authorizationHeader] = "Bearer " + token

	return headers
}
