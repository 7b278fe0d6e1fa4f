package breeze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// ListParams holds the optional list query parameters.
type ListParams struct {
	// ExclusiveStartKey is the key of the last item of the previous page.
	ExclusiveStartKey string
	// Limit caps the page size. Zero or negative leaves it to the backend.
	Limit int
}

// QueryItems renders the params in wire order.
func (p *ListParams) QueryItems() QueryItems {
	if p == nil {
		return nil
	}

	var query QueryItems
	if p.ExclusiveStartKey != "" {
		query = append(query, QueryItem{Name: "exclusiveStartKey", Value: p.ExclusiveStartKey})
	}

	if p.Limit > 0 {
		query = append(query, QueryItem{Name: "limit", Value: strconv.Itoa(p.Limit)})
	}

	return query
}

type clientOptions struct {
	headers Headers
	mode    HeaderMode
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithAdditionalHeaders adds headers merged over the required set. Later
// calls merge over earlier ones.
func WithAdditionalHeaders(headers Headers) ClientOption {
	return func(o *clientOptions) {
		o.headers = o.headers.Merge(headers)
		o.mode = BearerPerCall
	}
}

// WithStaticHeaders makes the client send exactly headers on every request.
// Per-call tokens are then ignored.
func WithStaticHeaders(headers Headers) ClientOption {
	return func(o *clientOptions) {
		o.headers = headers.Clone()
		o.mode = StaticHeaders
	}
}

// Client performs typed CRUD operations against one resource path.
// A Client is safe for concurrent use.
type Client[T KeyedItem] struct {
	env      *Environment
	requests *ResourceRequests[T]
}

// NewClient creates a client for the resource at path.
func NewClient[T KeyedItem](env *Environment, path string, opts ...ClientOption) (*Client[T], error) {
	if env == nil {
		return nil, ErrNilEnvironment
	}

	options := &clientOptions{headers: Headers{}, mode: BearerPerCall}
	for _, opt := range opts {
		opt(options)
	}

	return &Client[T]{
		env:      env,
		requests: NewResourceRequests[T](env, path, options.headers, options.mode),
	}, nil
}

// Environment returns the environment the client was built with.
func (c *Client[T]) Environment() *Environment {
	return c.env
}

// Requests returns the request factory used by the client.
func (c *Client[T]) Requests() *ResourceRequests[T] {
	return c.requests
}

// Create posts item and returns the backend's stored version.
func (c *Client[T]) Create(ctx context.Context, token string, item T) (T, error) {
	var zero T

	req, err := c.requests.Create(token, item)
	if err != nil {
		return zero, fmt.Errorf("building create request: %w", err)
	}

	return c.doItem(ctx, req)
}

// Read fetches the item with key.
func (c *Client[T]) Read(ctx context.Context, token, key string) (T, error) {
	var zero T

	req, err := c.requests.Read(token, key)
	if err != nil {
		return zero, fmt.Errorf("building read request: %w", err)
	}

	return c.doItem(ctx, req)
}

// Update replaces item and returns the backend's stored version.
func (c *Client[T]) Update(ctx context.Context, token string, item T) (T, error) {
	var zero T

	req, err := c.requests.Update(token, item)
	if err != nil {
		return zero, fmt.Errorf("building update request: %w", err)
	}

	return c.doItem(ctx, req)
}

// Delete removes the item with key. createdAt and updatedAt are sent as
// query parameters for the backend's optimistic-concurrency check.
func (c *Client[T]) Delete(ctx context.Context, token, key, createdAt, updatedAt string) error {
	return c.DeleteWithQuery(ctx, token, key, QueryItems{
		{Name: "createdAt", Value: createdAt},
		{Name: "updatedAt", Value: updatedAt},
	})
}

// DeleteWithQuery removes the item with key, sending query as given.
func (c *Client[T]) DeleteWithQuery(ctx context.Context, token, key string, query QueryItems) error {
	req, err := c.requests.Delete(token, key, query)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}

	_, err = c.execute(ctx, req)

	return err
}

// List fetches one page of items. params may be nil.
func (c *Client[T]) List(ctx context.Context, token string, params *ListParams) ([]T, error) {
	req, err := c.requests.List(token, params.QueryItems())
	if err != nil {
		return nil, fmt.Errorf("building list request: %w", err)
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Items *[]T `json:"items"`
	}

	err = c.env.decoder.Decode(body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if envelope.Items == nil {
		return nil, fmt.Errorf("%w: missing items", ErrDecode)
	}

	return *envelope.Items, nil
}

func (c *Client[T]) doItem(ctx context.Context, req *Request) (T, error) {
	var item T

	body, err := c.execute(ctx, req)
	if err != nil {
		return item, err
	}

	err = c.env.decoder.Decode(body, &item)
	if err != nil {
		return item, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return item, nil
}

// execute performs one transport call and validates the response. The
// observer sees every response exactly once, before the caller does. A
// transport that returns neither response nor error is reported as a
// response without a status line.
func (c *Client[T]) execute(ctx context.Context, req *Request) ([]byte, error) {
	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.env.transport.Do(httpReq)
	if err != nil {
		notifyError(c.env.observer, req, err)

		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp == nil {
		notifyResponse(c.env.observer, nil, &http.Response{Request: httpReq})

		return nil, ErrInvalidResponse
	}

	if resp.Request == nil {
		resp.Request = httpReq
	}

	body, readErr := readBody(resp)

	notifyResponse(c.env.observer, body, resp)

	if readErr != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, readErr)
	}

	if resp.StatusCode < 100 {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	if !successStatus(resp.StatusCode) {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

func successStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}

	defer func() { _ = resp.Body.Close() }()

	return io.ReadAll(resp.Body)
}
