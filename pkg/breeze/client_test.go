package breeze_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnectionRefused = errors.New("connection refused")

func TestClient_RequestShape(t *testing.T) {
	t.Parallel()

	transport := respondWith(http.StatusOK, `{"key":"key","name":"n"}`)
	client := newTestClient(t, transport, nil, breeze.WithAdditionalHeaders(breeze.Headers{"ClientType": "cli"}))

	_, err := client.Read(context.Background(), "token", "key")
	require.NoError(t, err)

	req, body := transport.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://api.example.com/item/key", req.URL.String())
	assert.Empty(t, body)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", req.Header.Get("Cache-Control"))
	assert.Equal(t, "cli", req.Header.Get("ClientType"))
	assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
}

func TestClient_ListRequestWithoutQuery(t *testing.T) {
	t.Parallel()

	transport := respondWith(http.StatusOK, `{"items":[]}`)
	client := newTestClient(t, transport, nil)

	items, err := client.List(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	req, body := transport.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://api.example.com/item", req.URL.String())
	assert.Empty(t, body)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestClient_Delete(t *testing.T) {
	t.Parallel()

	transport := respondWith(http.StatusOK, ``)
	client := newTestClient(t, transport, nil)

	err := client.Delete(context.Background(), "token", "key", "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z")
	require.NoError(t, err)

	req, body := transport.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "https://api.example.com/item/key?createdAt=2024-01-01T00:00:00Z&updatedAt=2024-01-02T00:00:00Z", req.URL.String())
	assert.Empty(t, body)
	assert.Equal(t, 1, transport.calls())
}

func TestClient_CreateAndUpdateSendBody(t *testing.T) {
	t.Parallel()

	transport := respondWith(http.StatusCreated, `{"key":"a","name":"stored","createdAt":"2024-01-01T00:00:00Z"}`)
	client := newTestClient(t, transport, nil)

	created, err := client.Create(context.Background(), "token", widget{ID: "a", Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, widget{ID: "a", Name: "stored", CreatedAt: "2024-01-01T00:00:00Z"}, created)

	req, body := transport.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.example.com/item", req.URL.String())
	assert.JSONEq(t, `{"key":"a","name":"new"}`, string(body))

	_, err = client.Update(context.Background(), "token", widget{ID: "a", Name: "changed"})
	require.NoError(t, err)

	req, body = transport.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "https://api.example.com/item", req.URL.String())
	assert.JSONEq(t, `{"key":"a","name":"changed"}`, string(body))
}

func TestClient_ListDecodesEnvelopeInOrder(t *testing.T) {
	t.Parallel()

	transport := respondWith(http.StatusOK, `{"items":[{"key":"1","name":"first"},{"key":"2","name":"second"}]}`)
	client := newTestClient(t, transport, nil)

	items, err := client.List(context.Background(), "token", &breeze.ListParams{ExclusiveStartKey: "0", Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].Key())
	assert.Equal(t, "2", items[1].Key())

	req, _ := transport.last()
	assert.Equal(t, "exclusiveStartKey=0&limit=2", req.URL.RawQuery)
}

func TestClient_ListRejectsMissingEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respondWith(http.StatusOK, `[{"key":"1"}]`), nil)

	_, err := client.List(context.Background(), "token", nil)
	require.ErrorIs(t, err, breeze.ErrDecode)

	client = newTestClient(t, respondWith(http.StatusOK, `{"data":[]}`), nil)

	_, err = client.List(context.Background(), "token", nil)
	require.ErrorIs(t, err, breeze.ErrDecode)
}

func TestClient_StatusBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  int
		success bool
	}{
		{status: 199, success: false},
		{status: 200, success: true},
		{status: 204, success: true},
		{status: 299, success: true},
		{status: 300, success: false},
		{status: 404, success: false},
		{status: 500, success: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, respondWith(tt.status, `{"key":"k"}`), nil)

			item, err := client.Read(context.Background(), "token", "k")
			if tt.success {
				require.NoError(t, err)
				assert.Equal(t, "k", item.Key())

				return
			}

			var httpErr *breeze.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, []byte(`{"key":"k"}`), httpErr.Body)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_HTTPErrorOnEveryOperation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	body := `{"error":"bad"}`

	operations := map[string]func(client *breeze.Client[widget]) error{
		"create": func(client *breeze.Client[widget]) error {
			_, err := client.Create(ctx, "token", widget{ID: "a"})

			return err
		},
		"read": func(client *breeze.Client[widget]) error {
			_, err := client.Read(ctx, "token", "a")

			return err
		},
		"update": func(client *breeze.Client[widget]) error {
			_, err := client.Update(ctx, "token", widget{ID: "a"})

			return err
		},
		"delete": func(client *breeze.Client[widget]) error {
			return client.Delete(ctx, "token", "a", "c", "u")
		},
		"list": func(client *breeze.Client[widget]) error {
			_, err := client.List(ctx, "token", nil)

			return err
		},
	}

	for name, operation := range operations {
		operation := operation

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			observer := &recordingObserver{}
			client := newTestClient(t, respondWith(http.StatusBadRequest, body), observer)

			err := operation(client)

			var httpErr *breeze.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
			assert.Equal(t, []byte(body), httpErr.Body)
			assert.NotErrorIs(t, err, breeze.ErrDecode)

			require.Len(t, observer.requests, 1)
			require.Len(t, observer.responses, 1)
			assert.Equal(t, []byte(body), observer.responses[0].body)
			assert.Equal(t, http.StatusBadRequest, observer.responses[0].resp.StatusCode)
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	client := newTestClient(t, respondWith(http.StatusOK, `not json`), observer)

	_, err := client.Read(context.Background(), "token", "a")
	require.ErrorIs(t, err, breeze.ErrDecode)
	assert.Zero(t, breeze.StatusCode(err))
	assert.Len(t, observer.responses, 1)
}

func TestClient_InvalidResponse(t *testing.T) {
	t.Parallel()

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		observer := &recordingObserver{}
		transport := &fakeTransport{
			respond: func(*http.Request) (*http.Response, error) {
				return nil, nil //nolint:nilnil // simulates a broken transport
			},
		}
		client := newTestClient(t, transport, observer)

		_, err := client.Read(context.Background(), "token", "a")
		require.ErrorIs(t, err, breeze.ErrInvalidResponse)
		require.Len(t, observer.responses, 1)

		resp := observer.responses[0].resp
		require.NotNil(t, resp)
		assert.Zero(t, resp.StatusCode)
		require.NotNil(t, resp.Request)
		assert.Equal(t, "/item/a", resp.Request.URL.Path)
	})

	t.Run("missing status line", func(t *testing.T) {
		t.Parallel()

		observer := &recordingObserver{}
		transport := &fakeTransport{
			respond: func(req *http.Request) (*http.Response, error) {
				return &http.Response{Body: io.NopCloser(strings.NewReader("raw")), Request: req}, nil
			},
		}
		client := newTestClient(t, transport, observer)

		err := client.Delete(context.Background(), "token", "a", "c", "u")
		require.ErrorIs(t, err, breeze.ErrInvalidResponse)
		require.Len(t, observer.responses, 1)
		assert.Equal(t, []byte("raw"), observer.responses[0].body)
	})
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	transport := &fakeTransport{
		respond: func(*http.Request) (*http.Response, error) {
			return nil, errConnectionRefused
		},
	}
	client := newTestClient(t, transport, observer)

	_, err := client.Read(context.Background(), "token", "a")
	require.ErrorIs(t, err, breeze.ErrTransport)
	require.ErrorIs(t, err, errConnectionRefused)
	assert.Empty(t, observer.responses)
	assert.Len(t, observer.errors, 1)
	assert.Equal(t, 1, transport.calls())
}

func TestClient_PanickingObserverIsIgnored(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respondWith(http.StatusOK, `{"key":"a"}`), panickingObserver{})

	item, err := client.Read(context.Background(), "token", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", item.Key())
}

type panickingObserver struct{}

func (panickingObserver) OnRequest(*breeze.Request) { panic("request") }
func (panickingObserver) OnResponse([]byte, *http.Response) { panic("response") }
func (panickingObserver) OnError(*breeze.Request, error) { panic("error") }

func TestClient_StaticHeadersIgnoreToken(t *testing.T) {
	t.Parallel()

	transport := respondWith(http.StatusOK, `{"items":[]}`)
	client := newTestClient(t, transport, nil, breeze.WithStaticHeaders(breeze.Headers{
		"Authorization": "Bearer fixed",
		"Content-Type":  "application/json",
	}))

	_, err := client.List(context.Background(), "per-call", nil)
	require.NoError(t, err)

	req, _ := transport.last()
	assert.Equal(t, "Bearer fixed", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Cache-Control"))
}

func TestClient_CachePolicyOnContext(t *testing.T) {
	t.Parallel()

	var seen breeze.CachePolicy

	transport := &fakeTransport{
		respond: func(req *http.Request) (*http.Response, error) {
			seen, _ = breeze.CachePolicyFromContext(req.Context())

			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"items":[]}`))}, nil
		},
	}

	env := newTestEnvironment(t, transport, breeze.WithCachePolicy(breeze.ReloadIgnoringCacheData))
	client, err := breeze.NewClient[widget](env, "item")
	require.NoError(t, err)

	_, err = client.List(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, breeze.ReloadIgnoringCacheData, seen)
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	env, err := breeze.NewEnvironment(server.Client(), server.URL)
	require.NoError(t, err)

	client, err := breeze.NewClient[widget](env, "item")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Read(ctx, "token", "a")
	require.ErrorIs(t, err, breeze.ErrTransport)
	require.ErrorIs(t, err, context.Canceled)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_AgainstServer(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		store = map[string]widget{}
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		key := strings.TrimPrefix(r.URL.Path, "/item/")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/item":
			var item widget
			_ = json.NewDecoder(r.Body).Decode(&item)
			store[item.ID] = item
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(item)
		case r.Method == http.MethodGet && r.URL.Path == "/item":
			items := make([]widget, 0, len(store))
			for _, item := range store {
				items = append(items, item)
			}

			_ = json.NewEncoder(w).Encode(breeze.ListEnvelope[widget]{Items: items})
		case r.Method == http.MethodGet:
			item, ok := store[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"not found"}`))

				return
			}

			_ = json.NewEncoder(w).Encode(item)
		case r.Method == http.MethodDelete:
			delete(store, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	env, err := breeze.NewEnvironment(server.Client(), server.URL)
	require.NoError(t, err)

	client, err := breeze.NewClient[widget](env, "item")
	require.NoError(t, err)

	ctx := context.Background()

	created, err := client.Create(ctx, "token", widget{ID: "w1", Name: "one"})
	require.NoError(t, err)
	assert.Equal(t, "w1", created.ID)

	read, err := client.Read(ctx, "token", "w1")
	require.NoError(t, err)
	assert.Equal(t, created, read)

	items, err := client.List(ctx, "token", nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, client.Delete(ctx, "token", "w1", "c", "u"))

	_, err = client.Read(ctx, "token", "w1")
	assert.True(t, breeze.IsNotFound(err))
}

func TestNewClient_RequiresEnvironment(t *testing.T) {
	t.Parallel()

	_, err := breeze.NewClient[widget](nil, "item")
	require.ErrorIs(t, err, breeze.ErrNilEnvironment)
}
