// Package testutil provides an in-memory resource backend for exercising
// breeze clients over real HTTP.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// RecordedRequest is a request seen by the backend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
}

// Backend serves one JSON resource collection under Path. Items are objects
// keyed by their "key" field; the backend stamps createdAt and updatedAt.
//
// Routes:
//
//	GET    /<path>?exclusiveStartKey=&limit=  {"items":[...]}, sorted by key
//	POST   /<path>                            201, 409 when the key exists
//	PUT    /<path>                            200, 404 when the key is unknown
//	GET    /<path>/<key>                      200, 404
//	DELETE /<path>/<key>?createdAt=&updatedAt= 204, 404, 409 on a stale stamp
//
// When Token is set every request must carry "Authorization: Bearer <Token>".
type Backend struct {
	Path  string
	Token string
	Now   func() time.Time

	mu       sync.Mutex
	items    map[string]map[string]any
	requests []RecordedRequest
}

// NewBackend creates an empty backend serving path.
func NewBackend(path string) *Backend {
	return &Backend{
		Path:  strings.Trim(path, "/"),
		Now:   time.Now,
		items: map[string]map[string]any{},
	}
}

// Start serves the backend on a local httptest server closed at test end.
func (b *Backend) Start(t testing.TB) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	return server
}

// Seed stores items directly, stamping them like a create.
func (b *Backend) Seed(items ...map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range items {
		b.stamp(item, true)
		b.items[keyOf(item)] = item
	}
}

// Item returns a copy of the stored item with key.
func (b *Backend) Item(key string) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[key]
	if !ok {
		return nil, false
	}

	return cloneItem(item), true
}

// Len returns the number of stored items.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

// Requests returns every request seen so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]RecordedRequest(nil), b.requests...)
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
	})

	if b.Token != "" && r.Header.Get("Authorization") != "Bearer "+b.Token {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")

		return
	}

	rest, ok := strings.CutPrefix(strings.Trim(r.URL.Path, "/"), b.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource")

		return
	}

	key := strings.TrimPrefix(rest, "/")

	switch {
	case key == "" && r.Method == http.MethodGet:
		b.list(w, r)
	case key == "" && r.Method == http.MethodPost:
		b.create(w, r)
	case key == "" && r.Method == http.MethodPut:
		b.update(w, r)
	case key != "" && r.Method == http.MethodGet:
		b.read(w, key)
	case key != "" && r.Method == http.MethodDelete:
		b.remove(w, r, key)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request) {
	keys := make([]string, 0, len(b.items))
	for key := range b.items {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	start := r.URL.Query().Get("exclusiveStartKey")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items := []map[string]any{}

	for _, key := range keys {
		if start != "" && key <= start {
			continue
		}

		if limit > 0 && len(items) == limit {
			break
		}

		items = append(items, b.items[key])
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeItem(w, r)
	if !ok {
		return
	}

	if _, exists := b.items[keyOf(item)]; exists {
		writeError(w, http.StatusConflict, "item already exists")

		return
	}

	b.stamp(item, true)
	b.items[keyOf(item)] = item

	writeJSON(w, http.StatusCreated, item)
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeItem(w, r)
	if !ok {
		return
	}

	existing, exists := b.items[keyOf(item)]
	if !exists {
		writeError(w, http.StatusNotFound, "item not found")

		return
	}

	item["createdAt"] = existing["createdAt"]
	b.stamp(item, false)
	b.items[keyOf(item)] = item

	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) read(w http.ResponseWriter, key string) {
	item, exists := b.items[key]
	if !exists {
		writeError(w, http.StatusNotFound, "item not found")

		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request, key string) {
	item, exists := b.items[key]
	if !exists {
		writeError(w, http.StatusNotFound, "item not found")

		return
	}

	query := r.URL.Query()
	if query.Get("createdAt") != item["createdAt"] || query.Get("updatedAt") != item["updatedAt"] {
		writeError(w, http.StatusConflict, "stale item timestamps")

		return
	}

	delete(b.items, key)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) stamp(item map[string]any, created bool) {
	now := b.Now().UTC().Format(time.RFC3339Nano)
	if created {
		item["createdAt"] = now
	}

	item["updatedAt"] = now
}

func decodeItem(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var item map[string]any

	err := json.NewDecoder(r.Body).Decode(&item)
	if err != nil || item == nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")

		return nil, false
	}

	if keyOf(item) == "" {
		writeError(w, http.StatusBadRequest, "item key is required")

		return nil, false
	}

	return item, true
}

func keyOf(item map[string]any) string {
	key, _ := item["key"].(string)

	return key
}

func cloneItem(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = v
	}

	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
