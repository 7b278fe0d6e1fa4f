package breeze_test

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://api.example.com"

type widget struct {
	ID        string `json:"key"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (w widget) Key() string {
	return w.ID
}

// fakeTransport records requests and answers with respond.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
	respond  func(req *http.Request) (*http.Response, error)
}

func (f *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	return f.respond(req)
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func (f *fakeTransport) last() (*http.Request, []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

func respondWith(status int, body string) *fakeTransport {
	return &fakeTransport{
		respond: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    req,
			}, nil
		},
	}
}

type observedResponse struct {
	body []byte
	resp *http.Response
}

// recordingObserver captures every notification.
type recordingObserver struct {
	mu        sync.Mutex
	requests  []*breeze.Request
	responses []observedResponse
	errors    []error
}

func (o *recordingObserver) OnRequest(req *breeze.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests = append(o.requests, req)
}

func (o *recordingObserver) OnResponse(body []byte, resp *http.Response) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.responses = append(o.responses, observedResponse{body: body, resp: resp})
}

func (o *recordingObserver) OnError(_ *breeze.Request, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.errors = append(o.errors, err)
}

func newTestEnvironment(t *testing.T, transport breeze.Doer, opts ...breeze.EnvironmentOption) *breeze.Environment {
	t.Helper()

	env, err := breeze.NewEnvironment(transport, testBaseURL, opts...)
	require.NoError(t, err)

	return env
}

func newTestClient(t *testing.T, transport breeze.Doer, observer breeze.Observer, opts ...breeze.ClientOption) *breeze.Client[widget] {
	t.Helper()

	env := newTestEnvironment(t, transport, breeze.WithObserver(observer))

	client, err := breeze.NewClient[widget](env, "item", opts...)
	require.NoError(t, err)

	return client
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{}) { l.add("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{}) { l.add("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }
