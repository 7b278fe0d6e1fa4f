package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/breeze-client/internal/events"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errBrokerDown   = errors.New("broker down")
	errNoConnection = errors.New("no connection")
)

type message struct {
	subject string
	data    []byte
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []message
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, message{subject: subject, data: data})

	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, []byte) error {
	return errBrokerDown
}

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) { m.Called(msg, fields) }
func (m *mockLogger) Info(msg string, fields map[string]interface{}) { m.Called(msg, fields) }
func (m *mockLogger) Warn(msg string, fields map[string]interface{}) { m.Called(msg, fields) }
func (m *mockLogger) Error(msg string, fields map[string]interface{}) { m.Called(msg, fields) }

type doc struct {
	ID string `json:"key"`
}

func (d doc) Key() string {
	return d.ID
}

type stubTransport struct {
	status int
	body   string
	err    error
}

func (s stubTransport) Do(req *http.Request) (*http.Response, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

func newClient(t *testing.T, transport breeze.Doer, observer breeze.Observer) *breeze.Client[doc] {
	t.Helper()

	env, err := breeze.NewEnvironment(transport, "https://api.example.com", breeze.WithObserver(observer))
	require.NoError(t, err)

	client, err := breeze.NewClient[doc](env, "docs")
	require.NoError(t, err)

	return client
}

func TestNATSObserver_PublishesRequestAndResponse(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	observer := events.NewNATSObserver(publisher, "breeze.test.", nil)
	client := newClient(t, stubTransport{status: http.StatusOK, body: `{"key":"a"}`}, observer)

	_, err := client.Read(context.Background(), "secret-token", "a")
	require.NoError(t, err)

	require.Len(t, publisher.messages, 2)
	assert.Equal(t, "breeze.test.request", publisher.messages[0].subject)
	assert.Equal(t, "breeze.test.response", publisher.messages[1].subject)

	var requestEvent events.RequestEvent
	require.NoError(t, json.Unmarshal(publisher.messages[0].data, &requestEvent))
	assert.Equal(t, http.MethodGet, requestEvent.Method)
	assert.Equal(t, "https://api.example.com/docs/a", requestEvent.URL)
	assert.Equal(t, "***", requestEvent.Headers["Authorization"])
	assert.Equal(t, "application/json", requestEvent.Headers["Content-Type"])
	assert.NotContains(t, string(publisher.messages[0].data), "secret-token")

	var responseEvent events.ResponseEvent
	require.NoError(t, json.Unmarshal(publisher.messages[1].data, &responseEvent))
	assert.Equal(t, http.StatusOK, responseEvent.StatusCode)
	assert.Equal(t, len(`{"key":"a"}`), responseEvent.BodyBytes)
	assert.True(t, responseEvent.Valid)
}

func TestNATSObserver_PublishesTransportErrors(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	observer := events.NewNATSObserver(publisher, "", nil)
	client := newClient(t, stubTransport{err: errNoConnection}, observer)

	_, err := client.List(context.Background(), "", nil)
	require.ErrorIs(t, err, breeze.ErrTransport)

	require.Len(t, publisher.messages, 2)
	assert.Equal(t, "breeze.http.request", publisher.messages[0].subject)
	assert.Equal(t, "breeze.http.error", publisher.messages[1].subject)

	var errorEvent events.ErrorEvent
	require.NoError(t, json.Unmarshal(publisher.messages[1].data, &errorEvent))
	assert.Equal(t, "no connection", errorEvent.Error)
}

func TestNATSObserver_PublishFailureIsLoggedOnly(t *testing.T) {
	t.Parallel()

	logger := &mockLogger{}
	logger.On("Warn", "publishing event", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["error"] == errBrokerDown.Error()
	})).Twice()

	observer := events.NewNATSObserver(failingPublisher{}, "breeze", logger)
	client := newClient(t, stubTransport{status: http.StatusNotFound, body: `{}`}, observer)

	_, err := client.Read(context.Background(), "", "missing")
	assert.True(t, breeze.IsNotFound(err))

	logger.AssertExpectations(t)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := events.Connect("nats://127.0.0.1:1", "breeze-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to NATS")
}
