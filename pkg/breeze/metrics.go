package breeze

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Metrics holds counters for one endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsObserver collects per-endpoint request counts, error counts and
// latency. Endpoints are keyed as "METHOD /path" of the request as built, so
// a redirected call is recorded against the path it was issued for. Any
// status outside 2xx counts as an error. Safe for concurrent use.
type MetricsObserver struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	inFlight map[uint64]pendingRequest
	onChange func(endpoint string, metrics Metrics)
	now      func() time.Time
}

// NewMetricsObserver creates an empty metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		metrics:  make(map[string]*Metrics),
		inFlight: make(map[uint64]pendingRequest),
		now:      time.Now,
	}
}

// SetOnChange sets a callback invoked after each recorded response.
func (m *MetricsObserver) SetOnChange(fn func(endpoint string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a snapshot for endpoint, or false if nothing was recorded.
func (m *MetricsObserver) GetMetrics(endpoint string) (Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		return Metrics{}, false
	}

	return *metrics, true
}

// Snapshot returns a copy of all recorded metrics.
func (m *MetricsObserver) Snapshot() map[string]Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metrics, len(m.metrics))
	for endpoint, metrics := range m.metrics {
		out[endpoint] = *metrics
	}

	return out
}

type pendingRequest struct {
	endpoint string
	start    time.Time
}

// InFlight returns the number of requests still waiting for a response.
func (m *MetricsObserver) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.inFlight)
}

// OnRequest implements Observer.
func (m *MetricsObserver) OnRequest(req *Request) {
	if req.ID() == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.inFlight[req.ID()] = pendingRequest{endpoint: requestEndpoint(req), start: m.now()}
}

// OnResponse implements Observer.
func (m *MetricsObserver) OnResponse(_ []byte, resp *http.Response) {
	if resp == nil || resp.Request == nil {
		m.record(0, "invalid response", true)

		return
	}

	id, _ := RequestIDFromContext(resp.Request.Context())

	m.record(id, endpointKey(resp.Request.Method, resp.Request.URL.Path), !successStatus(resp.StatusCode))
}

// OnError implements ErrorObserver.
func (m *MetricsObserver) OnError(req *Request, _ error) {
	m.record(req.ID(), requestEndpoint(req), true)
}

// record counts one finished call. When id matches a pending request, the
// pending endpoint and start time take precedence over fallback.
func (m *MetricsObserver) record(id uint64, fallback string, failed bool) {
	m.mu.Lock()

	endpoint := fallback
	now := m.now()

	pending, tracked := m.inFlight[id]
	if tracked {
		endpoint = pending.endpoint
		delete(m.inFlight, id)
	}

	metrics, ok := m.metrics[endpoint]
	if !ok {
		metrics = &Metrics{}
		m.metrics[endpoint] = metrics
	}

	metrics.TotalRequests++
	metrics.LastRequestTime = now

	if tracked {
		metrics.TotalLatency += now.Sub(pending.start)
	}

	metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)

	if failed {
		metrics.TotalErrors++
	}

	snapshot := *metrics
	onChange := m.onChange

	m.mu.Unlock()

	if onChange != nil {
		onChange(endpoint, snapshot)
	}
}

func requestEndpoint(req *Request) string {
	if req.URL == nil {
		return endpointKey(req.Method, "")
	}

	return endpointKey(req.Method, req.URL.Path)
}

func endpointKey(method, path string) string {
	if path == "" {
		path = "/"
	}

	return fmt.Sprintf("%s %s", method, path)
}
