// Package events publishes breeze request and response notifications to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
)

// Publisher publishes raw messages. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// RequestEvent is published on <prefix>.request.
type RequestEvent struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	BodyBytes int               `json:"body_bytes"`
	Cache     string            `json:"cache_policy"`
	Timestamp time.Time         `json:"timestamp"`
}

// ResponseEvent is published on <prefix>.response.
type ResponseEvent struct {
	Method     string    `json:"method,omitempty"`
	URL        string    `json:"url,omitempty"`
	StatusCode int       `json:"status_code"`
	BodyBytes  int       `json:"body_bytes"`
	Valid      bool      `json:"valid"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorEvent is published on <prefix>.error.
type ErrorEvent struct {
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSObserver is a breeze.Observer that publishes every notification as a
// JSON event. Publish failures are logged and never reach the client.
// Authorization header values are masked.
type NATSObserver struct {
	publisher Publisher
	prefix    string
	logger    breeze.Logger
	now       func() time.Time
}

// NewNATSObserver creates an observer publishing under prefix. An empty
// prefix selects the default subject.
func NewNATSObserver(publisher Publisher, prefix string, logger breeze.Logger) *NATSObserver {
	if prefix == "" {
		prefix = constants.DefaultEventSubject
	}

	return &NATSObserver{
		publisher: publisher,
		prefix:    strings.TrimSuffix(prefix, "."),
		logger:    logger,
		now:       time.Now,
	}
}

// Connect dials a NATS server for use with NewNATSObserver.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}

// OnRequest implements breeze.Observer.
func (o *NATSObserver) OnRequest(req *breeze.Request) {
	headers := make(map[string]string, len(req.Header))
	for name, value := range req.Header {
		if strings.EqualFold(name, "Authorization") {
			value = constants.MaskedSecret
		}

		headers[name] = value
	}

	event := RequestEvent{
		Method:    req.Method,
		Headers:   headers,
		BodyBytes: len(req.Body),
		Cache:     req.CachePolicy.String(),
		Timestamp: o.now(),
	}

	if req.URL != nil {
		event.URL = req.URL.String()
	}

	o.publish("request", event)
}

// OnResponse implements breeze.Observer.
func (o *NATSObserver) OnResponse(body []byte, resp *http.Response) {
	event := ResponseEvent{
		BodyBytes: len(body),
		Timestamp: o.now(),
	}

	if resp != nil {
		event.StatusCode = resp.StatusCode
		event.Valid = resp.StatusCode >= 100

		if resp.Request != nil {
			event.Method = resp.Request.Method
			event.URL = resp.Request.URL.String()
		}
	}

	o.publish("response", event)
}

// OnError implements breeze.ErrorObserver.
func (o *NATSObserver) OnError(req *breeze.Request, err error) {
	event := ErrorEvent{
		Method:    req.Method,
		Error:     err.Error(),
		Timestamp: o.now(),
	}

	if req.URL != nil {
		event.URL = req.URL.String()
	}

	o.publish("error", event)
}

func (o *NATSObserver) publish(kind string, event any) {
	subject := o.prefix + "." + kind

	data, err := json.Marshal(event)
	if err != nil {
		o.warn("encoding event", subject, err)

		return
	}

	err = o.publisher.Publish(subject, data)
	if err != nil {
		o.warn("publishing event", subject, err)
	}
}

func (o *NATSObserver) warn(msg, subject string, err error) {
	if o.logger == nil {
		return
	}

	o.logger.Warn(msg, map[string]interface{}{
		"subject": subject,
		"error":   err.Error(),
	})
}
