package breeze

import (
	"net/http"
)

// Observer is notified of every built request and every received response.
// Implementations must not retain or mutate the values they are given; a
// panicking observer is recovered and ignored.
type Observer interface {
	OnRequest(req *Request)
	OnResponse(body []byte, resp *http.Response)
}

// ErrorObserver is an optional extension of Observer notified when the
// transport fails before any response arrives.
type ErrorObserver interface {
	OnError(req *Request, err error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func notifyRequest(observer Observer, req *Request) {
	if observer == nil {
		return
	}

	defer func() { _ = recover() }()

	observer.OnRequest(req.Clone())
}

func notifyResponse(observer Observer, body []byte, resp *http.Response) {
	if observer == nil {
		return
	}

	defer func() { _ = recover() }()

	observer.OnResponse(body, resp)
}

func notifyError(observer Observer, req *Request, err error) {
	errObserver, ok := observer.(ErrorObserver)
	if !ok {
		return
	}

	defer func() { _ = recover() }()

	errObserver.OnError(req.Clone(), err)
}

// ObserverChain fans notifications out to several observers in order.
// A panic in one member does not stop the others.
type ObserverChain []Observer

// NewObserverChain creates a chain, skipping nil observers.
func NewObserverChain(observers ...Observer) ObserverChain {
	chain := make(ObserverChain, 0, len(observers))

	for _, observer := range observers {
		if observer != nil {
			chain = append(chain, observer)
		}
	}

	return chain
}

// OnRequest implements Observer.
func (c ObserverChain) OnRequest(req *Request) {
	for _, observer := range c {
		notifyRequest(observer, req)
	}
}

// OnResponse implements Observer.
func (c ObserverChain) OnResponse(body []byte, resp *http.Response) {
	for _, observer := range c {
		notifyResponse(observer, body, resp)
	}
}

// OnError implements ErrorObserver.
func (c ObserverChain) OnError(req *Request, err error) {
	for _, observer := range c {
		notifyError(observer, req, err)
	}
}

// LoggingObserver logs requests and responses.
type LoggingObserver struct {
	logger Logger
}

// NewLoggingObserver creates an observer that writes to logger.
func NewLoggingObserver(logger Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// OnRequest implements Observer.
func (o *LoggingObserver) OnRequest(req *Request) {
	fields := map[string]interface{}{
		"method": req.Method,
		"cache":  req.CachePolicy.String(),
	}

	if req.URL != nil {
		fields["url"] = req.URL.String()
	}

	if len(req.Body) > 0 {
		fields["bytes"] = len(req.Body)
	}

	o.logger.Debug("HTTP Request", fields)
}

// OnResponse implements Observer.
func (o *LoggingObserver) OnResponse(body []byte, resp *http.Response) {
	fields := map[string]interface{}{
		"bytes": len(body),
	}

	if resp == nil {
		o.logger.Error("HTTP Response Invalid", fields)

		return
	}

	fields["status_code"] = resp.StatusCode

	if resp.Request != nil {
		fields["method"] = resp.Request.Method
		fields["url"] = resp.Request.URL.String()
	}

	if !successStatus(resp.StatusCode) {
		fields["body"] = string(body)
		o.logger.Error("HTTP Response Error", fields)

		return
	}

	o.logger.Debug("HTTP Response", fields)
}

// OnError implements ErrorObserver.
func (o *LoggingObserver) OnError(req *Request, err error) {
	fields := map[string]interface{}{
		"method": req.Method,
		"error":  err.Error(),
	}

	if req.URL != nil {
		fields["url"] = req.URL.String()
	}

	o.logger.Error("HTTP Transport Error", fields)
}
