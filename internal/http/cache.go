package http

import (
	"net/http"

	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
)

// CachePolicyTransport adds the Cache-Control directive matching the
// request's breeze cache policy when the request does not already set one.
type CachePolicyTransport struct {
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *CachePolicyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	policy, ok := breeze.CachePolicyFromContext(req.Context())
	if !ok || policy.Directive() == "" || req.Header.Get("Cache-Control") != "" {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Cache-Control", policy.Directive())

	return base.RoundTrip(clone)
}
