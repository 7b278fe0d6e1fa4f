// Package breeze provides a generic typed client for CRUD-style REST
// resources.
//
// # Overview
//
// A resource is any type implementing KeyedItem. Client[T] builds requests
// for create, read, update, delete and list against one resource path,
// executes them on the Environment's transport, validates the status and
// decodes the JSON body into T. List responses are unwrapped from the
// {"items": [...]} envelope.
//
// Getting a client
//
//	type Item struct {
//	  ID   string `json:"key"`
//	  Name string `json:"name"`
//	}
//
//	func (i Item) Key() string { return i.ID }
//
//	env, err := breeze.NewEnvironment(http.DefaultClient, "https://api.example.com")
//	if err != nil { log.Fatal(err) }
//
//	items, err := breeze.NewClient[Item](env, "item",
//	  breeze.WithAdditionalHeaders(breeze.Headers{"ClientType": "cli"}))
//	if err != nil { log.Fatal(err) }
//
//	created, err := items.Create(ctx, token, Item{ID: "a", Name: "first"})
//
// Most consumers build the transport and environment from a Config with
// breezeclient.New instead.
//
// # Headers
//
// Every request carries Content-Type: application/json and
// cache-control: no-cache. Additional headers override those by name. A
// non-empty token adds Authorization: Bearer <token> for that call only,
// replacing any configured Authorization header. WithStaticHeaders switches
// the client to a fixed, caller-supplied header set with no token handling.
//
// # Errors
//
// A non-2xx status is returned as *HTTPError carrying the raw body; use
// IsNotFound, IsConflict or StatusCode to classify it. Decoding failures wrap
// ErrDecode, transport failures wrap ErrTransport, and malformed responses
// return ErrInvalidResponse.
//
// # Observers
//
// An Observer sees every built request and every received response, on
// success and failure alike. LoggingObserver, MetricsObserver and
// ObserverChain are provided. Observer panics never reach the caller.
//
// # Pagination and batches
//
//	pager := breeze.NewPaginator[Item](ctx, items, token, 100, "")
//	all, err := pager.All()
//
// BatchExecutor runs many operations concurrently with a concurrency limit
// and a per-operation timeout.
package breeze
