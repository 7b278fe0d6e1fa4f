// Package breezeclient provides the primary entry point for constructing a
// breeze.Client from a breeze.Config.
//
// It layers endpoint normalization, the retrying HTTP transport, codec
// selection and observer wiring on top of the breeze package.
//
// Quick start
//
//	type Note struct {
//	  ID   string `json:"key"`
//	  Text string `json:"text"`
//	}
//
//	func (n Note) Key() string { return n.ID }
//
//	func example(ctx context.Context, token string) {
//	  notes, err := breezeclient.New[Note](&breeze.Config{
//	    BaseURL: "abc123.execute-api.us-east-1.amazonaws.com", // https:// is added
//	    Path:    "notes",
//	    Headers: breeze.Headers{"ClientType": "cli"},
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  page, err := notes.List(ctx, token, &breeze.ListParams{Limit: 50})
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// Transport retries are off unless Config.RetryMax is set. With Debug and a
// Logger, every request and response is logged through breeze.LoggingObserver.
package breezeclient
