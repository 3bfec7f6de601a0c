// Package requestid provides HTTP middleware and helper utilities for working
// with request correlation identifiers.
//
// A request ID is a short opaque string that uniquely identifies an incoming
// HTTP request. Propagating the same ID through headers, context, and
// structured logs makes it easy to correlate the log records of a single
// exchange, which matters in a payload pipeline where a request can be
// rejected at several different stages.
//
// # Overview
//
// The package offers:
//
//   - Middleware that attaches a request ID to every request. A valid
//     client-supplied "X-Request-ID" header is reused; otherwise a new
//     UUIDv4 string is generated. The chosen ID is stored in the request
//     context and echoed back in the response header.
//
//   - Context helpers WithContext, FromContext, and FromRequest for
//     storing and extracting request IDs.
//
//   - LoggerExtractor, a context extractor for the logger package that
//     injects the request ID into log attributes automatically.
//
// # Usage
//
//	import (
//		"net/http"
//
//		"github.com/dmitrymomot/payloadkit/pkg/requestid"
//	)
//
//	mux := http.NewServeMux()
//	mux.Handle("/hello", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//		id := requestid.FromRequest(r)
//		w.Write([]byte("hello, your request id is " + id))
//	}))
//
//	http.ListenAndServe(":8080", requestid.Middleware(mux))
//
// # Error Handling
//
// The package does not return errors. Invalid or empty request IDs supplied
// by a client are silently replaced by a freshly generated UUID.
package requestid
