// Package payloadkit is an HTTP payload pipeline: a set of composable
// middleware stages that sit between the router and your handlers and
// take care of content negotiation, body caching, and schema-driven
// (de)serialization, so handlers work with typed values instead of raw
// bytes.
//
// The pipeline has three stages, each usable on its own:
//
//   - Enforcer rejects clients that cannot hold a JSON conversation:
//     406 when the Accept header refuses JSON, 415 when a body-carrying
//     request does not declare a JSON Content-Type.
//   - EmptyRequestGuard rejects requests that declare a body but deliver
//     none, so later stages can trust a positive Content-Length.
//   - Transcoder decodes the request body into the per-request Scope
//     before the handler runs and serializes the handler's result into
//     the response body after it returns, consulting the resource's
//     schemas for both directions.
//
// All stages share one Scope, a per-request key/value bag on the request
// context. The body itself is read through Content, which caches the
// bytes in the Scope so any number of stages can inspect the payload
// while r.Body is consumed exactly once.
//
// Basic Usage:
//
//	schemas := payloadkit.NewSchemaSet().
//		Set(http.MethodPost, payloadkit.DirectionRequest, createTodoSchema).
//		SetDefault(todoSchema)
//
//	t := payloadkit.NewTranscoder()
//
//	r := chi.NewRouter()
//	r.Use(payloadkit.NewEnforcer().Middleware)
//	r.Use(payloadkit.NewEmptyRequestGuard().Middleware)
//	r.With(t.Middleware(schemas)).Post("/todos", func(w http.ResponseWriter, r *http.Request) {
//		in, _ := payloadkit.Input(r)   // typed value produced by the schema
//		todo := store.Create(in)
//		payloadkit.SetResult(r, todo)  // serialized by the response half
//	})
//
// Resources declare their schemas by implementing SchemaProvider; a bare
// SchemaSet works too. Resolution picks the most specific registration
// for the method and direction, falling back to a method-wide and then a
// default schema. Resources without schemas still get their payloads
// decoded generically by the configured Codec, unless force decoding is
// turned off.
//
// Error Handling:
//
// Stage failures are rendered as a JSON envelope {"error": {...}} with a
// stable machine-readable code. Schema validation failures carry the
// per-field messages of the ValidationError that caused them; everything
// unclassified collapses to a generic 500 so internals never leak.
// Every stage accepts a custom ErrorHandler when a different wire format
// is needed.
package payloadkit
