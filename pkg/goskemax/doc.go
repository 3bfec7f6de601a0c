// Package goskemax bridges goskema schemas into the payloadkit pipeline.
//
// goskema (github.com/reoring/goskema) is a schema DSL with coercion,
// defaults, unknown-key policies and typed struct binding. payloadkit's
// Transcoder only asks schemas for two operations, Load and Dump. New wraps
// any goskema.Schema[T] so the full goskema parse pipeline runs behind that
// interface.
//
// # Usage
//
//	import (
//		"net/http"
//
//		g "github.com/reoring/goskema/dsl"
//
//		"github.com/dmitrymomot/payloadkit"
//		"github.com/dmitrymomot/payloadkit/pkg/goskemax"
//	)
//
//	type CreateTodo struct {
//		Title string `json:"title"`
//		Done  bool   `json:"done"`
//	}
//
//	var createTodo = goskemax.New(g.MustBind[CreateTodo](g.Object().
//		Field("title", g.StringOf[string]()).Required().
//		Field("done", g.BoolOf[bool]()).Optional().
//		UnknownStrip()))
//
//	schemas := payloadkit.NewSchemaSet().
//		Set(http.MethodPost, payloadkit.DirectionRequest, createTodo)
//
// Handlers then read the typed value from the request Scope:
//
//	in, _ := payloadkit.Input(r)
//	todo := in.(CreateTodo)
//
// # Error Translation
//
// goskema reports validation failures as an Issues slice with JSON Pointer
// paths. The adapter flattens each path into a dotted field name (for
// example /items/2/price becomes items.2.price, and the document root
// becomes _schema) and collects the messages into a
// payloadkit.ValidationError. Errors that are not goskema issues pass
// through unchanged and are treated as internal failures by the pipeline.
package goskemax
