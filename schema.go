package payloadkit

import (
	"context"
	"reflect"
	"strings"
)

// Direction distinguishes the two halves of the payload pipeline: request
// schemas shape what clients send in, response schemas shape what handlers
// send back.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// Schema validates and converts payloads. Load turns a generically decoded
// request value into a typed one; Dump turns a handler result into the
// serialized response body.
//
// Load and Dump report shape problems by returning a ValidationError
// (possibly wrapped); the pipeline maps those to 422 on requests and 500
// on responses. Any other error is treated as an internal failure.
type Schema interface {
	// Load validates v (the codec-decoded request payload) and returns
	// the typed value handlers should work with.
	Load(ctx context.Context, v any) (any, error)
	// Dump validates v (the handler result) and returns the serialized
	// response body.
	Dump(ctx context.Context, v any) ([]byte, error)
}

// schemaKey identifies a method+direction slot in a SchemaSet.
type schemaKey struct {
	method    string
	direction Direction
}

// SchemaSet maps HTTP methods and directions to schemas. Resolution picks
// the most specific registration: a method+direction entry wins over a
// method entry, which wins over the default.
//
// Methods are matched case-insensitively, so Set("post", ...) and
// Set(http.MethodPost, ...) address the same slot.
//
// A SchemaSet is built once at route registration time and read on every
// request; it must not be mutated after the server starts.
type SchemaSet struct {
	exact    map[schemaKey]Schema
	byMethod map[string]Schema
	fallback Schema
}

// NewSchemaSet creates an empty SchemaSet.
func NewSchemaSet() *SchemaSet {
	return &SchemaSet{
		exact:    make(map[schemaKey]Schema),
		byMethod: make(map[string]Schema),
	}
}

// Set registers schema for the given method and direction. A nil schema
// leaves the slot empty so resolution falls through to the next tier.
// Returns the receiver for chaining.
func (s *SchemaSet) Set(method string, direction Direction, schema Schema) *SchemaSet {
	if schema == nil {
		return s
	}
	s.exact[schemaKey{method: normalizeMethod(method), direction: direction}] = schema
	return s
}

// SetMethod registers schema for both directions of the given method.
func (s *SchemaSet) SetMethod(method string, schema Schema) *SchemaSet {
	if schema == nil {
		return s
	}
	s.byMethod[normalizeMethod(method)] = schema
	return s
}

// SetDefault registers the fallback schema used when no method-specific
// registration matches.
func (s *SchemaSet) SetDefault(schema Schema) *SchemaSet {
	if schema == nil {
		return s
	}
	s.fallback = schema
	return s
}

// Resolve returns the schema for the given method and direction, walking
// the precedence chain from most to least specific. The second return is
// false when no tier has a registration.
func (s *SchemaSet) Resolve(method string, direction Direction) (Schema, bool) {
	if s == nil {
		return nil, false
	}
	method = normalizeMethod(method)
	if sch, ok := s.exact[schemaKey{method: method, direction: direction}]; ok {
		return sch, true
	}
	if sch, ok := s.byMethod[method]; ok {
		return sch, true
	}
	if s.fallback != nil {
		return s.fallback, true
	}
	return nil, false
}

// Schemas implements SchemaProvider, so a bare SchemaSet can stand in as
// the resource wherever one is expected.
func (s *SchemaSet) Schemas() *SchemaSet {
	return s
}

// SchemaProvider is implemented by resources that opt in to schema-driven
// payload handling. Resources without it still pass through the pipeline;
// they just get the plain codec treatment.
type SchemaProvider interface {
	Schemas() *SchemaSet
}

// ResolveSchema resolves the schema a resource declares for the given
// method and direction. Resources that do not implement SchemaProvider,
// or whose Schemas() returns nil, resolve to nothing.
func ResolveSchema(resource any, method string, direction Direction) (Schema, bool) {
	provider, ok := resource.(SchemaProvider)
	if !ok {
		return nil, false
	}
	return provider.Schemas().Resolve(method, direction)
}

func normalizeMethod(method string) string {
	return strings.ToLower(method)
}

// schemaInitialized reports whether sch is usable. A typed nil (for
// example a *UserSchema that was declared but never constructed) satisfies
// the Schema interface while every method call on it would panic; the
// pipeline refuses such registrations up front.
func schemaInitialized(sch Schema) bool {
	if sch == nil {
		return false
	}
	rv := reflect.ValueOf(sch)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
