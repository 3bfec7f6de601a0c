package payloadkit

import (
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/dmitrymomot/payloadkit/pkg/contenttype"
)

// Transcoder converts request bodies into typed values before the handler
// runs and handler results into response bodies after it returns. Schemas
// come from the resource via ResolveSchema; when a resource declares none,
// the configured Codec handles the payload generically (unless force
// decoding is disabled).
//
// The decoded request value is stored in the request Scope under the
// request key; handlers leave their result under the result key, most
// conveniently through SetResult.
type Transcoder struct {
	requestKey          string
	resultKey           string
	forceJSON           bool
	codec               Codec
	expectedContentType string
	handleUnexpected    bool
	log                 *slog.Logger
	errorHandler        ErrorHandler
}

// TranscoderOption configures a Transcoder.
type TranscoderOption func(*Transcoder)

// WithRequestKey changes the Scope key for decoded request payloads.
// Defaults to DefaultRequestKey.
func WithRequestKey(key string) TranscoderOption {
	return func(t *Transcoder) {
		if key != "" {
			t.requestKey = key
		}
	}
}

// WithResultKey changes the Scope key handlers use for their result.
// Defaults to DefaultResultKey.
func WithResultKey(key string) TranscoderOption {
	return func(t *Transcoder) {
		if key != "" {
			t.resultKey = key
		}
	}
}

// WithForceJSON controls whether payloads are still run through the plain
// Codec when the resource declares no schema. Enabled by default; disable
// it to leave schemaless exchanges completely untouched.
func WithForceJSON(force bool) TranscoderOption {
	return func(t *Transcoder) {
		t.forceJSON = force
	}
}

// WithCodec replaces the fallback payload codec. Defaults to JSONCodec.
func WithCodec(c Codec) TranscoderOption {
	return func(t *Transcoder) {
		if c != nil {
			t.codec = c
		}
	}
}

// WithExpectedContentType changes the media type whose requests the
// Transcoder decodes. Requests declaring a different Content-Type are
// passed through untouched. Defaults to JSONContentType.
func WithExpectedContentType(ct string) TranscoderOption {
	return func(t *Transcoder) {
		if ct != "" {
			t.expectedContentType = ct
		}
	}
}

// WithHandleUnexpectedContentTypes makes the Transcoder decode every
// request body regardless of its declared Content-Type. Off by default.
func WithHandleUnexpectedContentTypes(handle bool) TranscoderOption {
	return func(t *Transcoder) {
		t.handleUnexpected = handle
	}
}

// WithLogger sets the logger for decode skips and failures.
func WithLogger(log *slog.Logger) TranscoderOption {
	return func(t *Transcoder) {
		if log != nil {
			t.log = log
		}
	}
}

// WithErrorHandler replaces the renderer used by Middleware when a stage
// fails. Defaults to RenderError.
func WithErrorHandler(h ErrorHandler) TranscoderOption {
	return func(t *Transcoder) {
		if h != nil {
			t.errorHandler = h
		}
	}
}

// NewTranscoder creates a Transcoder with the given options applied over
// the defaults: JSON codec, JSON content type, force decoding on, Scope
// keys DefaultRequestKey and DefaultResultKey.
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		requestKey:          DefaultRequestKey,
		resultKey:           DefaultResultKey,
		forceJSON:           true,
		codec:               JSONCodec{},
		expectedContentType: JSONContentType,
		handleUnexpected:    false,
		log:                 slog.Default(),
		errorHandler:        RenderError,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// contentTypeMatches reports whether the request's declared Content-Type
// falls under the expected media type. An absent header counts as a
// match: clients that do not label their payload get the benefit of the
// doubt.
func (t *Transcoder) contentTypeMatches(ct string) bool {
	return ct == "" || contenttype.Match(ct, t.expectedContentType)
}

// DecodeRequest decodes the request body into the Scope under the request
// key. Requests without a body, and requests whose Content-Type is not
// the expected one (unless configured otherwise), pass through untouched.
//
// With a resolved request schema the body is codec-decoded and run
// through Schema.Load; without one the plain codec result is stored when
// force decoding is on. The returned request carries the Scope and must
// replace the caller's.
//
// Failures map to the protocol as follows: a body that is not valid UTF-8
// or cannot be decoded yields 400, a schema validation failure yields 422
// with the field map attached, and everything else is an internal error.
func (t *Transcoder) DecodeRequest(r *http.Request, resource any) (*http.Request, error) {
	if r.ContentLength <= 0 {
		return r, nil
	}

	ct := r.Header.Get("Content-Type")
	if !t.handleUnexpected && !t.contentTypeMatches(ct) {
		t.log.LogAttrs(r.Context(), slog.LevelDebug, "skipping request decode: unexpected content type",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("content_type", ct),
			slog.String("expected", t.expectedContentType),
		)
		return r, nil
	}

	sch, found := ResolveSchema(resource, r.Method, DirectionRequest)
	switch {
	case found:
		if !schemaInitialized(sch) {
			return r, fmt.Errorf("%w: request schema for %s", ErrSchemaNotInitialized, r.Method)
		}

		var sc *Scope
		sc, r = EnsureScope(r)
		body, err := Content(r)
		if err != nil {
			return r, fmt.Errorf("read request body: %w", err)
		}
		if !utf8.Valid(body) {
			return r, ErrBadRequest.WithMessage("Request body must be encoded as UTF-8")
		}

		raw, err := t.codec.Decode(body)
		if err != nil {
			return r, ErrBadRequest.WithMessage("Request must be valid JSON")
		}

		value, err := sch.Load(r.Context(), raw)
		if err != nil {
			if verr, ok := AsValidationError(err); ok {
				return r, ErrUnprocessableEntity.
					WithMessage("Request validation failed").
					WithDetails(verr)
			}
			return r, fmt.Errorf("load request payload: %w", err)
		}
		sc.Set(t.requestKey, value)

	case t.forceJSON:
		var sc *Scope
		sc, r = EnsureScope(r)
		body, err := Content(r)
		if err != nil {
			return r, fmt.Errorf("read request body: %w", err)
		}
		if !utf8.Valid(body) {
			return r, ErrBadRequest.WithMessage(
				"Could not decode the request body; it is either not valid JSON or not encoded as UTF-8",
			)
		}

		value, err := t.codec.Decode(body)
		if err != nil {
			return r, ErrBadRequest.WithMessage(
				"Could not decode the request body; it is either not valid JSON or not encoded as UTF-8",
			)
		}
		sc.Set(t.requestKey, value)
	}

	return r, nil
}

// EncodeResponse serializes the handler result stored under the result
// key into the response body. Requests without a Scope or without a
// stored result produce no output, leaving whatever the handler wrote.
//
// With a resolved response schema the result goes through Schema.Dump;
// without one the plain codec serializes it when force decoding is on.
// A Dump validation failure yields a 500 carrying the field map; a plain
// codec failure yields a deliberately unspecific 500, since the offending
// value is a server-side object that should not leak.
func (t *Transcoder) EncodeResponse(w http.ResponseWriter, r *http.Request, resource any) error {
	sc := ScopeFrom(r.Context())
	if sc == nil {
		return nil
	}
	value, ok := sc.Get(t.resultKey)
	if !ok {
		return nil
	}

	sch, found := ResolveSchema(resource, r.Method, DirectionResponse)
	switch {
	case found:
		if !schemaInitialized(sch) {
			return fmt.Errorf("%w: response schema for %s", ErrSchemaNotInitialized, r.Method)
		}

		body, err := sch.Dump(r.Context(), value)
		if err != nil {
			if verr, ok := AsValidationError(err); ok {
				return ErrInternalServerError.
					WithMessage("Could not serialize the response").
					WithDetails(verr)
			}
			return fmt.Errorf("dump response payload: %w", err)
		}
		return t.writeBody(w, body)

	case t.forceJSON:
		body, err := t.codec.Encode(value)
		if err != nil {
			return ErrInternalServerError.WithMessage(
				"The server attempted to serialize an object that cannot be serialized; this is likely a server-side bug",
			)
		}
		return t.writeBody(w, body)
	}

	return nil
}

// writeBody writes the serialized payload, labeling it with the expected
// media type unless the handler already set a Content-Type.
func (t *Transcoder) writeBody(w http.ResponseWriter, body []byte) error {
	if w.Header().Get("Content-Type") == "" {
		ct := t.expectedContentType
		if ct == JSONContentType {
			ct += "; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write response body: %w", err)
	}
	return nil
}

// Middleware wires both halves of the Transcoder around the next handler
// for the given resource: DecodeRequest before, EncodeResponse after.
// Stage failures are logged and rendered through the configured
// ErrorHandler.
//
//	r.With(t.Middleware(todos)).Post("/todos", todos.Create)
func (t *Transcoder) Middleware(resource any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, r = EnsureScope(r)

			var err error
			r, err = t.DecodeRequest(r, resource)
			if err != nil {
				t.logError(r, "request decode failed", err)
				t.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)

			if err := t.EncodeResponse(w, r, resource); err != nil {
				t.logError(r, "response encode failed", err)
				t.errorHandler(w, r, err)
			}
		})
	}
}

// Handler wraps a resource that is itself an http.Handler, so a single
// value can both declare schemas and serve the request:
//
//	mux.Handle("/todos", t.Handler(todos))
func (t *Transcoder) Handler(resource http.Handler) http.Handler {
	return t.Middleware(resource)(resource)
}

func (t *Transcoder) logError(r *http.Request, msg string, err error) {
	t.log.LogAttrs(r.Context(), errorLogLevel(errorStatus(err)), msg,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}

// Input returns the decoded request payload stored under the Transcoder's
// request key. The second return is false when nothing was decoded.
func (t *Transcoder) Input(r *http.Request) (any, bool) {
	sc := ScopeFrom(r.Context())
	if sc == nil {
		return nil, false
	}
	return sc.Get(t.requestKey)
}

// SetResult stores v as the handler result under the Transcoder's result
// key. It reports false when the request carries no Scope, which means no
// pipeline stage ran before the handler.
func (t *Transcoder) SetResult(r *http.Request, v any) bool {
	sc := ScopeFrom(r.Context())
	if sc == nil {
		return false
	}
	sc.Set(t.resultKey, v)
	return true
}

// Input returns the decoded request payload stored under DefaultRequestKey.
// Handlers behind a default-configured Transcoder can use it directly.
func Input(r *http.Request) (any, bool) {
	sc := ScopeFrom(r.Context())
	if sc == nil {
		return nil, false
	}
	return sc.Get(DefaultRequestKey)
}

// SetResult stores v under DefaultResultKey for the response encoder.
func SetResult(r *http.Request, v any) bool {
	sc := ScopeFrom(r.Context())
	if sc == nil {
		return false
	}
	sc.Set(DefaultResultKey, v)
	return true
}
