package payloadkit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/payloadkit/pkg/contenttype"
)

// JSONContentType is the media type the pipeline speaks by default.
const JSONContentType = "application/json"

// defaultBodyMethods are the methods expected to carry a request body.
func defaultBodyMethods() map[string]struct{} {
	return map[string]struct{}{
		http.MethodPost:  {},
		http.MethodPut:   {},
		http.MethodPatch: {},
	}
}

// Enforcer rejects requests that cannot take part in a JSON conversation:
// clients whose Accept header refuses JSON responses get 406, and
// body-carrying requests that do not declare a JSON Content-Type get 415.
//
// Mount it in front of routes that only ever speak JSON; routes that
// negotiate other formats should not use it.
type Enforcer struct {
	contentType  string
	methods      map[string]struct{}
	log          *slog.Logger
	errorHandler ErrorHandler
}

// EnforcerOption configures an Enforcer.
type EnforcerOption func(*Enforcer)

// WithRequiredMethods replaces the set of methods whose requests must
// declare the required Content-Type. Defaults to POST, PUT, and PATCH.
func WithRequiredMethods(methods ...string) EnforcerOption {
	return func(e *Enforcer) {
		e.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			e.methods[strings.ToUpper(m)] = struct{}{}
		}
	}
}

// WithRequiredContentType replaces the media type the Enforcer demands in
// both directions. Defaults to JSONContentType.
func WithRequiredContentType(ct string) EnforcerOption {
	return func(e *Enforcer) {
		e.contentType = ct
	}
}

// WithEnforcerLogger sets the logger used when requests are rejected.
func WithEnforcerLogger(log *slog.Logger) EnforcerOption {
	return func(e *Enforcer) {
		if log != nil {
			e.log = log
		}
	}
}

// WithEnforcerErrorHandler replaces the renderer for rejected requests.
func WithEnforcerErrorHandler(h ErrorHandler) EnforcerOption {
	return func(e *Enforcer) {
		if h != nil {
			e.errorHandler = h
		}
	}
}

// NewEnforcer creates an Enforcer with the given options applied over the
// defaults: JSON content type, POST/PUT/PATCH body methods, RenderError.
func NewEnforcer(opts ...EnforcerOption) *Enforcer {
	e := &Enforcer{
		contentType:  JSONContentType,
		methods:      defaultBodyMethods(),
		log:          slog.Default(),
		errorHandler: RenderError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckAcceptability verifies that the request can participate in an
// exchange of the required content type. It returns an HTTPError with
// status 406 when the Accept header excludes the required type, and one
// with status 415 when a body-carrying method does not declare it in
// Content-Type. A nil return means the request may proceed.
//
// The Content-Type check is a substring match, so parameterized headers
// like "application/json; charset=utf-8" pass.
func (e *Enforcer) CheckAcceptability(r *http.Request) error {
	if !contenttype.Accepts(r.Header.Get("Accept"), e.contentType) {
		return ErrNotAcceptable.WithMessage(fmt.Sprintf(
			"This server only sends responses encoded as %s; check your Accept header", e.contentType,
		))
	}

	if _, required := e.methods[strings.ToUpper(r.Method)]; required {
		if !strings.Contains(r.Header.Get("Content-Type"), e.contentType) {
			return ErrUnsupportedMediaType.WithMessage(fmt.Sprintf(
				"%s requests must declare %q in their Content-Type header", r.Method, e.contentType,
			))
		}
	}

	return nil
}

// Middleware runs CheckAcceptability before the next handler and renders
// any rejection through the configured ErrorHandler.
func (e *Enforcer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := e.CheckAcceptability(r); err != nil {
			e.log.LogAttrs(r.Context(), slog.LevelWarn, "request rejected by content enforcer",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("accept", r.Header.Get("Accept")),
				slog.String("content_type", r.Header.Get("Content-Type")),
				slog.String("error", err.Error()),
			)
			e.errorHandler(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
