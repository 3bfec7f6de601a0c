package payloadkit

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Scope is a per-request key/value bag shared by all pipeline stages and
// the final handler. It travels on the request context, so any stage that
// runs after ScopeMiddleware (or after a stage that called EnsureScope)
// sees the same bag.
//
// A Scope is not safe for concurrent use. HTTP middleware and handlers
// for a single request run sequentially, which is the intended access
// pattern.
type Scope struct {
	values map[string]any
}

// Well-known scope keys used by the pipeline.
const (
	// ContentKey holds the cached request body. Reserved for Content;
	// writing to it directly bypasses the single-read guarantee.
	ContentKey = "content"

	// DefaultRequestKey is where a Transcoder stores the decoded request
	// payload unless configured otherwise.
	DefaultRequestKey = "json"

	// DefaultResultKey is where handlers store the value a Transcoder
	// serializes into the response unless configured otherwise.
	DefaultResultKey = "result"
)

// ErrNoScope is returned by Content when the request carries no Scope.
var ErrNoScope = errors.New("payloadkit: request has no scope; install ScopeMiddleware or call EnsureScope first")

// NewScope creates an empty Scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Get returns the value stored under key. The second return reports
// whether the key is present, so a stored nil is distinguishable from
// an absent key.
func (s *Scope) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *Scope) Set(key string, value any) {
	s.values[key] = value
}

// Delete removes key from the scope. Deleting an absent key is a no-op.
func (s *Scope) Delete(key string) {
	delete(s.values, key)
}

// Len returns the number of keys currently stored.
func (s *Scope) Len() int {
	return len(s.values)
}

// scopeContextKey is the context key under which the Scope travels.
type scopeContextKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFrom returns the Scope carried by ctx, or nil if there is none.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeContextKey{}).(*Scope)
	return s
}

// EnsureScope returns the request's Scope, installing a fresh one if the
// request does not carry one yet. The returned request must replace the
// caller's: it is either r itself or a shallow copy whose context holds
// the new Scope.
//
//	sc, r := payloadkit.EnsureScope(r)
//	sc.Set("user", user)
func EnsureScope(r *http.Request) (*Scope, *http.Request) {
	if s := ScopeFrom(r.Context()); s != nil {
		return s, r
	}
	s := NewScope()
	return s, r.WithContext(WithScope(r.Context(), s))
}

// ScopeMiddleware installs an empty Scope on every request that does not
// already carry one. Mount it once near the top of the chain so all
// downstream stages and handlers share a single bag.
func ScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, r = EnsureScope(r)
		next.ServeHTTP(w, r)
	})
}

// Content returns the request body, reading it from r.Body exactly once
// per request and caching it in the Scope under ContentKey. Subsequent
// calls return the cached bytes without touching r.Body, so any number
// of stages can inspect the body independently.
//
// The request must carry a Scope; otherwise ErrNoScope is returned.
// Read failures are returned verbatim and nothing is cached, leaving the
// decision to retry or fail to the caller.
func Content(r *http.Request) ([]byte, error) {
	s := ScopeFrom(r.Context())
	if s == nil {
		return nil, ErrNoScope
	}
	if v, ok := s.values[ContentKey]; ok {
		b, _ := v.([]byte)
		return b, nil
	}
	if r.Body == nil {
		s.values[ContentKey] = []byte(nil)
		return nil, nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	s.values[ContentKey] = b
	return b, nil
}
