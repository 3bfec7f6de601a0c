package payloadkit

import (
	"log/slog"
	"net/http"
)

// EmptyRequestGuard rejects requests that declare a body but do not
// deliver one, so handlers and decoding stages downstream can rely on a
// non-empty payload whenever Content-Length is positive.
//
// Requests with a zero or absent Content-Length pass through untouched;
// their body is never read, which keeps bodyless GETs and DELETEs cheap.
type EmptyRequestGuard struct {
	log          *slog.Logger
	errorHandler ErrorHandler
}

// GuardOption configures an EmptyRequestGuard.
type GuardOption func(*EmptyRequestGuard)

// WithGuardLogger sets the logger used when requests are rejected.
func WithGuardLogger(log *slog.Logger) GuardOption {
	return func(g *EmptyRequestGuard) {
		if log != nil {
			g.log = log
		}
	}
}

// WithGuardErrorHandler replaces the renderer for rejected requests.
func WithGuardErrorHandler(h ErrorHandler) GuardOption {
	return func(g *EmptyRequestGuard) {
		if h != nil {
			g.errorHandler = h
		}
	}
}

// NewEmptyRequestGuard creates an EmptyRequestGuard. With no options it
// logs through slog.Default and renders rejections with RenderError.
func NewEmptyRequestGuard(opts ...GuardOption) *EmptyRequestGuard {
	g := &EmptyRequestGuard{
		log:          slog.Default(),
		errorHandler: RenderError,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckNonEmpty verifies that a request declaring a positive
// Content-Length actually delivers bytes. The body is read through
// Content, so it lands in the Scope cache and stays available to later
// stages. The returned request carries the Scope and must replace the
// caller's.
//
// An empty delivered body yields an HTTPError with status 400; transport
// read failures are returned as-is.
func (g *EmptyRequestGuard) CheckNonEmpty(r *http.Request) (*http.Request, error) {
	if r.ContentLength <= 0 {
		return r, nil
	}

	_, r = EnsureScope(r)
	body, err := Content(r)
	if err != nil {
		return r, err
	}
	if len(body) == 0 {
		return r, ErrBadRequest.WithMessage(
			"The request declared a body but none was received; a valid payload is required",
		)
	}
	return r, nil
}

// Middleware runs CheckNonEmpty before the next handler and renders any
// rejection through the configured ErrorHandler.
func (g *EmptyRequestGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2, err := g.CheckNonEmpty(r)
		if r2 != nil {
			r = r2
		}
		if err != nil {
			g.log.LogAttrs(r.Context(), errorLogLevel(errorStatus(err)), "request rejected by empty body guard",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int64("content_length", r.ContentLength),
				slog.String("error", err.Error()),
			)
			g.errorHandler(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
