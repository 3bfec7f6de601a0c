// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// A single factory, New, creates a *slog.Logger configured by Option
// functions:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled
//     from a context value (for example a request id) every time Handle
//     is invoked.
//
// # Architecture
//
// New picks the concrete slog.Handler implementation (slog.NewTextHandler
// or slog.NewJSONHandler) based on the configured Format, then wraps it
// with LogHandlerDecorator, which runs the registered ContextExtractor
// callbacks before delegating to the underlying handler.
//
// Helper constructors such as Error, Method, Path, Status, and MediaType
// live in attr.go and keep attribute naming consistent across the
// payload pipeline's log output.
//
// # Usage
//
//	import "github.com/dmitrymomot/payloadkit/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithDevelopment("todo-api"),
//	        logger.WithContextExtractors(requestid.LoggerExtractor()),
//	    )
//	    logger.SetAsDefault(log)
//
//	    log.InfoContext(ctx, "request decoded",
//	        logger.Method("POST"),
//	        logger.Path("/todos"),
//	        logger.MediaType("application/json"),
//	    )
//	}
//
// # Error Handling
//
// Error and Errors produce attributes only when the supplied error value
// is non-nil, allowing calls like:
//
//	log.Info("operation finished", logger.Error(err))
//
// without an additional nil check.
package logger
