package goskemax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goskema "github.com/reoring/goskema"

	"github.com/dmitrymomot/payloadkit"
)

// settings collects adapter construction options.
type settings struct {
	codec payloadkit.Codec
}

// Option configures the adapter returned by New.
type Option func(*settings)

// WithCodec replaces the serializer Dump uses for validated values.
// Defaults to payloadkit.JSONCodec.
func WithCodec(c payloadkit.Codec) Option {
	return func(s *settings) {
		if c != nil {
			s.codec = c
		}
	}
}

// New adapts a goskema schema to the payloadkit.Schema interface.
//
// Load runs the codec-decoded payload through Schema.Parse, so coercion,
// defaults, validation and refinement all apply before the typed value
// reaches the handler. Dump validates the handler result and serializes it
// with the configured codec. Validation failures on either side are
// translated into payloadkit.ValidationError keyed by flattened field
// paths, which the pipeline renders as 422 on requests and 500 on
// responses.
func New[T any](s goskema.Schema[T], opts ...Option) payloadkit.Schema {
	if s == nil {
		panic("goskemax: nil schema")
	}
	cfg := settings{codec: payloadkit.JSONCodec{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return adapter[T]{schema: s, codec: cfg.codec}
}

type adapter[T any] struct {
	schema goskema.Schema[T]
	codec  payloadkit.Codec
}

// Load parses v into the schema's bound type.
func (a adapter[T]) Load(ctx context.Context, v any) (any, error) {
	out, err := a.schema.Parse(ctx, v)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Dump validates v against the schema and serializes it. Typed values (T
// or *T) are checked with ValidateValue; anything else is validated in
// wire shape, which lets handlers return plain maps when convenient.
func (a adapter[T]) Dump(ctx context.Context, v any) ([]byte, error) {
	if tv, ok := v.(T); ok {
		if err := a.schema.ValidateValue(ctx, tv); err != nil {
			return nil, translate(err)
		}
		return a.encode(tv)
	}
	if pv, ok := v.(*T); ok {
		if pv == nil {
			return nil, errors.New("goskemax: nil result value")
		}
		if err := a.schema.ValidateValue(ctx, *pv); err != nil {
			return nil, translate(err)
		}
		return a.encode(*pv)
	}
	if err := a.schema.Validate(ctx, v); err != nil {
		return nil, translate(err)
	}
	return a.encode(v)
}

func (a adapter[T]) encode(v any) ([]byte, error) {
	b, err := a.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("goskemax: encode result: %w", err)
	}
	return b, nil
}

// translate converts goskema issues into a ValidationError the pipeline
// can classify. Errors carrying no issues pass through untouched and end
// up treated as internal failures.
func translate(err error) error {
	iss, ok := goskema.AsIssues(err)
	if !ok {
		return err
	}
	verr := payloadkit.NewValidationError()
	for _, issue := range iss {
		verr.Add(fieldFromPath(issue.Path), issueMessage(issue))
	}
	return verr
}

// fieldFromPath flattens a JSON Pointer like /items/2/price into the
// dotted form items.2.price. Issues against the document root are filed
// under _schema.
func fieldFromPath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "_schema"
	}
	return strings.ReplaceAll(path, "/", ".")
}

func issueMessage(issue goskema.Issue) string {
	if issue.Message != "" {
		return issue.Message
	}
	return issue.Code
}
