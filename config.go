package payloadkit

// TranscoderConfig carries Transcoder settings in env-taggable form, so
// deployments can tune the pipeline without code changes: the Scope keys
// for decoded input and handler result, whether schemaless payloads still
// go through the plain codec, the media type whose requests get decoded,
// and whether foreign content types are decoded anyway.
//
// Load it with a config loader of your choice and hand it to
// NewTranscoderFromConfig.
type TranscoderConfig struct {
	RequestKey                   string `env:"PAYLOAD_REQUEST_KEY" envDefault:"json"`
	ResultKey                    string `env:"PAYLOAD_RESULT_KEY" envDefault:"result"`
	ForceJSON                    bool   `env:"PAYLOAD_FORCE_JSON" envDefault:"true"`
	ExpectedContentType          string `env:"PAYLOAD_EXPECTED_CONTENT_TYPE" envDefault:"application/json"`
	HandleUnexpectedContentTypes bool   `env:"PAYLOAD_HANDLE_UNEXPECTED_CONTENT_TYPES" envDefault:"false"`
}

// NewTranscoderFromConfig creates a Transcoder from the provided config.
// Only non-empty string values are applied; additional options run
// afterwards and may override them.
func NewTranscoderFromConfig(cfg TranscoderConfig, opts ...TranscoderOption) *Transcoder {
	configOpts := make([]TranscoderOption, 0, 5)

	if cfg.RequestKey != "" {
		configOpts = append(configOpts, WithRequestKey(cfg.RequestKey))
	}
	if cfg.ResultKey != "" {
		configOpts = append(configOpts, WithResultKey(cfg.ResultKey))
	}
	configOpts = append(configOpts, WithForceJSON(cfg.ForceJSON))
	if cfg.ExpectedContentType != "" {
		configOpts = append(configOpts, WithExpectedContentType(cfg.ExpectedContentType))
	}
	configOpts = append(configOpts, WithHandleUnexpectedContentTypes(cfg.HandleUnexpectedContentTypes))

	configOpts = append(configOpts, opts...)

	return NewTranscoder(configOpts...)
}

// EnforcerConfig carries Enforcer settings in env-taggable form: the media
// type both sides of the conversation must speak and the methods whose
// requests must declare it.
type EnforcerConfig struct {
	RequiredContentType string   `env:"PAYLOAD_REQUIRED_CONTENT_TYPE" envDefault:"application/json"`
	RequiredMethods     []string `env:"PAYLOAD_REQUIRED_METHODS" envSeparator:"," envDefault:"POST,PUT,PATCH"`
}

// NewEnforcerFromConfig creates an Enforcer from the provided config.
// Only non-empty values are applied; additional options run afterwards and
// may override them.
func NewEnforcerFromConfig(cfg EnforcerConfig, opts ...EnforcerOption) *Enforcer {
	configOpts := make([]EnforcerOption, 0, 2)

	if cfg.RequiredContentType != "" {
		configOpts = append(configOpts, WithRequiredContentType(cfg.RequiredContentType))
	}
	if len(cfg.RequiredMethods) > 0 {
		configOpts = append(configOpts, WithRequiredMethods(cfg.RequiredMethods...))
	}

	configOpts = append(configOpts, opts...)

	return NewEnforcer(configOpts...)
}
