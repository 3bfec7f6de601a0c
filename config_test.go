package payloadkit_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/payloadkit"
)

func TestTranscoderConfig_EnvTags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg payloadkit.TranscoderConfig
		require.NoError(t, env.Parse(&cfg))

		assert.Equal(t, "json", cfg.RequestKey)
		assert.Equal(t, "result", cfg.ResultKey)
		assert.True(t, cfg.ForceJSON)
		assert.Equal(t, "application/json", cfg.ExpectedContentType)
		assert.False(t, cfg.HandleUnexpectedContentTypes)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PAYLOAD_REQUEST_KEY", "body")
		t.Setenv("PAYLOAD_FORCE_JSON", "false")

		var cfg payloadkit.TranscoderConfig
		require.NoError(t, env.Parse(&cfg))

		assert.Equal(t, "body", cfg.RequestKey)
		assert.False(t, cfg.ForceJSON)
	})
}

func TestEnforcerConfig_EnvTags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg payloadkit.EnforcerConfig
		require.NoError(t, env.Parse(&cfg))

		assert.Equal(t, "application/json", cfg.RequiredContentType)
		assert.Equal(t, []string{"POST", "PUT", "PATCH"}, cfg.RequiredMethods)
	})

	t.Run("method list splits on commas", func(t *testing.T) {
		t.Setenv("PAYLOAD_REQUIRED_METHODS", "POST,DELETE")

		var cfg payloadkit.EnforcerConfig
		require.NoError(t, env.Parse(&cfg))

		assert.Equal(t, []string{"POST", "DELETE"}, cfg.RequiredMethods)
	})
}

func TestNewTranscoderFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("config values drive behavior", func(t *testing.T) {
		t.Parallel()
		tr := payloadkit.NewTranscoderFromConfig(payloadkit.TranscoderConfig{
			RequestKey:          "body",
			ResultKey:           "out",
			ForceJSON:           true,
			ExpectedContentType: "application/json",
		})

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		r.Header.Set("Content-Type", "application/json")
		r, err := tr.DecodeRequest(r, struct{}{})
		require.NoError(t, err)

		sc := payloadkit.ScopeFrom(r.Context())
		require.NotNil(t, sc)
		_, ok := sc.Get("body")
		assert.True(t, ok)
	})

	t.Run("force decoding can be disabled", func(t *testing.T) {
		t.Parallel()
		tr := payloadkit.NewTranscoderFromConfig(payloadkit.TranscoderConfig{ForceJSON: false})

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		r.Header.Set("Content-Type", "application/json")
		r, err := tr.DecodeRequest(r, struct{}{})
		require.NoError(t, err)

		_, ok := tr.Input(r)
		assert.False(t, ok)
	})

	t.Run("options override config", func(t *testing.T) {
		t.Parallel()
		tr := payloadkit.NewTranscoderFromConfig(
			payloadkit.TranscoderConfig{RequestKey: "body", ForceJSON: true},
			payloadkit.WithRequestKey("payload"),
		)

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		r.Header.Set("Content-Type", "application/json")
		r, err := tr.DecodeRequest(r, struct{}{})
		require.NoError(t, err)

		sc := payloadkit.ScopeFrom(r.Context())
		require.NotNil(t, sc)
		_, ok := sc.Get("payload")
		assert.True(t, ok)
		_, ok = sc.Get("body")
		assert.False(t, ok)
	})
}

func TestNewEnforcerFromConfig(t *testing.T) {
	t.Parallel()

	e := payloadkit.NewEnforcerFromConfig(payloadkit.EnforcerConfig{
		RequiredContentType: "application/json",
		RequiredMethods:     []string{"POST", "DELETE"},
	})

	del := httptest.NewRequest(http.MethodDelete, "/", nil)
	var httpErr payloadkit.HTTPError
	require.ErrorAs(t, e.CheckAcceptability(del), &httpErr)
	assert.Equal(t, http.StatusUnsupportedMediaType, httpErr.Code)

	put := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("{}"))
	assert.NoError(t, e.CheckAcceptability(put), "PUT is not in the configured set")
}
