package payloadkit_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	g "github.com/reoring/goskema/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/payloadkit"
	"github.com/dmitrymomot/payloadkit/pkg/goskemax"
	"github.com/dmitrymomot/payloadkit/pkg/requestid"
)

type todoInput struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type todoRecord struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// todoStore is an in-memory resource with schema-driven POST payloads and
// plain codec output for everything else.
type todoStore struct {
	mu      sync.Mutex
	nextID  int
	records []todoRecord
	schemas *payloadkit.SchemaSet
}

func newTodoStore() *todoStore {
	requestSchema := goskemax.New(g.MustBind[todoInput](g.Object().
		Field("title", g.StringOf[string]()).Required().
		Field("done", g.BoolOf[bool]()).Optional().
		UnknownStrip()))
	responseSchema := goskemax.New(g.MustBind[todoRecord](g.Object().
		Field("id", g.IntOf[int]()).Required().
		Field("title", g.StringOf[string]()).Required().
		Field("done", g.BoolOf[bool]()).Required().
		UnknownStrip()))

	return &todoStore{
		schemas: payloadkit.NewSchemaSet().
			Set(http.MethodPost, payloadkit.DirectionRequest, requestSchema).
			Set(http.MethodPost, payloadkit.DirectionResponse, responseSchema),
	}
}

func (s *todoStore) Schemas() *payloadkit.SchemaSet { return s.schemas }

func (s *todoStore) create(w http.ResponseWriter, r *http.Request) {
	in, ok := payloadkit.Input(r)
	if !ok {
		payloadkit.RenderError(w, r, payloadkit.ErrBadRequest.WithMessage("A request body is required"))
		return
	}
	todo := in.(todoInput)

	s.mu.Lock()
	s.nextID++
	rec := todoRecord{ID: s.nextID, Title: todo.Title, Done: todo.Done}
	s.records = append(s.records, rec)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	payloadkit.SetResult(r, rec)
}

func (s *todoStore) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]todoRecord, len(s.records))
	copy(out, s.records)
	s.mu.Unlock()

	payloadkit.SetResult(r, out)
}

// newTodoRouter assembles the full pipeline the way an application would:
// request IDs and a shared scope at the top, then the content guards and
// the transcoder around the resource routes.
func newTodoRouter(store *todoStore) http.Handler {
	enforcer := payloadkit.NewEnforcer()
	guard := payloadkit.NewEmptyRequestGuard()
	tc := payloadkit.NewTranscoder()

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(payloadkit.ScopeMiddleware)
	r.Route("/todos", func(r chi.Router) {
		r.Use(enforcer.Middleware)
		r.Use(guard.Middleware)
		r.Use(tc.Middleware(store))
		r.Get("/", store.list)
		r.Post("/", store.create)
	})
	return r
}

type errorEnvelope struct {
	Error struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

func decodeErrorEnvelope(t *testing.T, body []byte) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func jsonRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	return r
}

func TestTodoPipeline(t *testing.T) {
	t.Parallel()

	t.Run("creates a todo through the full pipeline", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		req := jsonRequest(http.MethodPost, "/todos", `{"title":"ship it","done":true,"internal":"dropped"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		resp := rec.Result()
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"id":1,"title":"ship it","done":true}`, string(body))
		assert.NotEmpty(t, resp.Header.Get(requestid.Header))
	})

	t.Run("lists todos with the plain codec", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		for _, payload := range []string{`{"title":"write docs"}`, `{"title":"ship it","done":true}`} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/todos", payload))
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, jsonRequest(http.MethodGet, "/todos", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `[
			{"id":1,"title":"write docs","done":false},
			{"id":2,"title":"ship it","done":true}
		]`, rec.Body.String())
	})

	t.Run("missing required field returns 422 with a field map", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/todos", `{"done":true}`))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		envelope := decodeErrorEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "unprocessable_entity", envelope.Error.Code)
		assert.Contains(t, envelope.Error.Details, "title")
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/todos", `{"title": "broken`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeErrorEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "bad_request", envelope.Error.Code)
	})

	t.Run("declared but missing body returns 400", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		req := jsonRequest(http.MethodPost, "/todos", "")
		req.ContentLength = 18

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeErrorEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "bad_request", envelope.Error.Code)
		assert.Contains(t, envelope.Error.Message, "none was received")
	})

	t.Run("wrong content type returns 415", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader("title=ship+it"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		envelope := decodeErrorEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "unsupported_media_type", envelope.Error.Code)
	})

	t.Run("unacceptable accept header returns 406", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		req.Header.Set("Accept", "text/html")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotAcceptable, rec.Code)
		envelope := decodeErrorEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "not_acceptable", envelope.Error.Code)
	})

	t.Run("bodyless post is rejected by the handler", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/todos", ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeErrorEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, "bad_request", envelope.Error.Code)
		assert.Equal(t, "A request body is required", envelope.Error.Message)
	})

	t.Run("echoes a valid client request id", func(t *testing.T) {
		t.Parallel()
		router := newTodoRouter(newTodoStore())

		req := jsonRequest(http.MethodGet, "/todos", "")
		req.Header.Set(requestid.Header, "integration-test-1")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "integration-test-1", rec.Header().Get(requestid.Header))
	})
}
