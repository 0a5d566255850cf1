package httptransport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
)

type echo struct {
	Method string         `json:"method"`
	Path   string         `json:"path"`
	ID     string         `json:"id"`
	Query  string         `json:"query"`
	Body   map[string]any `json:"body"`
	Accept string         `json:"accept"`
	Token  string         `json:"token"`
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	router := httprouter.New()
	handle := func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		e := echo{
			Method: r.Method,
			Path:   r.URL.Path,
			ID:     params.ByName("id"),
			Query:  r.URL.RawQuery,
			Accept: r.Header.Get("Accept"),
			Token:  r.Header.Get("X-Auth-Token"),
		}
		if r.Body != nil {
			content, _ := io.ReadAll(r.Body)
			if len(content) > 0 {
				_ = jsoniter.Unmarshal(content, &e.Body)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if e.ID == "missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_ = jsoniter.NewEncoder(w).Encode(e)
	}
	router.GET("/api/users", handle)
	router.GET("/api/users/:id", handle)
	router.POST("/api/search", handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newTransport(t *testing.T, server *httptest.Server, opts ...Option) *Transport {
	t.Helper()
	router, err := NewRouterFromRoutes(map[string]Route{
		"users.index":  {Method: http.MethodGet, Template: "/users"},
		"users.show":   {Method: http.MethodGet, Template: "/users/{id}"},
		"users.search": {Method: http.MethodPost, Template: "/search"},
	})
	require.NoError(t, err)
	tr, err := New(server.URL+"/api/", router, opts...)
	require.NoError(t, err)
	return tr
}

func execute(t *testing.T, tr *Transport, req session.Request) (*session.Response, echo) {
	t.Helper()
	resp, err := tr.Execute(context.Background(), req)
	require.NoError(t, err)
	var e echo
	require.NoError(t, jsoniter.Unmarshal(resp.Content, &e))
	return resp, e
}

func TestTemplateVariablesAreConsumed(t *testing.T) {
	tr := newTransport(t, newAPI(t))

	resp, e := execute(t, tr, session.Request{
		Route:      "users.show",
		Parameters: map[string]any{"id": "42", "include": "groups"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodGet, e.Method)
	assert.Equal(t, "/api/users/42", e.Path)
	assert.Equal(t, "42", e.ID)
	assert.Equal(t, "include=groups", e.Query)
	assert.Equal(t, "application/json", e.Accept)
}

func TestRemainingParametersBecomeQueryString(t *testing.T) {
	tr := newTransport(t, newAPI(t))

	_, e := execute(t, tr, session.Request{
		Method: http.MethodGet,
		Route:  "users.index",
		Parameters: map[string]any{
			"filter": map[string]any{"name": "alice"},
			"status": []string{"gt:1", "lt:5"},
		},
	})

	assert.Equal(t, "filter%5Bname%5D=alice&status=gt%3A1&status=lt%3A5", e.Query)
}

func TestPostSendsParametersAsJSONBody(t *testing.T) {
	tr := newTransport(t, newAPI(t))

	_, e := execute(t, tr, session.Request{
		Method: http.MethodGet,
		Route:  "users.search",
		Parameters: map[string]any{
			"filters": map[string]any{"type": "or", "parts": []any{}},
		},
	})

	assert.Equal(t, http.MethodPost, e.Method)
	assert.Empty(t, e.Query)
	assert.Equal(t, map[string]any{"filters": map[string]any{"type": "or", "parts": []any{}}}, e.Body)
}

func TestNonSuccessStatusIsAResponse(t *testing.T) {
	tr := newTransport(t, newAPI(t))

	resp, err := tr.Execute(context.Background(), session.Request{
		Route:      "users.show",
		Parameters: map[string]any{"id": "missing"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHeaders(t *testing.T) {
	tr := newTransport(t, newAPI(t), WithHeader("X-Auth-Token", "secret"))

	_, e := execute(t, tr, session.Request{Route: "users.index"})

	assert.Equal(t, "secret", e.Token)
}

func TestUnknownRoute(t *testing.T) {
	tr := newTransport(t, newAPI(t))

	_, err := tr.Execute(context.Background(), session.Request{Route: "groups.index"})

	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestRateLimitHonoursContext(t *testing.T) {
	tr := newTransport(t, newAPI(t), WithRateLimit(0.001, 1))
	_, _ = execute(t, tr, session.Request{Route: "users.index"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := tr.Execute(ctx, session.Request{Route: "users.index"})

	assert.Error(t, err)
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New("/api", NewRouter())
	assert.Error(t, err)
}

func TestRouterResolve(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.Add("servers.index", Route{Template: "/projects/{project_id}/servers"}))
	assert.True(t, r.Has("servers.index"))

	method, path, rest, err := r.Resolve("servers.index", "", map[string]any{
		"project_id": 7,
		"limit":      10,
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "/projects/7/servers", path)
	assert.Equal(t, map[string]any{"limit": 10}, rest)

	assert.Error(t, r.Add("broken", Route{Template: "/users/{id"}))
}
