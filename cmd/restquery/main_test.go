package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEncodeSimple(t *testing.T) {
	out, _, err := run(t, "encode",
		"--filter", `{"status":"active","age":{"$gte":3}}`,
		"--order", "-date,name",
		"--page", "2", "--per-page", "10",
		"--include", "groups.permissions",
	)

	require.NoError(t, err)
	assert.Equal(t, "age=gte%3A3&include=groups.permissions&order=-date%2Cname&page=2&per_page=10&status=active\n", out)
}

func TestEncodeOpenStack(t *testing.T) {
	out, _, err := run(t, "encode", "--dialect", "openstack",
		"--filter", `{"name":{"$nin":["a","b"]}}`,
		"--limit", "5", "--marker", "abc",
		"--order", "name",
	)

	require.NoError(t, err)
	assert.Equal(t, "limit=5&marker=abc&name=nin%3Aa%2Cb&sort=name%3Aasc\n", out)
}

func TestEncodeJSON(t *testing.T) {
	out, _, err := run(t, "encode", "--json", "--dialect", "jsonapi", "--filter", `{"status":"active"}`)

	require.NoError(t, err)
	assert.JSONEq(t, `{"filter":{"status":"active"}}`, out)
}

func TestEncodeRejectsDisjunctionForFlatDialect(t *testing.T) {
	_, _, err := run(t, "encode", "--filter", `{"$or":[{"a":1},{"b":2}]}`)
	assert.Error(t, err)
}

func TestEncodeRejectsUnknownDialect(t *testing.T) {
	_, _, err := run(t, "encode", "--dialect", "graphql")
	assert.Error(t, err)
}

func newAPI(t *testing.T, users map[string]string) *httptest.Server {
	t.Helper()
	router := httprouter.New()
	router.GET("/users", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		items := make([]string, 0, len(users))
		for _, id := range []string{"1", "2"} {
			items = append(items, fmt.Sprintf(`{"id":%s,"name":%q}`, id, users[id]))
		}
		fmt.Fprintf(w, `{"data":[%s],"meta":{"total":7,"current_page":1,"per_page":2}}`, strings.Join(items, ","))
	})
	router.GET("/users/:id", func(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
		name, ok := users[params.ByName("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"not found"}`)
			return
		}
		fmt.Fprintf(w, `{"data":{"id":%s,"name":%q}}`, params.ByName("id"), name)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	content := fmt.Sprintf(`
base_url: %s
routes:
  users.index:
    template: /users
  users.show:
    template: /users/{id}
log:
  level: error
`, baseURL)
	path := filepath.Join(t.TempDir(), "restquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetList(t *testing.T) {
	users := map[string]string{"1": faker.Name().Name(), "2": faker.Name().Name()}
	path := writeConfig(t, newAPI(t, users).URL)

	out, stderr, err := run(t, "--config", path, "get", "users", "--stats")

	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`[{"id":1,"name":%q},{"id":2,"name":%q}]`, users["1"], users["2"]), out)
	assert.Contains(t, stderr, "restquery_rest_requests_total GET users.index 200 1")
}

func TestGetOne(t *testing.T) {
	users := map[string]string{"1": faker.Name().Name()}
	path := writeConfig(t, newAPI(t, users).URL)

	out, _, err := run(t, "--config", path, "get", "users", "--id", "1")

	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"id":1,"name":%q}`, users["1"]), out)
}

func TestGetMissing(t *testing.T) {
	path := writeConfig(t, newAPI(t, map[string]string{}).URL)

	_, _, err := run(t, "--config", path, "get", "users", "--id", "9")

	assert.Error(t, err)
}

func TestGetPage(t *testing.T) {
	users := map[string]string{"1": "alice", "2": "bob"}
	path := writeConfig(t, newAPI(t, users).URL)

	out, _, err := run(t, "--config", path, "get", "users", "--page", "1", "--per-page", "2")

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"items": [{"id":1,"name":"alice"},{"id":2,"name":"bob"}],
		"total": 7,
		"current_page": 1,
		"per_page": 2
	}`, out)
}

func TestGetWithIncludesPrintsRecords(t *testing.T) {
	users := map[string]string{"1": "alice", "2": "bob"}
	path := writeConfig(t, newAPI(t, users).URL)

	out, _, err := run(t, "--config", path, "get", "users", "--include", "groups", "--id", "2")

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":"bob"}`, out)
}
