package httptransport

import (
	"errors"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/yosida95/uritemplate/v3"

	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

var ErrUnknownRoute = errors.New("httptransport: unknown route")

// Route maps a logical route name to an HTTP method and an RFC 6570 URI
// template such as "/users/{id}" or "/projects/{project_id}/servers{?fields*}".
type Route struct {
	Method   string
	Template string
}

type compiledRoute struct {
	method   string
	template *uritemplate.Template
	varnames []string
}

type Router struct {
	mu     sync.RWMutex
	routes map[string]compiledRoute
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]compiledRoute)}
}

// NewRouterFromRoutes compiles every route, failing on the first bad
// template.
func NewRouterFromRoutes(routes map[string]Route) (*Router, error) {
	r := NewRouter()
	for name, route := range routes {
		if err := r.Add(name, route); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Router) Add(name string, route Route) error {
	tpl, err := uritemplate.New(route.Template)
	if err != nil {
		return pkgerrors.Wrapf(err, "httptransport: route %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = compiledRoute{
		method:   strings.ToUpper(route.Method),
		template: tpl,
		varnames: tpl.Varnames(),
	}
	return nil
}

func (r *Router) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[name]
	return ok
}

// Resolve expands the route template with the parameters it names and
// returns the remaining parameters. The route method wins over method;
// GET is used when neither is set.
func (r *Router) Resolve(name, method string, params map[string]any) (string, string, map[string]any, error) {
	r.mu.RLock()
	route, ok := r.routes[name]
	r.mu.RUnlock()
	if !ok {
		return "", "", nil, pkgerrors.Wrap(ErrUnknownRoute, name)
	}

	values := uritemplate.Values{}
	rest := make(map[string]any, len(params))
	for key, value := range params {
		if !slices.Contains(route.varnames, key) {
			rest[key] = value
			continue
		}
		values.Set(key, templateValue(value))
	}
	path, err := route.template.Expand(values)
	if err != nil {
		return "", "", nil, pkgerrors.Wrapf(err, "httptransport: expand route %s", name)
	}

	switch {
	case route.method != "":
		method = route.method
	case method == "":
		method = http.MethodGet
	}
	return strings.ToUpper(method), path, rest, nil
}

func templateValue(value any) uritemplate.Value {
	switch v := value.(type) {
	case nil:
		return uritemplate.String("")
	case []string:
		return uritemplate.List(v...)
	case map[string]string:
		kv := make([]string, 0, len(v)*2)
		for _, key := range slices.Sorted(maps.Keys(v)) {
			kv = append(kv, key, v[key])
		}
		return uritemplate.KV(kv...)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = specification.FormatValue(rv.Index(i).Interface())
		}
		return uritemplate.List(items...)
	}
	return uritemplate.String(specification.FormatValue(value))
}
