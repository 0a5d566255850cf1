package httptransport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	encoders "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/infrastructure"
)

type Option func(*Transport)

func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		t.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.timeout = timeout
	}
}

// WithRateLimit throttles outgoing requests to rps per second with the
// given burst. Waiting honours the request context.
func WithRateLimit(rps float64, burst int) Option {
	return func(t *Transport) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func WithHeader(name, value string) Option {
	return func(t *Transport) {
		t.headers.Set(name, value)
	}
}

// Transport executes logical requests over HTTP. Parameters not consumed
// by the route template become the query string for GET, HEAD and DELETE
// and the JSON body otherwise. Any status code is returned as a response.
type Transport struct {
	baseURL *url.URL
	router  *Router
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	headers http.Header
	json    jsoniter.API
}

func New(baseURL string, router *Router, opts ...Option) (*Transport, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "httptransport: base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("httptransport: base url %q is not absolute", baseURL)
	}
	t := &Transport{
		baseURL: u,
		router:  router,
		headers: http.Header{"Accept": []string{"application/json"}},
		json:    jsoniter.ConfigCompatibleWithStandardLibrary,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: t.timeout}
	}
	return t, nil
}

func (t *Transport) Router() *Router {
	return t.router
}

func (t *Transport) Execute(ctx context.Context, req session.Request) (*session.Response, error) {
	method, path, rest, err := t.router.Resolve(req.Route, req.Method, req.Parameters)
	if err != nil {
		return nil, err
	}

	target, err := url.Parse(t.baseURL.String() + path)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: url of %s", req.Route)
	}

	var body io.Reader
	switch {
	case req.Body != nil:
		content, err := t.json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "httptransport: encode body of %s", req.Route)
		}
		body = bytes.NewReader(content)
		appendQuery(target, rest)
	case hasBody(method) && len(rest) > 0:
		content, err := t.json.Marshal(rest)
		if err != nil {
			return nil, errors.Wrapf(err, "httptransport: encode body of %s", req.Route)
		}
		body = bytes.NewReader(content)
	default:
		appendQuery(target, rest)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(err, "httptransport: rate limit %s", req.Route)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: build %s", req.Route)
	}
	for name, values := range t.headers {
		httpReq.Header[name] = values
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: %s %s", method, req.Route)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "httptransport: read %s", req.Route)
	}
	return &session.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Content:    content,
	}, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return false
	}
	return true
}

func appendQuery(target *url.URL, params map[string]any) {
	if len(params) == 0 {
		return
	}
	encoded := encoders.Params(params).Encode()
	if target.RawQuery != "" {
		target.RawQuery += "&" + encoded
	} else {
		target.RawQuery = encoded
	}
}
