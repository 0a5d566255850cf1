package testutils

import (
	"context"
	"net/http"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/rest"
)

type HandlerFunc func(req session.Request) (*session.Response, error)

// TransportStub replays scripted responses per logical route and records
// every request it receives. Responses queued for a route are consumed in
// order; the last one keeps answering once the queue is drained.
type TransportStub struct {
	mu       sync.Mutex
	handlers map[string][]HandlerFunc
	requests []session.Request
}

func NewTransportStub() *TransportStub {
	return &TransportStub{handlers: make(map[string][]HandlerFunc)}
}

// NewRestSessionStub wraps the stub into a real REST session.
func NewRestSessionStub(stub *TransportStub) *rest.Session {
	return rest.NewSession(context.Background(), stub)
}

// On queues a response; body is sent as is when it is a string or []byte and
// JSON encoded otherwise.
func (t *TransportStub) On(route string, status int, body any) *TransportStub {
	content, err := marshal(body)
	if err != nil {
		panic(err)
	}
	return t.Handle(route, func(session.Request) (*session.Response, error) {
		return &session.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Content:    content,
		}, nil
	})
}

func (t *TransportStub) OnError(route string, err error) *TransportStub {
	return t.Handle(route, func(session.Request) (*session.Response, error) {
		return nil, err
	})
}

func (t *TransportStub) Handle(route string, handler HandlerFunc) *TransportStub {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[route] = append(t.handlers[route], handler)
	return t
}

func (t *TransportStub) Execute(_ context.Context, req session.Request) (*session.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	queue := t.handlers[req.Route]
	var handler HandlerFunc
	if len(queue) > 0 {
		handler = queue[0]
		if len(queue) > 1 {
			t.handlers[req.Route] = queue[1:]
		}
	}
	t.mu.Unlock()

	if handler == nil {
		return &session.Response{
			StatusCode: http.StatusNotFound,
			Content:    []byte(`{"message":"route is not stubbed"}`),
		}, nil
	}
	return handler(req)
}

func (t *TransportStub) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

func (t *TransportStub) CallsTo(route string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, r := range t.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

func (t *TransportStub) Requests() []session.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]session.Request(nil), t.requests...)
}

func (t *TransportStub) LastRequest() (session.Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return session.Request{}, false
	}
	return t.requests[len(t.requests)-1], true
}

func (t *TransportStub) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = nil
}

func marshal(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(body)
}
