package session

import (
	"context"
	"net/http"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/identitymap"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/signals"
)

type SessionCallback func(Session) error

type Session interface {
	Context() context.Context
	Atomic(SessionCallback) error
}

type SessionPoolCallback func(Session) error

type SessionPool interface {
	Session(context.Context, SessionPoolCallback) error
}

// Rest

// Request addresses a logical route. The transport owns route-to-URL
// resolution: template variables are taken from Parameters and whatever is
// left is sent as query string or body.
type Request struct {
	Method     string
	Route      string
	Parameters map[string]any
	Body       any
}

type Response struct {
	StatusCode int
	Header     http.Header
	Content    []byte
}

type Transport interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

type TransportFunc func(ctx context.Context, req Request) (*Response, error)

func (f TransportFunc) Execute(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

type RestSession interface {
	Session
	Execute(req Request) (*Response, error)
	IdentityMap() *identitymap.IdentityMap
}

// ObservableSession publishes a pair of events around every request.
type ObservableSession interface {
	OnRequestStarted() signals.Signal[RequestStartedEvent]
	OnRequestEnded() signals.Signal[RequestEndedEvent]
}
