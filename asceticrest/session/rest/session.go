package rest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/identitymap"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/signals"
)

var hostname string

func init() {
	hostname, _ = os.Hostname()
}

func ExtractRestSession(s session.Session) session.RestSession {
	return s.(session.RestSession)
}

type observableTransport struct {
	base    session.Transport
	session *Session
}

func (t *observableTransport) Execute(ctx context.Context, req session.Request) (*session.Response, error) {
	label := fmt.Sprintf("ascetic-rest.%s.%s.%s", hostname, req.Method, req.Route)
	requestView := &session.RequestViewModel{
		ID:        uuid.New(),
		TimeStart: time.Now(),
		Method:    req.Method,
		Route:     req.Route,
		Label:     label,
	}

	if err := t.session.onRequestStarted.Notify(session.RequestStartedEvent{
		Session:     t.session,
		Sender:      t.session,
		Request:     req,
		RequestView: requestView,
	}); err != nil {
		return nil, err
	}

	resp, err := t.base.Execute(ctx, req)

	responseTime := time.Since(requestView.TimeStart)
	requestView.ResponseTime = &responseTime
	requestView.Err = err
	if resp != nil {
		status := resp.StatusCode
		requestView.Status = &status
	}

	if endErr := t.session.onRequestEnded.Notify(session.RequestEndedEvent{
		Session:     t.session,
		Sender:      t.session,
		Request:     req,
		RequestView: requestView,
	}); endErr != nil && err == nil {
		err = endErr
	}

	return resp, err
}

type Option func(*Session)

// WithIdentityMap configures the map of the session itself. Atomic scopes
// always use Serializable with the same size.
func WithIdentityMap(size int, level identitymap.IsolationLevel) Option {
	return func(s *Session) {
		s.cacheSize = size
		s.identityMap = identitymap.New(size, level)
	}
}

type Session struct {
	ctx              context.Context
	transport        *observableTransport
	parent           session.Session
	cacheSize        int
	identityMap      *identitymap.IdentityMap
	onStarted        signals.Signal[session.SessionScopeStartedEvent]
	onEnded          signals.Signal[session.SessionScopeEndedEvent]
	onRequestStarted signals.Signal[session.RequestStartedEvent]
	onRequestEnded   signals.Signal[session.RequestEndedEvent]
}

func NewSession(ctx context.Context, transport session.Transport, opts ...Option) *Session {
	s := &Session{
		ctx:              ctx,
		parent:           nil,
		cacheSize:        identitymap.DefaultSize,
		identityMap:      identitymap.New(identitymap.DefaultSize, identitymap.ReadUncommitted),
		onStarted:        signals.NewSignal[session.SessionScopeStartedEvent](),
		onEnded:          signals.NewSignal[session.SessionScopeEndedEvent](),
		onRequestStarted: signals.NewSignal[session.RequestStartedEvent](),
		onRequestEnded:   signals.NewSignal[session.RequestEndedEvent](),
	}
	s.transport = &observableTransport{base: transport, session: s}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Execute(req session.Request) (*session.Response, error) {
	return s.transport.Execute(s.ctx, req)
}

func (s *Session) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

func (s *Session) OnAtomicStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.onStarted
}

func (s *Session) OnAtomicEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.onEnded
}

func (s *Session) OnRequestStarted() signals.Signal[session.RequestStartedEvent] {
	return s.onRequestStarted
}

func (s *Session) OnRequestEnded() signals.Signal[session.RequestEndedEvent] {
	return s.onRequestEnded
}

// Atomic runs callback in a scope with its own Serializable identity map, so
// repeated reads inside it are served from memory.
func (s *Session) Atomic(callback session.SessionCallback) error {
	atomicSession := s.makeAtomicSession()

	if err := s.onStarted.Notify(session.SessionScopeStartedEvent{Session: atomicSession}); err != nil {
		return err
	}

	err := callback(atomicSession)

	if s.parent == nil {
		atomicSession.identityMap.Clear()
	}

	if endedErr := s.onEnded.Notify(session.SessionScopeEndedEvent{Session: atomicSession}); err == nil {
		err = endedErr
	}

	return err
}

func (s *Session) makeAtomicSession() *AtomicSession {
	return NewAtomicSession(s.ctx, s.transport.base, s)
}

// AtomicSession shares the request signals of its parent, so observers
// attached to the outer session see every request.
type AtomicSession struct {
	Session
}

func NewAtomicSession(ctx context.Context, transport session.Transport, parent *Session) *AtomicSession {
	s := &AtomicSession{}
	s.ctx = ctx
	s.parent = parent
	s.cacheSize = parent.cacheSize
	s.identityMap = identitymap.New(parent.cacheSize, identitymap.Serializable)
	s.onStarted = signals.NewSignal[session.SessionScopeStartedEvent]()
	s.onEnded = signals.NewSignal[session.SessionScopeEndedEvent]()
	s.onRequestStarted = parent.onRequestStarted
	s.onRequestEnded = parent.onRequestEnded
	s.transport = &observableTransport{base: transport, session: &s.Session}
	return s
}

func (s *AtomicSession) Atomic(callback session.SessionCallback) error {
	atomicSession := s.makeNestedAtomicSession()

	if err := s.onStarted.Notify(session.SessionScopeStartedEvent{Session: atomicSession}); err != nil {
		return err
	}

	err := callback(atomicSession)

	if endedErr := s.onEnded.Notify(session.SessionScopeEndedEvent{Session: atomicSession}); err == nil {
		err = endedErr
	}

	return err
}

func (s *AtomicSession) makeNestedAtomicSession() *AtomicSession {
	nested := &AtomicSession{}
	nested.ctx = s.ctx
	nested.parent = s
	nested.cacheSize = s.cacheSize
	nested.identityMap = s.identityMap
	nested.onStarted = signals.NewSignal[session.SessionScopeStartedEvent]()
	nested.onEnded = signals.NewSignal[session.SessionScopeEndedEvent]()
	nested.onRequestStarted = s.onRequestStarted
	nested.onRequestEnded = s.onRequestEnded
	nested.transport = &observableTransport{base: s.transport.base, session: &nested.Session}
	return nested
}
