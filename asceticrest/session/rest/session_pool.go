package rest

import (
	"context"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/signals"
)

type SessionPool struct {
	transport        session.Transport
	options          []Option
	onSessionStarted signals.Signal[session.SessionScopeStartedEvent]
	onSessionEnded   signals.Signal[session.SessionScopeEndedEvent]
}

// NewSessionPool hands out sessions over transport. The options apply to
// every session.
func NewSessionPool(transport session.Transport, opts ...Option) *SessionPool {
	return &SessionPool{
		transport:        transport,
		options:          opts,
		onSessionStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onSessionEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
	}
}

func (p *SessionPool) OnSessionStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return p.onSessionStarted
}

func (p *SessionPool) OnSessionEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return p.onSessionEnded
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess := NewSession(ctx, p.transport, p.options...)

	if err := p.onSessionStarted.Notify(session.SessionScopeStartedEvent{Session: sess}); err != nil {
		return err
	}

	err := callback(sess)

	if endedErr := p.onSessionEnded.Notify(session.SessionScopeEndedEvent{Session: sess}); err == nil {
		err = endedErr
	}

	return err
}
