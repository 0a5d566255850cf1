package session

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type SessionScopeStartedEvent struct {
	Session Session
}

type SessionScopeEndedEvent struct {
	Session Session
}

type RequestViewModel struct {
	ID           uuid.UUID
	TimeStart    time.Time
	Method       string
	Route        string
	Label        string
	Status       *int
	ResponseTime *time.Duration
	Err          error
}

func (r RequestViewModel) String() string {
	if r.Status != nil {
		return r.Label + "." + strconv.Itoa(*r.Status)
	}
	return r.Label
}

type RequestStartedEvent struct {
	Session     Session
	Sender      any
	Request     Request
	RequestView *RequestViewModel
}

type RequestEndedEvent struct {
	Session     Session
	Sender      any
	Request     Request
	RequestView *RequestViewModel
}
