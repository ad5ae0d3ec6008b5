package types

import (
	"encoding/json"
	"time"
)

// ResultCallback receives the resolution of an outstanding request. err and
// result are never both set.
type ResultCallback func(err error, result json.RawMessage)

// OutstandingRequest is what the registry holds for a request between
// submission and resolution.
type OutstandingRequest struct {
	Request             *RPCRequest
	ExpectedReturnTypes ReturnType
	Invocation          *Invocation
	Requirement         TransportRequirement
	Transport           TransportKind

	Callback ResultCallback

	Submitted time.Time
	// Timeout expires the request with ErrRequestTimeout when positive.
	Timeout time.Duration
}

// PendingRequest is a read-only view of an outstanding request.
type PendingRequest struct {
	ID          RequestID
	Method      string
	Returns     ReturnType
	Function    string
	Requirement TransportRequirement
	Transport   TransportKind
	Submitted   time.Time
}

func (r *OutstandingRequest) Pending(id RequestID) PendingRequest {
	p := PendingRequest{
		ID:          id,
		Returns:     r.ExpectedReturnTypes,
		Requirement: r.Requirement,
		Transport:   r.Transport,
		Submitted:   r.Submitted,
	}
	if r.Request != nil {
		p.Method = r.Request.Method
	}
	if r.Invocation != nil {
		p.Function = r.Invocation.Name
	}
	return p
}

// RequestRecord is an outstanding request as kept in the journal. Session
// identifies the process that submitted it.
type RequestRecord struct {
	Session string
	PendingRequest
	Payload json.RawMessage
}
