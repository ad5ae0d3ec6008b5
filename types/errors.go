package types

import (
	"encoding/json"
	"fmt"

	"golang.org/x/xerrors"
)

// Codes in the JSON-RPC implementation-defined range, used for failures raised
// on this side of the wire.
const (
	CodeNoResponse       int64 = -32090
	CodeSyncNoResolution int64 = -32091
	CodeTimeout          int64 = -32092
	CodeDispatch         int64 = -32093
	CodeBadResult        int64 = -32094
	CodeContractError    int64 = -32095
)

// RPCError is an error reported by the node or raised locally on its behalf.
type RPCError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`

	// Result is the payload the error was detected in, kept as received.
	Result json.RawMessage `json:"-"`

	cause error
	// local marks errors raised on this side of the wire; node errors never
	// carry it, whatever their code.
	local bool
}

func (e *RPCError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) Unwrap() error {
	return e.cause
}

// Is matches any RPCError with the same code raised on the same side of the
// wire.
func (e *RPCError) Is(target error) bool {
	t, ok := target.(*RPCError)
	return ok && t.Code == e.Code && t.local == e.local
}

// WithCause returns a copy of e that wraps cause.
func (e *RPCError) WithCause(cause error) *RPCError {
	cp := *e
	cp.cause = cause
	return &cp
}

var (
	ErrNoResponse       = &RPCError{Code: CodeNoResponse, Message: "no response", local: true}
	ErrSyncNoResolution = &RPCError{Code: CodeSyncNoResolution, Message: "synchronous request received no resolution before returning", local: true}
	ErrRequestTimeout   = &RPCError{Code: CodeTimeout, Message: "request timed out", local: true}
	ErrDispatch         = &RPCError{Code: CodeDispatch, Message: "request could not be dispatched", local: true}
)

// IsProtocolError reports whether err means the node never answered, as
// opposed to answering with a failure.
func IsProtocolError(err error) bool {
	var rerr *RPCError
	if !xerrors.As(err, &rerr) || !rerr.local {
		return false
	}
	switch rerr.Code {
	case CodeNoResponse, CodeSyncNoResolution, CodeTimeout, CodeDispatch:
		return true
	}
	return false
}

var (
	ErrCallbackRequired = xerrors.New("callback must be a function")

	ErrBadRequirement = xerrors.New("transport requirement must be null or a string")
	ErrNilCall        = xerrors.New("call must be an object")
	ErrMissingID      = xerrors.New("call id must be a non-zero number")

	ErrDuplicateRequest = xerrors.New("request id already outstanding")
	ErrUnknownRequest   = xerrors.New("no outstanding request for id")
	ErrNoTransport      = xerrors.New("no transport satisfies requirement")
)
