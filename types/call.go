package types

import (
	"encoding/json"
)

const JSONRPCVersion = "2.0"

// Invocation describes the contract function a call was built for. It is kept
// with the outstanding request and never sent to the node.
type Invocation struct {
	Name string
	From string
	To   string
}

// Call is a JSON-RPC call as assembled by callers, before the local-only
// metadata is stripped off.
type Call struct {
	ID     RequestID
	Method string
	Params []interface{}

	Returns    ReturnType
	Invocation *Invocation
}

// RPCRequest is the wire form of a Call.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      RequestID     `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// RPCResponse is a single JSON-RPC response as received from the node.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// Strip splits the call into what goes on the wire and the return type that
// stays local.
func (c *Call) Strip() (*RPCRequest, ReturnType) {
	params := c.Params
	if params == nil {
		params = []interface{}{}
	}
	return &RPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      c.ID,
		Method:  c.Method,
		Params:  params,
	}, c.Returns
}
