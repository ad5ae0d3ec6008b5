package api

import (
	"context"
	"encoding/json"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// EthRPC is the daemon API.
type EthRPC interface {
	Common

	// CallContract calls a contract function through the node and waits for
	// its classified result.
	CallContract(ctx context.Context, tx *types.Transaction) (*CallResult, error)

	// Outstanding lists requests waiting for a resolution.
	Outstanding(ctx context.Context) ([]types.PendingRequest, error)
	// StaleRequests lists journaled requests left by previous runs.
	StaleRequests(ctx context.Context) ([]*types.RequestRecord, error)

	Transports(ctx context.Context) ([]types.TransportKind, error)
}

type CallResult struct {
	Function string
	Returns  types.ReturnType
	// Value is the converted result, JSON encoded so that big numbers survive
	// the API.
	Value json.RawMessage
}
