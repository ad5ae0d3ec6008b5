package transact

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("transact")

const (
	MethodCall            = "eth_call"
	MethodSendTransaction = "eth_sendTransaction"

	DefaultBlock = "latest"
)

// Submitter sends an assembled call. See rpc.Submitter.
type Submitter interface {
	SubmitRequest(ctx context.Context, call *types.Call, requirement interface{}, callback types.ResultCallback) (json.RawMessage, error)
}

// Transactor turns contract transactions into eth_call or eth_sendTransaction
// requests.
type Transactor struct {
	submitter Submitter
	encoder   Encoder
	ids       *types.IDAllocator

	requirement  types.TransportRequirement
	defaultBlock string
}

type TransactorOption func(*Transactor)

// WithRequirement sets the transport requirement used for calls that have a
// callback.
func WithRequirement(req types.TransportRequirement) TransactorOption {
	return func(t *Transactor) {
		t.requirement = req
	}
}

// WithDefaultBlock sets the block tag eth_call is evaluated at.
func WithDefaultBlock(block string) TransactorOption {
	return func(t *Transactor) {
		if block != "" {
			t.defaultBlock = block
		}
	}
}

func NewTransactor(submitter Submitter, encoder Encoder, ids *types.IDAllocator, opts ...TransactorOption) *Transactor {
	t := &Transactor{
		submitter:    submitter,
		encoder:      encoder,
		ids:          ids,
		requirement:  types.TransportAny,
		defaultBlock: DefaultBlock,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BuildCall assembles the JSON-RPC call for tx under a fresh id. tx is only
// read.
func (t *Transactor) BuildCall(tx *types.Transaction) (*types.Call, error) {
	if tx == nil {
		return nil, types.ErrNilCall
	}
	if tx.To == "" {
		return nil, xerrors.Errorf("transaction %s has no destination", tx.Name)
	}

	signature := tx.Signature
	if signature == "" {
		if len(tx.Params) != 0 {
			return nil, xerrors.Errorf("transaction %s has params but no signature", tx.Name)
		}
		signature = tx.Name + "()"
	}
	data, err := t.encoder.Encode(signature, tx.Params)
	if err != nil {
		return nil, xerrors.Errorf("encoding %s: %w", tx.Name, err)
	}

	msg := map[string]interface{}{
		"to":   tx.To,
		"data": hexutil.Encode(data),
	}
	if tx.From != "" {
		msg["from"] = tx.From
	}
	if tx.Gas != "" {
		msg["gas"] = tx.Gas
	}
	if tx.Value != "" {
		msg["value"] = tx.Value
	}

	call := &types.Call{
		ID:      t.ids.Next(),
		Returns: tx.Returns,
		Invocation: &types.Invocation{
			Name: tx.Name,
			From: tx.From,
			To:   tx.To,
		},
	}
	if tx.Send {
		call.Method = MethodSendTransaction
		call.Params = []interface{}{msg}
	} else {
		call.Method = MethodCall
		call.Params = []interface{}{msg, t.defaultBlock}
	}
	return call, nil
}

// CallOrSendTransaction submits tx. With cb the call is asynchronous and cb
// receives the resolution, including a failure to build the call. Without cb
// the call is synchronous and the resolution is returned.
func (t *Transactor) CallOrSendTransaction(ctx context.Context, tx *types.Transaction, cb types.ResultCallback) (json.RawMessage, error) {
	call, err := t.BuildCall(tx)
	if err != nil {
		if cb != nil {
			cb(err, nil)
			return nil, nil
		}
		return nil, err
	}

	log.Debugw("submitting transaction", "id", call.ID, "method", call.Method, "function", tx.Name, "to", tx.To)
	if cb == nil {
		return t.submitter.SubmitRequest(ctx, call, types.TransportSync, nil)
	}
	return t.submitter.SubmitRequest(ctx, call, t.requirement, cb)
}
