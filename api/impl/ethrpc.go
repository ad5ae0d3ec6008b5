package impl

import (
	"context"
	"encoding/json"

	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/api"
	"github.com/ipfs-force-community/venus-ethrpc/registry"
	"github.com/ipfs-force-community/venus-ethrpc/service"
	"github.com/ipfs-force-community/venus-ethrpc/transact"
	"github.com/ipfs-force-community/venus-ethrpc/transport"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

type EthRPCAPI struct {
	CommonAPI

	Caller       *transact.ContractCaller
	Registry     *registry.Registry
	TransportSet *transport.Set
	Journal      *service.RequestJournalService
}

var _ api.EthRPC = &EthRPCAPI{}

type callOutcome struct {
	value interface{}
	err   error
}

func (a *EthRPCAPI) CallContract(ctx context.Context, tx *types.Transaction) (*api.CallResult, error) {
	if tx == nil {
		return nil, types.ErrNilCall
	}

	done := make(chan callOutcome, 1)
	_, err := a.Caller.CallContractFunction(ctx, tx, func(value interface{}, err error) {
		done <- callOutcome{value: value, err: err}
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		raw, err := json.Marshal(out.value)
		if err != nil {
			return nil, xerrors.Errorf("encoding result of %s: %w", tx.Name, err)
		}
		return &api.CallResult{Function: tx.Name, Returns: tx.Returns, Value: raw}, nil
	case <-ctx.Done():
		// the registry still holds the request; its resolution is dropped
		return nil, ctx.Err()
	}
}

func (a *EthRPCAPI) Outstanding(context.Context) ([]types.PendingRequest, error) {
	return a.Registry.Pending(), nil
}

func (a *EthRPCAPI) StaleRequests(context.Context) ([]*types.RequestRecord, error) {
	return a.Journal.Stale()
}

func (a *EthRPCAPI) Transports(context.Context) ([]types.TransportKind, error) {
	return a.TransportSet.Kinds(), nil
}
