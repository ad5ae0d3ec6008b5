package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// CommonStruct implements Common passing calls to user-provided function values.
type CommonStruct struct {
	Internal struct {
		Version func(context.Context) (Version, error) `perm:"read"`

		LogList     func(context.Context) ([]string, error)     `perm:"write"`
		LogSetLevel func(context.Context, string, string) error `perm:"write"`

		Shutdown func(context.Context) error              `perm:"admin"`
		Session  func(context.Context) (uuid.UUID, error) `perm:"read"`
	}
}

// EthRPCStruct implements EthRPC passing calls to user-provided function values.
type EthRPCStruct struct {
	CommonStruct

	Internal struct {
		CallContract  func(ctx context.Context, tx *types.Transaction) (*CallResult, error) `perm:"write"`
		Outstanding   func(ctx context.Context) ([]types.PendingRequest, error)             `perm:"read"`
		StaleRequests func(ctx context.Context) ([]*types.RequestRecord, error)             `perm:"read"`
		Transports    func(ctx context.Context) ([]types.TransportKind, error)              `perm:"read"`
	}
}

func (c *CommonStruct) Version(ctx context.Context) (Version, error) {
	return c.Internal.Version(ctx)
}

func (c *CommonStruct) LogList(ctx context.Context) ([]string, error) {
	return c.Internal.LogList(ctx)
}

func (c *CommonStruct) LogSetLevel(ctx context.Context, group, level string) error {
	return c.Internal.LogSetLevel(ctx, group, level)
}

func (c *CommonStruct) Shutdown(ctx context.Context) error {
	return c.Internal.Shutdown(ctx)
}

func (c *CommonStruct) Session(ctx context.Context) (uuid.UUID, error) {
	return c.Internal.Session(ctx)
}

func (c *EthRPCStruct) CallContract(ctx context.Context, tx *types.Transaction) (*CallResult, error) {
	return c.Internal.CallContract(ctx, tx)
}

func (c *EthRPCStruct) Outstanding(ctx context.Context) ([]types.PendingRequest, error) {
	return c.Internal.Outstanding(ctx)
}

func (c *EthRPCStruct) StaleRequests(ctx context.Context) ([]*types.RequestRecord, error) {
	return c.Internal.StaleRequests(ctx)
}

func (c *EthRPCStruct) Transports(ctx context.Context) ([]types.TransportKind, error) {
	return c.Internal.Transports(ctx)
}

var _ Common = &CommonStruct{}
var _ EthRPC = &EthRPCStruct{}
