package impl

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/venus-ethrpc/decode"
	"github.com/ipfs-force-community/venus-ethrpc/dtypes"
	"github.com/ipfs-force-community/venus-ethrpc/registry"
	"github.com/ipfs-force-community/venus-ethrpc/rpc"
	"github.com/ipfs-force-community/venus-ethrpc/transact"
	"github.com/ipfs-force-community/venus-ethrpc/transport"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// duplexNode answers from its own goroutine, the way a websocket read loop does.
type duplexNode struct {
	reg    *registry.Registry
	answer json.RawMessage
}

func (n *duplexNode) Kind() types.TransportKind { return types.TransportWebSocket }
func (n *duplexNode) Sync() bool                { return false }
func (n *duplexNode) Duplex() bool              { return true }
func (n *duplexNode) Close() error              { return nil }

func (n *duplexNode) BlockchainRPC(_ context.Context, req *types.RPCRequest, _ types.TransportRequirement, _ bool) error {
	if n.answer == nil {
		return nil
	}
	go func() {
		_ = n.reg.Resolve(req.ID, nil, n.answer)
	}()
	return nil
}

func newAPI(t *testing.T, answer string) *EthRPCAPI {
	reg := registry.New()
	node := &duplexNode{reg: reg}
	if answer != "" {
		node.answer = json.RawMessage(answer)
	}
	set := transport.NewSet(node)

	enc, err := transact.NewSelectorEncoder(0)
	require.NoError(t, err)
	tr := transact.NewTransactor(rpc.NewSubmitter(reg, set), enc, types.NewIDAllocator(0))

	return &EthRPCAPI{
		CommonAPI: CommonAPI{
			ShutdownChan: make(dtypes.ShutdownChan, 1),
			SessionID:    dtypes.SessionID(uuid.New()),
		},
		Caller:       transact.NewContractCaller(tr, decode.NewPipeline(decode.ErrorTable{})),
		Registry:     reg,
		TransportSet: set,
	}
}

func call() *types.Transaction {
	return &types.Transaction{
		Name:      "totalSupply",
		Signature: "totalSupply()",
		Returns:   types.ReturnNumber,
		To:        "0x00000000000000000000000000000000000000aa",
	}
}

func TestCallContract(t *testing.T) {
	a := newAPI(t, `"0xde0b6b3a7640000"`)

	res, err := a.CallContract(context.Background(), call())
	require.NoError(t, err)
	require.Equal(t, "totalSupply", res.Function)
	require.Equal(t, "1000000000000000000", string(res.Value))
}

func TestCallContractError(t *testing.T) {
	a := newAPI(t, `{"error":-32000,"message":"execution reverted"}`)

	_, err := a.CallContract(context.Background(), call())
	var rerr *types.RPCError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, int64(-32000), rerr.Code)
}

func TestCallContractCanceled(t *testing.T) {
	a := newAPI(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.CallContract(ctx, call())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	pending, err := a.Outstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "totalSupply", pending[0].Function)
	require.Equal(t, types.TransportWebSocket, pending[0].Transport)
}

func TestCommon(t *testing.T) {
	a := newAPI(t, "")

	v, err := a.Version(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, v.String())

	sess, err := a.Session(context.Background())
	require.NoError(t, err)
	require.Equal(t, uuid.UUID(a.SessionID), sess)

	kinds, err := a.Transports(context.Background())
	require.NoError(t, err)
	require.Equal(t, []types.TransportKind{types.TransportWebSocket}, kinds)

	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))
	<-a.ShutdownChan
}
