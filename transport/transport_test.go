package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

type fakeTransport struct {
	kind     types.TransportKind
	sync     bool
	duplex   bool
	closeErr error
}

func (f *fakeTransport) Kind() types.TransportKind { return f.kind }
func (f *fakeTransport) Sync() bool                { return f.sync }
func (f *fakeTransport) Duplex() bool              { return f.duplex }
func (f *fakeTransport) Close() error              { return f.closeErr }
func (f *fakeTransport) BlockchainRPC(context.Context, *types.RPCRequest, types.TransportRequirement, bool) error {
	return nil
}

func TestSelect(t *testing.T) {
	ws := &fakeTransport{kind: types.TransportWebSocket, duplex: true}
	http := &fakeTransport{kind: types.TransportHTTP, sync: true}
	set := NewSet(ws, http)

	tp, mustSync, err := set.Select(types.TransportAny)
	require.NoError(t, err)
	require.Equal(t, ws, tp)
	require.False(t, mustSync)

	tp, mustSync, err = set.Select(types.TransportSync)
	require.NoError(t, err)
	require.Equal(t, http, tp)
	require.True(t, mustSync)

	tp, mustSync, err = set.Select(types.TransportDuplex)
	require.NoError(t, err)
	require.Equal(t, ws, tp)
	require.False(t, mustSync)

	tp, _, err = set.Select("http")
	require.NoError(t, err)
	require.Equal(t, http, tp)

	_, _, err = set.Select("ipc")
	require.ErrorIs(t, err, types.ErrNoTransport)
}

func TestSelectSyncWithoutSyncTransport(t *testing.T) {
	set := NewSet(&fakeTransport{kind: types.TransportWebSocket, duplex: true})
	_, mustSync, err := set.Select(types.TransportSync)
	require.ErrorIs(t, err, types.ErrNoTransport)
	require.True(t, mustSync)

	_, _, err = NewSet().Select(types.TransportAny)
	require.ErrorIs(t, err, types.ErrNoTransport)
}

func TestSetCloseCollectsErrors(t *testing.T) {
	boom := xerrors.New("boom")
	set := NewSet(
		&fakeTransport{kind: types.TransportWebSocket, closeErr: boom},
		&fakeTransport{kind: types.TransportHTTP},
	)
	require.Equal(t, []types.TransportKind{types.TransportWebSocket, types.TransportHTTP}, set.Kinds())

	err := set.Close()
	require.ErrorIs(t, err, boom)
	require.Empty(t, set.Kinds())
}
