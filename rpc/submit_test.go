package rpc

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/registry"
	"github.com/ipfs-force-community/venus-ethrpc/transport"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// fakeTransport resolves requests through the registry according to answer.
// A nil answer leaves the request outstanding.
type fakeTransport struct {
	kind   types.TransportKind
	sync   bool
	duplex bool
	reg    *registry.Registry
	answer func(req *types.RPCRequest) (json.RawMessage, error, bool)
	fail   error

	lk   sync.Mutex
	sent []*types.RPCRequest
}

func (f *fakeTransport) Kind() types.TransportKind { return f.kind }
func (f *fakeTransport) Sync() bool                { return f.sync }
func (f *fakeTransport) Duplex() bool              { return f.duplex }
func (f *fakeTransport) Close() error              { return nil }

func (f *fakeTransport) BlockchainRPC(_ context.Context, req *types.RPCRequest, _ types.TransportRequirement, _ bool) error {
	f.lk.Lock()
	f.sent = append(f.sent, req)
	f.lk.Unlock()

	if f.fail != nil {
		return f.fail
	}
	if f.answer != nil {
		if res, err, ok := f.answer(req); ok {
			_ = f.reg.Resolve(req.ID, err, res)
		}
	}
	return nil
}

func (f *fakeTransport) sentCount() int {
	f.lk.Lock()
	defer f.lk.Unlock()
	return len(f.sent)
}

func answerWith(res string) func(*types.RPCRequest) (json.RawMessage, error, bool) {
	return func(*types.RPCRequest) (json.RawMessage, error, bool) {
		return json.RawMessage(res), nil, true
	}
}

type resolution struct {
	err    error
	result json.RawMessage
}

func collect() (types.ResultCallback, chan resolution) {
	ch := make(chan resolution, 4)
	return func(err error, result json.RawMessage) {
		ch <- resolution{err: err, result: result}
	}, ch
}

func newCall(id types.RequestID) *types.Call {
	return &types.Call{
		ID:         id,
		Method:     "eth_call",
		Params:     []interface{}{map[string]interface{}{"to": "0x01"}, "latest"},
		Returns:    types.ReturnNumber,
		Invocation: &types.Invocation{Name: "getMarketsInBranch"},
	}
}

func TestSyncResolvedInline(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg, answer: answerWith(`"0x2a"`)}
	s := NewSubmitter(reg, transport.NewSet(tp))

	res, err := s.SubmitRequest(context.Background(), newCall(1), types.TransportSync, nil)
	require.NoError(t, err)
	require.JSONEq(t, `"0x2a"`, string(res))
	require.Equal(t, 0, reg.Len())
}

func TestSyncErrorInline(t *testing.T) {
	reg := registry.New()
	nodeErr := &types.RPCError{Code: -32000, Message: "execution reverted"}
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg,
		answer: func(*types.RPCRequest) (json.RawMessage, error, bool) { return nil, nodeErr, true }}
	s := NewSubmitter(reg, transport.NewSet(tp))

	res, err := s.SubmitRequest(context.Background(), newCall(1), "SYNC", nil)
	require.Nil(t, res)
	require.Equal(t, nodeErr, err)
	require.Equal(t, 0, reg.Len())
}

func TestSyncWithoutResolution(t *testing.T) {
	reg := registry.New()
	// claims to be synchronous but never answers in time
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg}
	s := NewSubmitter(reg, transport.NewSet(tp))

	res, err := s.SubmitRequest(context.Background(), newCall(3), types.TransportSync, nil)
	require.Nil(t, res)
	require.ErrorIs(t, err, types.ErrSyncNoResolution)
	require.True(t, types.IsProtocolError(err))
	require.True(t, reg.Has(3))

	// the late answer is absorbed once, a repeat is an anomaly
	require.NoError(t, reg.Resolve(3, nil, json.RawMessage(`"0x1"`)))
	require.ErrorIs(t, reg.Resolve(3, nil, json.RawMessage(`"0x1"`)), types.ErrUnknownRequest)
	require.Equal(t, 0, reg.Len())
}

func TestSyncResolvedFromAnotherGoroutine(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg,
		answer: func(req *types.RPCRequest) (json.RawMessage, error, bool) {
			done := make(chan struct{})
			go func() {
				_ = reg.Resolve(req.ID, nil, json.RawMessage(`true`))
				close(done)
			}()
			<-done
			return nil, nil, false
		}}
	s := NewSubmitter(reg, transport.NewSet(tp))

	res, err := s.SubmitRequest(context.Background(), newCall(4), types.TransportSync, nil)
	require.NoError(t, err)
	require.JSONEq(t, `true`, string(res))
}

func TestCallbackRequired(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg}
	s := NewSubmitter(reg, transport.NewSet(tp))

	_, err := s.SubmitRequest(context.Background(), newCall(1), nil, nil)
	require.ErrorIs(t, err, types.ErrCallbackRequired)
	_, err = s.SubmitRequest(context.Background(), newCall(1), types.TransportDuplex, nil)
	require.ErrorIs(t, err, types.ErrCallbackRequired)

	require.Equal(t, 0, tp.sentCount())
	require.Equal(t, 0, reg.Len())
}

func TestCallbackInRequirementPosition(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg, answer: answerWith(`"0x05"`)}
	s := NewSubmitter(reg, transport.NewSet(tp))

	cb, ch := collect()
	res, err := s.SubmitRequest(context.Background(), newCall(1), cb, nil)
	require.NoError(t, err)
	require.Nil(t, res)

	got := <-ch
	require.NoError(t, got.err)
	require.JSONEq(t, `"0x05"`, string(got.result))
}

func TestValidationThroughCallback(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg, answer: answerWith(`1`)}
	s := NewSubmitter(reg, transport.NewSet(tp))
	ctx := context.Background()

	cases := []struct {
		call        *types.Call
		requirement interface{}
		expect      error
	}{
		{newCall(1), 42, types.ErrBadRequirement},
		{nil, nil, types.ErrNilCall},
		{newCall(0), nil, types.ErrMissingID},
		{newCall(1), "ipc", types.ErrNoTransport},
	}
	for _, c := range cases {
		cb, ch := collect()
		res, err := s.SubmitRequest(ctx, c.call, c.requirement, cb)
		require.NoError(t, err)
		require.Nil(t, res)

		got := <-ch
		require.ErrorIs(t, got.err, c.expect)
		require.Nil(t, got.result)
	}
	require.Equal(t, 0, tp.sentCount())
}

func TestValidationReturnedForSync(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg}
	s := NewSubmitter(reg, transport.NewSet(tp))

	_, err := s.SubmitRequest(context.Background(), nil, types.TransportSync, nil)
	require.ErrorIs(t, err, types.ErrNilCall)
	_, err = s.SubmitRequest(context.Background(), newCall(0), types.TransportSync, nil)
	require.ErrorIs(t, err, types.ErrMissingID)
}

func TestDuplicateIDLeavesFirst(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportWebSocket, duplex: true, reg: reg}
	s := NewSubmitter(reg, transport.NewSet(tp))

	first, firstCh := collect()
	_, err := s.SubmitRequest(context.Background(), newCall(9), nil, first)
	require.NoError(t, err)

	second, secondCh := collect()
	_, err = s.SubmitRequest(context.Background(), newCall(9), nil, second)
	require.NoError(t, err)
	require.ErrorIs(t, (<-secondCh).err, types.ErrDuplicateRequest)

	require.True(t, reg.Has(9))
	require.Equal(t, 1, tp.sentCount())

	require.NoError(t, reg.Resolve(9, nil, json.RawMessage(`"0x0"`)))
	require.JSONEq(t, `"0x0"`, string((<-firstCh).result))
}

func TestDispatchFailureResolves(t *testing.T) {
	reg := registry.New()
	boom := xerrors.New("connection refused")
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg, fail: boom}
	s := NewSubmitter(reg, transport.NewSet(tp))

	cb, ch := collect()
	_, err := s.SubmitRequest(context.Background(), newCall(2), nil, cb)
	require.NoError(t, err)

	got := <-ch
	require.ErrorIs(t, got.err, types.ErrDispatch)
	require.ErrorIs(t, got.err, boom)
	require.Equal(t, 0, reg.Len())

	_, err = s.SubmitRequest(context.Background(), newCall(3), types.TransportSync, nil)
	require.ErrorIs(t, err, types.ErrDispatch)
}

func TestWireOmitsReturnTypes(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportWebSocket, duplex: true, reg: reg}
	s := NewSubmitter(reg, transport.NewSet(tp), WithDebugBroadcast(true))

	cb, _ := collect()
	_, err := s.SubmitRequest(context.Background(), newCall(12), types.TransportDuplex, cb)
	require.NoError(t, err)

	require.Equal(t, 1, tp.sentCount())
	b, err := json.Marshal(tp.sent[0])
	require.NoError(t, err)
	require.NotContains(t, string(b), "returns")
	require.NotContains(t, string(b), "getMarketsInBranch")

	pending, ok := reg.Get(12)
	require.True(t, ok)
	require.Equal(t, types.ReturnNumber, pending.Returns)
	require.Equal(t, "getMarketsInBranch", pending.Function)
	require.Equal(t, types.TransportDuplex, pending.Requirement)
}

func TestRequestTimeout(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportWebSocket, duplex: true, reg: reg}
	s := NewSubmitter(reg, transport.NewSet(tp), WithRequestTimeout(10*time.Millisecond))

	cb, ch := collect()
	_, err := s.SubmitRequest(context.Background(), newCall(5), nil, cb)
	require.NoError(t, err)

	select {
	case got := <-ch:
		require.ErrorIs(t, got.err, types.ErrRequestTimeout)
	case <-time.After(5 * time.Second):
		t.Fatal("request never expired")
	}
	require.False(t, reg.Has(5))
}

func TestConcurrentSubmissions(t *testing.T) {
	reg := registry.New()
	tp := &fakeTransport{kind: types.TransportHTTP, sync: true, reg: reg,
		answer: func(req *types.RPCRequest) (json.RawMessage, error, bool) {
			b, _ := json.Marshal(req.ID)
			return b, nil, true
		}}
	s := NewSubmitter(reg, transport.NewSet(tp))
	ids := types.NewIDAllocator(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			call := newCall(ids.Next())
			res, err := s.SubmitRequest(context.Background(), call, types.TransportSync, nil)
			assert.NoError(t, err)
			b, _ := json.Marshal(call.ID)
			assert.JSONEq(t, string(b), string(res))
		}()
	}
	wg.Wait()
	require.Equal(t, 0, reg.Len())
}
