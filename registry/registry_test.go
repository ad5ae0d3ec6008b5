package registry

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

func newRequest(cb types.ResultCallback) *types.OutstandingRequest {
	return &types.OutstandingRequest{
		Request:             &types.RPCRequest{JSONRPC: types.JSONRPCVersion, Method: "eth_call"},
		ExpectedReturnTypes: types.ReturnNumber,
		Callback:            cb,
	}
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	r := New()

	var first, second int32
	require.NoError(t, r.Register(1, newRequest(func(error, json.RawMessage) { atomic.AddInt32(&first, 1) })))

	err := r.Register(1, newRequest(func(error, json.RawMessage) { atomic.AddInt32(&second, 1) }))
	require.ErrorIs(t, err, types.ErrDuplicateRequest)
	require.Equal(t, 1, r.Len())

	require.NoError(t, r.Resolve(1, nil, json.RawMessage(`"0x1"`)))
	require.Equal(t, int32(1), atomic.LoadInt32(&first))
	require.Equal(t, int32(0), atomic.LoadInt32(&second))
	require.Equal(t, 0, r.Len())
}

func TestResolveUnknownIsAnomaly(t *testing.T) {
	r := New()
	err := r.Resolve(42, nil, json.RawMessage(`1`))
	require.ErrorIs(t, err, types.ErrUnknownRequest)
}

func TestConcurrentResolveAtMostOnce(t *testing.T) {
	r := New()

	const n = 200
	counts := make([]int32, n+1)
	for i := 1; i <= n; i++ {
		i := i
		require.NoError(t, r.Register(types.RequestID(i), newRequest(func(error, json.RawMessage) {
			atomic.AddInt32(&counts[i], 1)
		})))
	}

	var wg sync.WaitGroup
	var unknown int32
	for i := 1; i <= n; i++ {
		for k := 0; k < 3; k++ {
			wg.Add(1)
			go func(id types.RequestID) {
				defer wg.Done()
				if err := r.Resolve(id, nil, json.RawMessage(`"0x0"`)); xerrors.Is(err, types.ErrUnknownRequest) {
					atomic.AddInt32(&unknown, 1)
				}
			}(types.RequestID(i))
		}
	}
	wg.Wait()

	for i := 1; i <= n; i++ {
		require.Equal(t, int32(1), counts[i], "request %d", i)
	}
	require.Equal(t, int32(2*n), unknown)
	require.Equal(t, 0, r.Len())
	require.Empty(t, r.Pending())
}

func TestResolveErrorDropsResult(t *testing.T) {
	r := New()

	var gotErr error
	var gotRes json.RawMessage
	require.NoError(t, r.Register(5, newRequest(func(err error, res json.RawMessage) {
		gotErr, gotRes = err, res
	})))
	require.NoError(t, r.Resolve(5, types.ErrNoResponse, json.RawMessage(`"0x1"`)))
	require.ErrorIs(t, gotErr, types.ErrNoResponse)
	require.Nil(t, gotRes)
}

func TestTimeoutExpiresEntry(t *testing.T) {
	r := New()

	done := make(chan error, 1)
	req := newRequest(func(err error, _ json.RawMessage) { done <- err })
	req.Timeout = 10 * time.Millisecond
	require.NoError(t, r.Register(7, req))

	select {
	case err := <-done:
		require.ErrorIs(t, err, types.ErrRequestTimeout)
	case <-time.After(5 * time.Second):
		t.Fatal("request was not expired")
	}
	require.False(t, r.Has(7))
	require.ErrorIs(t, r.Resolve(7, nil, json.RawMessage(`1`)), types.ErrUnknownRequest)
}

func TestTimeoutSparesReusedID(t *testing.T) {
	r := New()

	req := newRequest(func(error, json.RawMessage) {})
	req.Timeout = 20 * time.Millisecond
	require.NoError(t, r.Register(8, req))
	require.NoError(t, r.Resolve(8, nil, json.RawMessage(`1`)))

	var fired int32
	require.NoError(t, r.Register(8, newRequest(func(error, json.RawMessage) { atomic.AddInt32(&fired, 1) })))

	time.Sleep(60 * time.Millisecond)
	require.True(t, r.Has(8))
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestPendingOrderedByID(t *testing.T) {
	r := New()
	for _, id := range []types.RequestID{9, 2, 5} {
		req := newRequest(func(error, json.RawMessage) {})
		req.Invocation = &types.Invocation{Name: "getMarket"}
		require.NoError(t, r.Register(id, req))
	}

	pending := r.Pending()
	require.Len(t, pending, 3)
	require.Equal(t, types.RequestID(2), pending[0].ID)
	require.Equal(t, types.RequestID(9), pending[2].ID)
	require.Equal(t, "getMarket", pending[1].Function)
	require.Equal(t, "eth_call", pending[1].Method)

	got, ok := r.Get(5)
	require.True(t, ok)
	require.Equal(t, types.ReturnNumber, got.Returns)
}

type recordingJournal struct {
	lk         sync.Mutex
	registered []types.RequestID
	resolved   map[types.RequestID]error
}

func (j *recordingJournal) OnRegister(id types.RequestID, _ *types.OutstandingRequest) error {
	j.lk.Lock()
	defer j.lk.Unlock()
	j.registered = append(j.registered, id)
	return nil
}

func (j *recordingJournal) OnResolve(id types.RequestID, err error) error {
	j.lk.Lock()
	defer j.lk.Unlock()
	j.resolved[id] = err
	return xerrors.New("journal unavailable")
}

func TestJournalSeesTransitions(t *testing.T) {
	j := &recordingJournal{resolved: map[types.RequestID]error{}}
	r := New(WithJournal(j))

	var calls int32
	require.NoError(t, r.Register(1, newRequest(func(error, json.RawMessage) { atomic.AddInt32(&calls, 1) })))
	require.NoError(t, r.Register(2, newRequest(func(error, json.RawMessage) { atomic.AddInt32(&calls, 1) })))
	require.NoError(t, r.Resolve(1, nil, json.RawMessage(`true`)))

	// a failing journal never blocks delivery
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Equal(t, []types.RequestID{1, 2}, j.registered)
	require.Contains(t, j.resolved, types.RequestID(1))
	require.NoError(t, j.resolved[1])
}

type slowJournal struct {
	entered chan struct{}
	release chan struct{}

	lk  sync.Mutex
	ops []string
}

func (j *slowJournal) OnRegister(types.RequestID, *types.OutstandingRequest) error {
	close(j.entered)
	<-j.release
	j.lk.Lock()
	defer j.lk.Unlock()
	j.ops = append(j.ops, "register")
	return nil
}

func (j *slowJournal) OnResolve(types.RequestID, error) error {
	j.lk.Lock()
	defer j.lk.Unlock()
	j.ops = append(j.ops, "resolve")
	return nil
}

func TestJournalResolveWaitsForRegister(t *testing.T) {
	j := &slowJournal{entered: make(chan struct{}), release: make(chan struct{})}
	r := New(WithJournal(j))

	errs := make(chan error, 1)
	registered := make(chan error, 1)
	go func() {
		registered <- r.Register(1, newRequest(func(err error, _ json.RawMessage) { errs <- err }))
	}()
	<-j.entered

	closed := make(chan error, 1)
	go func() { closed <- r.Close() }()

	select {
	case <-errs:
		t.Fatal("resolved before the register was journaled")
	case <-time.After(50 * time.Millisecond):
	}

	close(j.release)
	require.NoError(t, <-registered)
	require.NoError(t, <-closed)
	require.ErrorIs(t, <-errs, types.ErrNoResponse)
	require.Equal(t, []string{"register", "resolve"}, j.ops)
}

func TestCloseResolvesEverything(t *testing.T) {
	r := New()

	errs := make(chan error, 2)
	require.NoError(t, r.Register(1, newRequest(func(err error, _ json.RawMessage) { errs <- err })))
	require.NoError(t, r.Register(2, newRequest(func(err error, _ json.RawMessage) { errs <- err })))
	require.NoError(t, r.Close())

	require.ErrorIs(t, <-errs, types.ErrNoResponse)
	require.ErrorIs(t, <-errs, types.ErrNoResponse)
	require.Equal(t, 0, r.Len())
	require.Error(t, r.Register(3, newRequest(func(error, json.RawMessage) {})))
}
