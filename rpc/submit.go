package rpc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/ipfs-force-community/venus-ethrpc/transport"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("rpc")

// Registry is the part of the outstanding request registry the submitter uses.
type Registry interface {
	Register(id types.RequestID, req *types.OutstandingRequest) error
	Resolve(id types.RequestID, err error, result json.RawMessage) error
	Has(id types.RequestID) bool
}

type Selector interface {
	Select(requirement types.TransportRequirement) (transport.Transporter, bool, error)
}

type Submitter struct {
	registry   Registry
	transports Selector

	debugBroadcast bool
	timeout        time.Duration
}

type Option func(*Submitter)

// WithDebugBroadcast asks transports to log every payload they send.
func WithDebugBroadcast(on bool) Option {
	return func(s *Submitter) {
		s.debugBroadcast = on
	}
}

// WithRequestTimeout expires requests that stay unresolved for d.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Submitter) {
		s.timeout = d
	}
}

func NewSubmitter(registry Registry, transports Selector, opts ...Option) *Submitter {
	s := &Submitter{
		registry:   registry,
		transports: transports,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest registers call and hands it to a transport chosen by
// requirement (nil, a string, or the callback itself when callback is nil).
//
// With types.TransportSync the resolution is returned directly and callback is
// not used. Otherwise SubmitRequest returns right away and the resolution, or
// any validation failure, goes to callback. A missing callback is reported as
// types.ErrCallbackRequired and never through a callback.
func (s *Submitter) SubmitRequest(ctx context.Context, call *types.Call, requirement interface{}, callback types.ResultCallback) (json.RawMessage, error) {
	req, cb, reqErr := NormalizeArgs(requirement, callback)

	var capture *syncCapture
	if req == types.TransportSync {
		capture = newSyncCapture()
		cb = capture.callback
	}
	if cb == nil {
		return nil, types.ErrCallbackRequired
	}

	reject := func(err error) (json.RawMessage, error) {
		cb(err, nil)
		if capture != nil {
			return capture.wait()
		}
		return nil, nil
	}

	if reqErr != nil {
		return reject(reqErr)
	}
	if call == nil {
		return reject(types.ErrNilCall)
	}
	if call.ID == types.UndefRequest {
		return reject(types.ErrMissingID)
	}

	wire, returns := call.Strip()

	tp, mustSync, err := s.transports.Select(req)
	if err != nil {
		return reject(err)
	}

	err = s.registry.Register(call.ID, &types.OutstandingRequest{
		Request:             wire,
		ExpectedReturnTypes: returns,
		Invocation:          call.Invocation,
		Requirement:         req,
		Transport:           tp.Kind(),
		Callback:            cb,
		Submitted:           time.Now(),
		Timeout:             s.timeout,
	})
	if err != nil {
		return reject(err)
	}

	if err := tp.BlockchainRPC(ctx, wire, req, s.debugBroadcast); err != nil {
		log.Warnf("dispatching request %d over %s: %s", call.ID, tp.Kind(), err)
		if rerr := s.registry.Resolve(call.ID, types.ErrDispatch.WithCause(err), nil); rerr != nil {
			log.Debugf("request %d was resolved before its dispatch failed: %s", call.ID, rerr)
		}
	}

	if !mustSync {
		return nil, nil
	}

	if capture.resolved() {
		return capture.wait()
	}
	if s.registry.Has(call.ID) {
		log.Warnw("synchronous request still outstanding after dispatch", "id", call.ID, "method", wire.Method, "transport", tp.Kind())
		return nil, types.ErrSyncNoResolution
	}
	// removed from the registry; its callback is running or about to
	return capture.wait()
}

type syncCapture struct {
	once   sync.Once
	done   chan struct{}
	err    error
	result json.RawMessage
}

func newSyncCapture() *syncCapture {
	return &syncCapture{done: make(chan struct{})}
}

func (c *syncCapture) callback(err error, result json.RawMessage) {
	c.once.Do(func() {
		c.err, c.result = err, result
		close(c.done)
	})
}

func (c *syncCapture) resolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *syncCapture) wait() (json.RawMessage, error) {
	<-c.done
	return c.result, c.err
}
