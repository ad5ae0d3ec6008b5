package registry

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/metrics"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("registry")

var errClosed = xerrors.New("registry closed")

// Journal records the registry's transitions outside of process memory.
type Journal interface {
	OnRegister(id types.RequestID, req *types.OutstandingRequest) error
	OnResolve(id types.RequestID, err error) error
}

type entry struct {
	req   *types.OutstandingRequest
	timer *time.Timer
	// journaled is closed once OnRegister returned; nil without a journal.
	journaled chan struct{}
}

// Registry tracks outstanding requests by id. An entry is removed and its
// callback invoked by exactly one resolution; every other attempt fails with
// types.ErrUnknownRequest.
type Registry struct {
	lk      sync.Mutex
	pending map[types.RequestID]*entry
	closed  bool

	journal Journal
}

type Option func(*Registry)

func WithJournal(j Journal) Option {
	return func(r *Registry) {
		r.journal = j
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		pending: map[types.RequestID]*entry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Register(id types.RequestID, req *types.OutstandingRequest) error {
	if req == nil || req.Callback == nil {
		return xerrors.Errorf("registering request %d: %w", id, types.ErrCallbackRequired)
	}

	r.lk.Lock()
	if r.closed {
		r.lk.Unlock()
		return xerrors.Errorf("registering request %d: %w", id, errClosed)
	}
	if _, ok := r.pending[id]; ok {
		r.lk.Unlock()
		return xerrors.Errorf("registering request %d: %w", id, types.ErrDuplicateRequest)
	}
	if req.Submitted.IsZero() {
		req.Submitted = time.Now()
	}
	e := &entry{req: req}
	if r.journal != nil {
		e.journaled = make(chan struct{})
	}
	r.pending[id] = e
	if req.Timeout > 0 {
		e.timer = time.AfterFunc(req.Timeout, func() {
			r.expire(id, e)
		})
	}
	outstanding := len(r.pending)
	r.lk.Unlock()

	if r.journal != nil {
		if err := r.journal.OnRegister(id, req); err != nil {
			log.Warnf("journal register request %d: %s", id, err)
		}
		close(e.journaled)
	}

	method := ""
	if req.Request != nil {
		method = req.Request.Method
	}
	metrics.RecordWithTags(context.Background(), []tag.Mutator{
		tag.Upsert(metrics.Transport, string(req.Transport)),
		tag.Upsert(metrics.Method, method),
	}, metrics.RequestsRegistered.M(1))
	stats.Record(context.Background(), metrics.RequestsOutstanding.M(int64(outstanding)))

	return nil
}

// Resolve delivers err or result to the request's callback and forgets the
// request. The callback runs on the calling goroutine after the entry is gone.
func (r *Registry) Resolve(id types.RequestID, err error, result json.RawMessage) error {
	r.lk.Lock()
	e, ok := r.pending[id]
	if !ok {
		r.lk.Unlock()
		log.Warnw("resolution for unknown request", "id", id, "error", err)
		stats.Record(context.Background(), metrics.ResolutionAnomalies.M(1))
		return xerrors.Errorf("resolving request %d: %w", id, types.ErrUnknownRequest)
	}
	delete(r.pending, id)
	outstanding := len(r.pending)
	r.lk.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	r.finish(id, e, outstanding, err, result)
	return nil
}

// Expire resolves the request with types.ErrRequestTimeout.
func (r *Registry) Expire(id types.RequestID) error {
	return r.Resolve(id, types.ErrRequestTimeout, nil)
}

// expire only fires for the entry the timer was armed for; a newer request
// that reuses the id is left alone.
func (r *Registry) expire(id types.RequestID, e *entry) {
	r.lk.Lock()
	cur, ok := r.pending[id]
	if !ok || cur != e {
		r.lk.Unlock()
		return
	}
	delete(r.pending, id)
	outstanding := len(r.pending)
	r.lk.Unlock()

	log.Warnf("request %d timed out after %s", id, e.req.Timeout)
	r.finish(id, e, outstanding, types.ErrRequestTimeout, nil)
}

func (r *Registry) finish(id types.RequestID, e *entry, outstanding int, err error, result json.RawMessage) {
	if r.journal != nil {
		// a resolution racing the register must not delete the row before it is saved
		<-e.journaled
		if jerr := r.journal.OnResolve(id, err); jerr != nil {
			log.Warnf("journal resolve request %d: %s", id, jerr)
		}
	}

	outcome := "success"
	switch {
	case err == nil:
	case types.IsProtocolError(err):
		outcome = "protocol_error"
	default:
		outcome = "error"
	}
	metrics.RecordWithTags(context.Background(), []tag.Mutator{
		tag.Upsert(metrics.Outcome, outcome),
		tag.Upsert(metrics.Transport, string(e.req.Transport)),
	}, metrics.RequestsResolved.M(1), metrics.ResolutionLatency.M(metrics.SinceInMilliseconds(e.req.Submitted)))
	stats.Record(context.Background(), metrics.RequestsOutstanding.M(int64(outstanding)))

	if err != nil {
		result = nil
	}
	e.req.Callback(err, result)
}

func (r *Registry) Has(id types.RequestID) bool {
	r.lk.Lock()
	defer r.lk.Unlock()

	_, ok := r.pending[id]
	return ok
}

func (r *Registry) Get(id types.RequestID) (types.PendingRequest, bool) {
	r.lk.Lock()
	defer r.lk.Unlock()

	e, ok := r.pending[id]
	if !ok {
		return types.PendingRequest{}, false
	}
	return e.req.Pending(id), true
}

func (r *Registry) Len() int {
	r.lk.Lock()
	defer r.lk.Unlock()

	return len(r.pending)
}

// Pending lists outstanding requests ordered by id.
func (r *Registry) Pending() []types.PendingRequest {
	r.lk.Lock()
	out := make([]types.PendingRequest, 0, len(r.pending))
	for id, e := range r.pending {
		out = append(out, e.req.Pending(id))
	}
	r.lk.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Close refuses new requests and resolves every outstanding one with
// types.ErrNoResponse.
func (r *Registry) Close() error {
	r.lk.Lock()
	if r.closed {
		r.lk.Unlock()
		return nil
	}
	r.closed = true
	pending := r.pending
	r.pending = map[types.RequestID]*entry{}
	r.lk.Unlock()

	if len(pending) > 0 {
		log.Warnf("closing registry with %d outstanding requests", len(pending))
	}
	for id, e := range pending {
		if e.timer != nil {
			e.timer.Stop()
		}
		r.finish(id, e, 0, types.ErrNoResponse.WithCause(errClosed), nil)
	}
	return nil
}
