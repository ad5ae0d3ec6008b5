package transport

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("transport")

// Transporter carries requests to the node. Responses come back through a
// MessageHandler, either before BlockchainRPC returns (Sync) or later.
type Transporter interface {
	Kind() types.TransportKind
	// Sync transports resolve a request before BlockchainRPC returns.
	Sync() bool
	Duplex() bool
	BlockchainRPC(ctx context.Context, req *types.RPCRequest, requirement types.TransportRequirement, debugBroadcast bool) error
	Close() error
}

// Set holds the transports available to the submitter, in preference order.
type Set struct {
	lk         sync.RWMutex
	transports []Transporter
}

func NewSet(ts ...Transporter) *Set {
	return &Set{transports: ts}
}

func (s *Set) Add(t Transporter) {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.transports = append(s.transports, t)
}

func (s *Set) Kinds() []types.TransportKind {
	s.lk.RLock()
	defer s.lk.RUnlock()

	out := make([]types.TransportKind, len(s.transports))
	for i, t := range s.transports {
		out[i] = t.Kind()
	}
	return out
}

// Select picks the transport for requirement and reports whether the call has
// to return its result synchronously.
func (s *Set) Select(requirement types.TransportRequirement) (Transporter, bool, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()

	mustSync := requirement == types.TransportSync
	for _, t := range s.transports {
		switch requirement {
		case types.TransportAny:
			return t, false, nil
		case types.TransportSync:
			if t.Sync() {
				return t, mustSync, nil
			}
		case types.TransportDuplex:
			if t.Duplex() {
				return t, mustSync, nil
			}
		default:
			if string(t.Kind()) == string(requirement) {
				return t, mustSync, nil
			}
		}
	}
	return nil, mustSync, xerrors.Errorf("selecting transport for %s: %w", requirement, types.ErrNoTransport)
}

func (s *Set) Close() error {
	s.lk.Lock()
	ts := s.transports
	s.transports = nil
	s.lk.Unlock()

	var merr *multierror.Error
	for _, t := range ts {
		if err := t.Close(); err != nil {
			merr = multierror.Append(merr, xerrors.Errorf("closing %s transport: %w", t.Kind(), err))
		}
	}
	return merr.ErrorOrNil()
}
