package repo

import "github.com/ipfs-force-community/venus-ethrpc/types"

// RequestRepo stores the journal of outstanding requests, keyed by session and
// request id.
type RequestRepo interface {
	Save(rec *types.RequestRecord) error
	Has(session string, id types.RequestID) (bool, error)
	Get(session string, id types.RequestID) (*types.RequestRecord, error)
	Delete(session string, id types.RequestID) error
	List(session string) ([]*types.RequestRecord, error)
	// ListStale lists requests left behind by sessions other than session.
	ListStale(session string) ([]*types.RequestRecord, error)
	DeleteStale(session string) (int64, error)
}
