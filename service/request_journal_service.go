package service

import (
	"encoding/json"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
	"github.com/ipfs-force-community/venus-ethrpc/registry"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("service")

var _ registry.Journal = (*RequestJournalService)(nil)

// RequestJournalService mirrors the registry's outstanding requests into the
// database under a per-process session.
type RequestJournalService struct {
	repo.RequestRepo
	session string
}

func NewRequestJournalService(r repo.Repo, session string) *RequestJournalService {
	return &RequestJournalService{RequestRepo: r.RequestRepo(), session: session}
}

func (s *RequestJournalService) Session() string {
	return s.session
}

func (s *RequestJournalService) OnRegister(id types.RequestID, req *types.OutstandingRequest) error {
	payload, err := json.Marshal(req.Request)
	if err != nil {
		return xerrors.Errorf("marshaling request %d: %w", id, err)
	}
	return s.RequestRepo.Save(&types.RequestRecord{
		Session:        s.session,
		PendingRequest: req.Pending(id),
		Payload:        payload,
	})
}

func (s *RequestJournalService) OnResolve(id types.RequestID, _ error) error {
	return s.RequestRepo.Delete(s.session, id)
}

// Outstanding lists what this process has in flight.
func (s *RequestJournalService) Outstanding() ([]*types.RequestRecord, error) {
	return s.RequestRepo.List(s.session)
}

// Stale lists requests a previous process left unresolved.
func (s *RequestJournalService) Stale() ([]*types.RequestRecord, error) {
	return s.RequestRepo.ListStale(s.session)
}

// PurgeStale drops the requests of previous processes. They can never be
// resolved since their callbacks died with the process.
func (s *RequestJournalService) PurgeStale() (int64, error) {
	stale, err := s.Stale()
	if err != nil {
		return 0, xerrors.Errorf("listing stale requests: %w", err)
	}
	for _, rec := range stale {
		log.Warnw("dropping request left unresolved by a previous run",
			"session", rec.Session, "id", rec.ID, "method", rec.Method, "function", rec.Function, "submitted", rec.Submitted)
	}
	n, err := s.RequestRepo.DeleteStale(s.session)
	if err != nil {
		return 0, xerrors.Errorf("purging stale requests: %w", err)
	}
	return n, nil
}
