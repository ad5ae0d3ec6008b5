package venus_ethrpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/decode"
	"github.com/ipfs-force-community/venus-ethrpc/dtypes"
	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
	"github.com/ipfs-force-community/venus-ethrpc/registry"
	"github.com/ipfs-force-community/venus-ethrpc/rpc"
	"github.com/ipfs-force-community/venus-ethrpc/service"
	"github.com/ipfs-force-community/venus-ethrpc/transact"
	"github.com/ipfs-force-community/venus-ethrpc/transport"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

func HomeDir(path string) func() (config.HomeDir, error) {
	return func() (config.HomeDir, error) {
		path, err := homedir.Expand(path)
		if err != nil {
			return "", err
		}
		return config.HomeDir(path), nil
	}
}

func NewSessionID() dtypes.SessionID {
	return dtypes.SessionID(uuid.New())
}

// NewIDAllocator starts ids at the current unix time in milliseconds so that
// ids of consecutive runs do not collide in node logs.
func NewIDAllocator() *types.IDAllocator {
	return types.NewIDAllocator(uint64(time.Now().UnixNano() / int64(time.Millisecond)))
}

func NewRequestJournal(r repo.Repo, session dtypes.SessionID) *service.RequestJournalService {
	return service.NewRequestJournalService(r, session.String())
}

func PurgeStaleRequests(journal *service.RequestJournalService) error {
	n, err := journal.PurgeStale()
	if err != nil {
		return err
	}
	if n > 0 {
		log.Warnf("dropped %d requests left unresolved by previous runs", n)
	}
	return nil
}

func NewRegistry(lc fx.Lifecycle, journal registry.Journal) *registry.Registry {
	reg := registry.New(registry.WithJournal(journal))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return reg.Close()
		},
	})
	return reg
}

// NewTransports connects to the node over each transport in the configured
// order. The first one serves requests without a requirement.
func NewTransports(node *config.NodeConfig, tcfg *config.TransportConfig) func(mctx MetricsCtx, lc fx.Lifecycle, reg *registry.Registry) (*transport.Set, error) {
	return func(mctx MetricsCtx, lc fx.Lifecycle, reg *registry.Registry) (*transport.Set, error) {
		handler := transport.NewMessageHandler(reg)
		set := transport.NewSet()

		for _, kind := range tcfg.Order {
			switch types.TransportKind(kind) {
			case types.TransportHTTP:
				if node.HTTPUrl == "" {
					continue
				}
				set.Add(transport.NewHTTPTransport(node.HTTPUrl, handler,
					transport.WithHeader(node.AuthHeader()),
					transport.WithRateLimit(tcfg.RateLimit, tcfg.RateBurst),
				))
				log.Infof("http transport to %s", node.HTTPUrl)
			case types.TransportWebSocket:
				if node.WSUrl == "" {
					continue
				}
				ctx, cancel := context.WithTimeout(mctx, 30*time.Second)
				ws, err := transport.DialWebSocket(ctx, node.WSUrl, node.AuthHeader(), handler)
				cancel()
				if err != nil {
					_ = set.Close()
					return nil, xerrors.Errorf("connecting to %s: %w", node.WSUrl, err)
				}
				set.Add(ws)
				log.Infof("websocket transport to %s", node.WSUrl)
			default:
				_ = set.Close()
				return nil, xerrors.Errorf("unknown transport %q", kind)
			}
		}
		if len(set.Kinds()) == 0 {
			return nil, xerrors.New("no transport configured")
		}

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return set.Close()
			},
		})
		return set, nil
	}
}

func NewSubmitter(tcfg *config.TransportConfig) func(reg *registry.Registry, set *transport.Set) *rpc.Submitter {
	return func(reg *registry.Registry, set *transport.Set) *rpc.Submitter {
		return rpc.NewSubmitter(reg, set,
			rpc.WithDebugBroadcast(tcfg.DebugBroadcast),
			rpc.WithRequestTimeout(time.Duration(tcfg.RequestTimeout)),
		)
	}
}

func NewPipeline(ecfg *config.ErrorsConfig) func() *decode.Pipeline {
	return func() *decode.Pipeline {
		return decode.NewPipeline(decode.ErrorTable{
			Generic: ecfg.Generic,
			Methods: ecfg.Methods,
		})
	}
}

func NewSelectorEncoder() (*transact.SelectorEncoder, error) {
	return transact.NewSelectorEncoder(transact.DefaultSelectorCacheSize)
}

func NewTransactor(tcfg *config.TransportConfig) func(sub transact.Submitter, enc transact.Encoder, ids *types.IDAllocator) *transact.Transactor {
	return func(sub transact.Submitter, enc transact.Encoder, ids *types.IDAllocator) *transact.Transactor {
		return transact.NewTransactor(sub, enc, ids,
			transact.WithRequirement(types.TransportRequirement(tcfg.Requirement)),
			transact.WithDefaultBlock(tcfg.DefaultBlock),
		)
	}
}

// MetricsCtx is a context wrapper with metrics
type MetricsCtx context.Context
