package venus_ethrpc

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/api"
	"github.com/ipfs-force-community/venus-ethrpc/api/impl"
	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/decode"
	"github.com/ipfs-force-community/venus-ethrpc/dtypes"
	"github.com/ipfs-force-community/venus-ethrpc/models"
	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
	"github.com/ipfs-force-community/venus-ethrpc/registry"
	"github.com/ipfs-force-community/venus-ethrpc/rpc"
	"github.com/ipfs-force-community/venus-ethrpc/service"
	"github.com/ipfs-force-community/venus-ethrpc/transact"
	"github.com/ipfs-force-community/venus-ethrpc/transport"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("modules")

type invoke int

// Invokes are called in the order they are defined.
//nolint:golint
const (
	AutoMigrateKey = invoke(iota)
	PurgeStaleRequestsKey
	ExtractApiKey
	// daemon
	SetApiEndpointKey

	_nInvokes // keep this last
)

type Settings struct {
	// modules is a map of constructors for DI
	//
	// In most cases the index will be a reflect. Type of element returned by
	// the constructor, but for some 'constructors' it's hard to specify what's
	// the return type should be (or the constructor returns fx group)
	modules map[interface{}]fx.Option

	// invokes are separate from modules as they can't be referenced by return
	// type, and must be applied in correct order
	invokes []fx.Option
}

type StopFunc func(context.Context) error

// New builds and starts the daemon
func New(ctx context.Context, opts ...Option) (StopFunc, error) {
	settings := Settings{
		modules: map[interface{}]fx.Option{},
		invokes: make([]fx.Option, _nInvokes),
	}

	// apply module options in the right order
	if err := Options(opts...)(&settings); err != nil {
		return nil, xerrors.Errorf("applying node options failed: %w", err)
	}

	// gather constructors for fx.Options
	ctors := make([]fx.Option, 0, len(settings.modules))
	for _, opt := range settings.modules {
		ctors = append(ctors, opt)
	}

	// fill holes in invokes for use in fx.Options
	for i, opt := range settings.invokes {
		if opt == nil {
			settings.invokes[i] = fx.Options()
		}
	}

	app := fx.New(
		fx.Options(ctors...),
		fx.Options(settings.invokes...),

		fx.NopLogger,
	)

	if err := app.Start(ctx); err != nil {
		// comment fx.NopLogger few lines above for easier debugging
		return nil, xerrors.Errorf("starting node: %w", err)
	}

	return app.Stop, nil
}

// Online wires the request pipeline: registry, transports, submitter and the
// contract caller on top of them.
func Online(cfg *config.Config) Option {
	return Options(
		Override(new(MetricsCtx), func() context.Context {
			return context.Background()
		}),
		Override(new(dtypes.ShutdownChan), make(dtypes.ShutdownChan, 1)),
		Override(new(dtypes.SessionID), NewSessionID),
		Override(new(*types.IDAllocator), NewIDAllocator),

		Override(new(*service.RequestJournalService), NewRequestJournal),
		Override(new(registry.Journal), From(new(*service.RequestJournalService))),
		Override(new(*registry.Registry), NewRegistry),

		Override(new(*transport.Set), NewTransports(&cfg.Node, &cfg.Transport)),
		Override(new(*rpc.Submitter), NewSubmitter(&cfg.Transport)),
		Override(new(transact.Submitter), From(new(*rpc.Submitter))),

		Override(new(*decode.Pipeline), NewPipeline(&cfg.Errors)),
		Override(new(*transact.SelectorEncoder), NewSelectorEncoder),
		Override(new(transact.Encoder), From(new(*transact.SelectorEncoder))),
		Override(new(*transact.Transactor), NewTransactor(&cfg.Transport)),
		Override(new(*transact.ContractCaller), transact.NewContractCaller),

		Override(AutoMigrateKey, models.AutoMigrate),
		If(cfg.DB.PurgeStale,
			Override(PurgeStaleRequestsKey, PurgeStaleRequests),
		),
	)
}

func Repo(cfg *config.Config) Option {
	return func(settings *Settings) error {
		return Options(
			Override(new(config.HomeDir), HomeDir(cfg.DataDir)),
			Override(new(*config.DbConfig), &cfg.DB),
			ConfigAPI(cfg),

			Override(new(repo.Repo), models.SetDataBase),
		)(settings)
	}
}

// ConfigAPI sets up the API endpoint based on the provided Config
func ConfigAPI(cfg *config.Config) Option {
	return Options(
		Override(new(dtypes.APIEndpoint), func() (dtypes.APIEndpoint, error) {
			return multiaddr.NewMultiaddr(cfg.API.ListenAddress)
		}),
		Override(SetApiEndpointKey, func(lc fx.Lifecycle, e dtypes.APIEndpoint) error {
			ls := cfg.LocalStorage()
			if err := ls.SetAPIEndpoint(e); err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					return ls.ClearAPIEndpoint()
				},
			})
			return nil
		}),
	)
}

func ConfigEthRPCImpl(out *api.EthRPC) Option {
	return Options(
		func(s *Settings) error {
			resAPI := &impl.EthRPCAPI{}
			s.invokes[ExtractApiKey] = fx.Populate(resAPI)
			*out = resAPI
			return nil
		},
	)
}
