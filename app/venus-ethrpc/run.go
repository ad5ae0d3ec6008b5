package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/multiformats/go-multiaddr"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/stats/view"
	"golang.org/x/xerrors"

	venus_ethrpc "github.com/ipfs-force-community/venus-ethrpc"
	"github.com/ipfs-force-community/venus-ethrpc/api"
	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/dtypes"
	"github.com/ipfs-force-community/venus-ethrpc/metrics"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Start a venus-ethrpc daemon",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "override the API listen multiaddr from the config",
		},
		&cli.StringFlag{
			Name:  "requirement",
			Usage: "default transport requirement: empty, SYNC, DUPLEX or a transport kind",
		},
		&cli.BoolFlag{
			Name:  "debug-broadcast",
			Usage: "send every request over all transports",
		},
	},
	Action: func(cctx *cli.Context) error {
		//read config
		cfgPath := config.FsConfig(cctx.String("repo"))
		cfg, err := config.FromFile(cfgPath)
		if err != nil {
			return xerrors.Errorf("load config %s (run init first?): %w", cfgPath, err)
		}
		if cctx.IsSet("repo") {
			cfg.DataDir = cctx.String("repo")
		}
		if cctx.IsSet("listen") {
			cfg.API.ListenAddress = cctx.String("listen")
		}
		if cctx.IsSet("requirement") {
			cfg.Transport.Requirement = cctx.String("requirement")
		}
		if cctx.IsSet("debug-broadcast") {
			cfg.Transport.DebugBroadcast = cctx.Bool("debug-broadcast")
		}

		ctx := api.DaemonContext(cctx)

		// Register all metric views
		if err := view.Register(metrics.DefaultViews...); err != nil {
			log.Fatalf("Cannot register the view: %v", err)
		}

		shutdownChan := make(chan struct{}, 1)

		var ethAPI api.EthRPC
		stop, err := venus_ethrpc.New(ctx,
			venus_ethrpc.Repo(cfg),
			venus_ethrpc.Online(cfg),
			venus_ethrpc.Override(new(dtypes.ShutdownChan), dtypes.ShutdownChan(shutdownChan)),
			venus_ethrpc.ConfigEthRPCImpl(&ethAPI),
		)
		if err != nil {
			return xerrors.Errorf("creating node: %w", err)
		}

		endpoint, err := multiaddr.NewMultiaddr(cfg.API.ListenAddress)
		if err != nil {
			return xerrors.Errorf("getting API endpoint: %w", err)
		}

		stopRPC, err := venus_ethrpc.ServeRPC(venus_ethrpc.EthRPCHandler(ethAPI), "venus-ethrpc", endpoint)
		if err != nil {
			_ = stop(context.TODO())
			return xerrors.Errorf("serve rpc: %w", err)
		}
		log.Infof("daemon API listening on %s", endpoint)

		sigChan := make(chan os.Signal, 2)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			log.Warnw("received shutdown", "signal", sig)
		case <-shutdownChan:
			log.Warn("received shutdown")
		}

		log.Warn("Shutting down...")
		if err := stopRPC(context.TODO()); err != nil {
			log.Errorf("shutting down RPC server failed: %s", err)
		}
		if err := stop(context.TODO()); err != nil {
			log.Errorf("graceful shutting down failed: %s", err)
		}
		log.Warn("Graceful shutdown successful")
		return nil
	},
}
