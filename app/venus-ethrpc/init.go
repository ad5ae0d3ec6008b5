package main

import (
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/lib/vfile"
	"github.com/ipfs-force-community/venus-ethrpc/models"
)

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "Initialize a venus-ethrpc repo",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "node-http",
			Usage: "http url of the ethereum node",
		},
		&cli.StringFlag{
			Name:  "node-ws",
			Usage: "websocket url of the ethereum node, empty disables the duplex transport",
		},
		&cli.StringFlag{
			Name:  "node-token",
			Usage: "bearer token sent to the node",
		},
		&cli.StringFlag{
			Name:  "listen",
			Usage: "multiaddr the daemon API listens on",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "request journal database: sqlite or mysql",
		},
	},
	Action: func(cctx *cli.Context) error {
		log.Info("Initializing venus-ethrpc repo")

		cfg := config.DefaultConfig()
		cfg.DataDir = cctx.String("repo")
		cfg.ConfigPath = config.FsConfig(cfg.DataDir)

		exist, err := config.ConfigExist(cfg.ConfigPath)
		if err != nil {
			return err
		}
		if exist {
			return xerrors.Errorf("repo is already initialized at %s", cfg.DataDir)
		}

		if cctx.IsSet("node-http") {
			cfg.Node.HTTPUrl = cctx.String("node-http")
		}
		if cctx.IsSet("node-ws") {
			cfg.Node.WSUrl = cctx.String("node-ws")
		}
		if cctx.IsSet("node-token") {
			cfg.Node.Token = cctx.String("node-token")
		}
		if cctx.IsSet("listen") {
			cfg.API.ListenAddress = cctx.String("listen")
		}
		if cctx.IsSet("db") {
			cfg.DB.Type = cctx.String("db")
		}

		dataDir, err := homedir.Expand(cfg.DataDir)
		if err != nil {
			return err
		}
		if err := vfile.EnsureDir(dataDir); err != nil {
			return xerrors.Errorf("create repo dir: %w", err)
		}

		// fail before writing anything when the journal cannot be opened
		r, err := models.SetDataBase(config.HomeDir(dataDir), &cfg.DB)
		if err != nil {
			return xerrors.Errorf("open request journal: %w", err)
		}
		if err := r.AutoMigrate(); err != nil {
			return xerrors.Errorf("migrate request journal: %w", err)
		}
		if err := r.DbClose(); err != nil {
			log.Warnf("close request journal: %s", err)
		}

		if err := config.SaveConfig(cfg.ConfigPath, cfg); err != nil {
			return xerrors.Errorf("save config: %w", err)
		}

		log.Infof("Repo initialized at %s", color.GreenString(cfg.DataDir))
		return nil
	},
}
