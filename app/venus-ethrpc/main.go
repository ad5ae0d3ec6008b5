package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	venus_ethrpc "github.com/ipfs-force-community/venus-ethrpc"
	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/constants"
)

var log = logging.Logger("main")

func main() {
	venus_ethrpc.SetupLogLevels()

	local := []*cli.Command{
		initCmd, runCmd, callCmd, outstandingCmd, transportsCmd, logCmd, stopCmd, versionCmd,
	}

	app := &cli.App{
		Name:                 "venus-ethrpc",
		Usage:                "Correlating JSON-RPC client for Ethereum contract calls",
		Version:              constants.UserVersion(),
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				// examined in Before
				Name:        "color",
				Usage:       "use color in display output",
				DefaultText: "depends on output being a TTY",
			},
			&cli.StringFlag{
				Name:    "repo",
				EnvVars: []string{"ETHRPC_PATH"},
				Value:   config.DefaultDataDir,
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "multiaddr of a running daemon, overrides the endpoint found in the repo",
			},
		},
		Commands: local,
		Before: func(cctx *cli.Context) error {
			if cctx.IsSet("color") {
				color.NoColor = !cctx.Bool("color")
			}
			return nil
		},
	}
	app.Setup()

	RunApp(app)
}

func RunApp(app *cli.App) {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err) // nolint:errcheck
		var phe *PrintHelpErr
		if xerrors.As(err, &phe) {
			_ = cli.ShowCommandHelp(phe.Ctx, phe.Ctx.Command.Name)
		}
		os.Exit(1)
	}
}
