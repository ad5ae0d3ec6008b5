package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/venus-ethrpc/api"
)

var versionCmd = &cli.Command{
	Name:  "version",
	Usage: "Print version",
	Action: func(cctx *cli.Context) error {
		nodeAPI, closer, err := api.GetEthRPCAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := api.ReqContext(cctx)

		v, err := nodeAPI.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Daemon: ", v.Version, "api", v.APIVersion)

		fmt.Print("Local: ")
		cli.VersionPrinter(cctx)
		return nil
	},
}
