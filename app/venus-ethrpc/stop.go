package main

import (
	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/venus-ethrpc/api"
)

var stopCmd = &cli.Command{
	Name:  "stop",
	Usage: "Stop a running venus-ethrpc daemon",
	Action: func(cctx *cli.Context) error {
		nodeAPI, closer, err := api.GetEthRPCAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		return nodeAPI.Shutdown(api.ReqContext(cctx))
	},
}
