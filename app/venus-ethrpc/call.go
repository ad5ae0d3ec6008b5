package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/api"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var callCmd = &cli.Command{
	Name:      "call",
	Usage:     "Call a contract function through the daemon",
	ArgsUsage: "<function name> [params...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "to",
			Usage:    "contract address",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "sender address",
		},
		&cli.StringFlag{
			Name:  "sig",
			Usage: "canonical function signature, eg. balanceOf(address)",
		},
		&cli.StringFlag{
			Name:  "returns",
			Usage: "expected return type: number, int256, bool, string, address, hash, or any of them suffixed with []",
		},
		&cli.BoolFlag{
			Name:  "send",
			Usage: "send a transaction instead of eth_call",
		},
		&cli.StringFlag{
			Name:  "gas",
			Usage: "gas limit as a hex quantity",
		},
		&cli.StringFlag{
			Name:  "value",
			Usage: "wei to transfer as a hex quantity",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() < 1 {
			return ShowHelp(cctx, xerrors.New("must specify the function name"))
		}

		nodeAPI, closer, err := api.GetEthRPCAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := api.ReqContext(cctx)

		tx := &types.Transaction{
			Name:      cctx.Args().First(),
			Signature: cctx.String("sig"),
			Returns:   types.ReturnType(cctx.String("returns")),
			From:      cctx.String("from"),
			To:        cctx.String("to"),
			Send:      cctx.Bool("send"),
			Gas:       cctx.String("gas"),
			Value:     cctx.String("value"),
		}
		for _, arg := range cctx.Args().Tail() {
			tx.Params = append(tx.Params, parseParam(arg))
		}

		res, err := nodeAPI.CallContract(ctx, tx)
		if err != nil {
			return xerrors.Errorf("%s: %w", color.RedString(tx.Name), err)
		}

		returns := string(res.Returns)
		if returns == "" {
			returns = "-"
		}
		fmt.Printf("%s (%s): %s\n", color.GreenString(res.Function), returns, string(res.Value))
		return nil
	},
}

// parseParam keeps numbers and hex strings as text for the encoder and only
// lifts booleans.
func parseParam(arg string) interface{} {
	switch strings.ToLower(arg) {
	case "true":
		return true
	case "false":
		return false
	}
	return arg
}
