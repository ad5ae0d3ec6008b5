package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/venus-ethrpc/api"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var outstandingCmd = &cli.Command{
	Name:  "outstanding",
	Usage: "List requests waiting for a response",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "stale",
			Usage: "list journaled requests left behind by previous daemon runs instead",
		},
	},
	Action: func(cctx *cli.Context) error {
		nodeAPI, closer, err := api.GetEthRPCAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := api.ReqContext(cctx)

		var pending []types.PendingRequest
		if cctx.Bool("stale") {
			records, err := nodeAPI.StaleRequests(ctx)
			if err != nil {
				return err
			}
			for _, rec := range records {
				pending = append(pending, rec.PendingRequest)
			}
		} else {
			pending, err = nodeAPI.Outstanding(ctx)
			if err != nil {
				return err
			}
		}

		if len(pending) == 0 {
			fmt.Println("no outstanding requests")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tMethod\tFunction\tReturns\tRequirement\tTransport\tAge")
		now := time.Now()
		for _, p := range pending {
			age := now.Sub(p.Submitted).Truncate(time.Millisecond)
			ageStr := age.String()
			if age > time.Minute {
				ageStr = color.YellowString(ageStr)
			}
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Method, orDash(p.Function), orDash(string(p.Returns)), p.Requirement, p.Transport, ageStr)
		}
		return tw.Flush()
	},
}

var transportsCmd = &cli.Command{
	Name:  "transports",
	Usage: "List the transports the daemon dispatches over",
	Action: func(cctx *cli.Context) error {
		nodeAPI, closer, err := api.GetEthRPCAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		kinds, err := nodeAPI.Transports(api.ReqContext(cctx))
		if err != nil {
			return err
		}
		for _, k := range kinds {
			fmt.Println(k)
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
