package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/chainbridge-validators/threshold-core/internal/rpcops"
	"github.com/urfave/cli"
)

func printJSON(resp interface{}) {
	b, err := json.Marshal(resp)
	if err != nil {
		fatal(err)
	}

	var out bytes.Buffer
	json.Indent(&out, b, "", "\t")
	out.WriteTo(os.Stdout)
}

var reSignBroadcastCommand = cli.Command{
	Name:      "resign",
	Usage:     "re-sign a single broadcast",
	ArgsUsage: "chain-id broadcast-id",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "request-broadcast",
			Usage: "also request the resigned call be broadcast",
		},
		cli.BoolFlag{
			Name:  "refresh-replay-protection",
			Usage: "bump replay-protection fields before resigning",
		},
	},
	Action: reSignBroadcast,
}

func reSignBroadcast(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errors.New("resign requires chain-id and broadcast-id")
	}

	chainID, err := parseUint32(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	broadcastID, err := parseUint64(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	client, cleanUp := getClient(ctx)
	defer cleanUp()

	resp, err := client.ReSignBroadcast(context.Background(), &rpcops.ReSignBroadcastRequest{
		ChainID:                 chainID,
		BroadcastID:             broadcastID,
		RequestBroadcast:        ctx.Bool("request-broadcast"),
		RefreshReplayProtection: ctx.Bool("refresh-replay-protection"),
	})
	if err != nil {
		return err
	}

	printJSON(resp)
	return nil
}

var reSignAbortedCommand = cli.Command{
	Name:      "resign-aborted",
	Usage:     "re-sign every aborted broadcast on one chain",
	ArgsUsage: "chain-id",
	Action:    reSignAborted,
}

func reSignAborted(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("resign-aborted requires chain-id")
	}
	chainID, err := parseUint32(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	client, cleanUp := getClient(ctx)
	defer cleanUp()

	resp, err := client.ReSignAborted(context.Background(), &rpcops.ReSignAbortedRequest{ChainID: chainID})
	if err != nil {
		return err
	}

	printJSON(resp)
	return nil
}

var pendingBroadcastsCommand = cli.Command{
	Name:      "pending",
	Usage:     "list pending broadcasts on one chain",
	ArgsUsage: "chain-id",
	Action:    pendingBroadcasts,
}

func pendingBroadcasts(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("pending requires chain-id")
	}
	chainID, err := parseUint32(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	client, cleanUp := getClient(ctx)
	defer cleanUp()

	resp, err := client.PendingBroadcasts(context.Background(), &rpcops.PendingBroadcastsRequest{ChainID: chainID})
	if err != nil {
		return err
	}

	printJSON(resp)
	return nil
}
