// Command validatorcli is the operator control plane for a running
// validatorcore: re-signing a stuck or aborted broadcast, and listing
// what's currently pending. Adapted from cmd/lncli's app-bootstrap shape;
// unlike lncli, validatorcore's operator RPC carries no TLS/macaroon
// authentication yet, so there's no certificate/macaroon plumbing here.
package main

import (
	"fmt"
	"os"

	"github.com/chainbridge-validators/threshold-core/internal/rpcops"
	"github.com/urfave/cli"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[validatorcli] %v\n", err)
	os.Exit(1)
}

func getClient(ctx *cli.Context) (rpcops.OpsClient, func()) {
	conn, err := grpc.Dial(ctx.GlobalString("rpcserver"), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fatal(err)
	}
	cleanUp := func() { conn.Close() }
	return rpcops.NewOpsClient(conn), cleanUp
}

func main() {
	app := cli.NewApp()
	app.Name = "validatorcli"
	app.Version = "0.1.0"
	app.Usage = "operator control plane for validatorcore"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: "localhost:10080",
			Usage: "host:port of validatorcore's operator RPC",
		},
	}
	app.Commands = []cli.Command{
		reSignBroadcastCommand,
		reSignAbortedCommand,
		pendingBroadcastsCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
