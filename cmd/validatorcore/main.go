// Command validatorcore runs one validator's broadcast-lifecycle and
// ceremony-recovery daemon: a Pipeline per configured target chain, the
// witness-origin gRPC server, and a Prometheus /metrics endpoint.
//
// Per-chain ThresholdSigner and TransactionBuilder implementations, and
// the current validator authority set, are not constructed here - they're
// out of this module's scope (spec.md §1, §6) and must be supplied by an
// embedding main that knows how to talk to each target chain.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/chainbridge-validators/threshold-core/internal/clog"
	"github.com/chainbridge-validators/threshold-core/internal/config"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := validatorcoreMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// validatorcoreMain is the nested "real" main, so deferred cleanup runs
// even on a graceful shutdown signal - the same split lndMain/main uses.
func validatorcoreMain() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Println("validatorcore version", version)
		return nil
	}
	if err := clog.SetLevel(cfg.DebugLevel); err != nil {
		return err
	}

	// An embedding deployment wires real per-chain capabilities (crypto,
	// transaction builder, threshold signer, height source) into a
	// Dependencies value before calling New; a bare Dependencies{} here
	// runs with no chains registered until one is supplied.
	d, err := New(cfg, Dependencies{})
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	return d.Stop()
}

const version = "0.1.0"
