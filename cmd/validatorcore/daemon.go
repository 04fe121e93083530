package main

import (
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/barrier"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/fee"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/pipeline"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/safemode"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/clog"
	"github.com/chainbridge-validators/threshold-core/internal/config"
	"github.com/chainbridge-validators/threshold-core/internal/events"
	"github.com/chainbridge-validators/threshold-core/internal/metrics"
	"github.com/chainbridge-validators/threshold-core/internal/rpcops"
	"github.com/chainbridge-validators/threshold-core/internal/rpcwitness"
	"github.com/chainbridge-validators/threshold-core/internal/store"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

// Daemon wires every subsystem package into one running validatorcore
// process: the bbolt store, a Pipeline per active chain, the ceremony and
// broadcast metric collectors, the witness-origin gRPC server, and a
// ticker-driven OnInitialize poll loop - the role server (server.go) plays
// for lnd's rpcServer/fundingMgr/htlcSwitch/utxoNursery constellation.
type Daemon struct {
	started int32
	stopped int32

	cfg  *config.Config
	deps Dependencies
	log  btclog.Logger

	db       *store.DB
	registry *chains.Registry

	pipelines        map[chains.ChainID]*pipeline.Pipeline
	ceremonyMetrics  *metrics.Ceremony
	broadcastMetrics *metrics.Broadcast
	promRegistry     *prometheus.Registry

	witnessServer *rpcwitness.Server
	witnessGRPC   *grpc.Server
	witnessLis    net.Listener

	opsServer *rpcops.Server
	opsGRPC   *grpc.Server
	opsLis    net.Listener

	metricsSrv *http.Server

	tick *ticker.Ticker
	quit chan struct{}
}

// New assembles a Daemon from cfg and the externally-supplied deps. It
// opens the store and constructs a Pipeline for every chain named in
// deps.Chains, but does not bind any listener or start any goroutine -
// that's Start's job, mirroring newServer/Start's split in server.go.
func New(cfg *config.Config, deps Dependencies) (*Daemon, error) {
	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("validatorcore: opening store: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	ceremonyMetrics := metrics.NewCeremony(promRegistry)
	broadcastMetrics := metrics.NewBroadcast(promRegistry)

	sink := deps.Sink
	if sink == nil {
		sink = events.NewMemorySink()
	}

	safeModeMargins := safemode.Margins{
		BlockMargin:      cfg.SafeModeBlockMargin,
		ChainBlockMargin: cfg.SafeModeChainBlockMargin,
	}

	registry := chains.NewRegistry()
	pipelines := make(map[chains.ChainID]*pipeline.Pipeline, len(deps.Chains))
	decoders := make(map[chains.ChainID]rpcwitness.MetadataDecoder, len(deps.Chains))
	broadcasters := make(map[chains.ChainID]rpcwitness.Broadcaster, len(deps.Chains))
	operators := make(map[chains.ChainID]rpcops.Operator, len(deps.Chains))

	for id, cd := range deps.Chains {
		registry.Register(&chains.Chain{ID: id, Crypto: cd.Crypto, Builder: cd.Builder})

		safeModeCtl := safemode.New(safeModeMargins)
		safeModeCtl.SetFlags(safemode.Flags{
			RetryEnabled:            cfg.SafeModeRetryEnabled,
			EgressWitnessingEnabled: cfg.SafeModeEgressWitnessingEnabled,
		})

		p := pipeline.New(pipeline.Config{
			Chain:            id,
			Crypto:           cd.Crypto,
			Builder:          cd.Builder,
			Signer:           cd.Signer,
			Clock:            clock.NewDefaultClock(),
			Barriers:         barrier.New(),
			SafeMode:         safeModeCtl,
			Fees:             fee.NewLedger(),
			Sink:             sink,
			Logger:           clog.Logger(clog.SubsystemBroadcast),
			Store:            db,
			Metrics:          broadcastMetrics,
			AuthoritySet:     deps.AuthoritySet,
			BroadcastTimeout: cfg.BroadcastTimeout,
		})
		pipelines[id] = p
		broadcasters[id] = p
		operators[id] = p
		if cd.MetadataDecoder != nil {
			decoders[id] = cd.MetadataDecoder
		}
	}

	witnessServer := rpcwitness.NewServer(broadcasters, decoders, 4096, clog.Logger(clog.SubsystemRPC))
	opsServer := rpcops.NewServer(operators, clog.Logger(clog.SubsystemRPC))

	return &Daemon{
		cfg:              cfg,
		deps:             deps,
		log:              clog.Logger(clog.SubsystemCore),
		db:               db,
		registry:         registry,
		pipelines:        pipelines,
		ceremonyMetrics:  ceremonyMetrics,
		broadcastMetrics: broadcastMetrics,
		promRegistry:     promRegistry,
		witnessServer:    witnessServer,
		opsServer:        opsServer,
		tick:             ticker.New(defaultTickInterval),
		quit:             make(chan struct{}),
	}, nil
}

// defaultTickInterval is how often the daemon polls each chain's Height
// function and drives that chain's Pipeline.OnInitialize, standing in for
// the per-block notification a real chain-watcher would deliver (spec.md
// §6.2 "Height" is externally supplied, this module only decides when to
// ask for it).
const defaultTickInterval = 6 * time.Second

// CeremonyMetrics exposes the ceremony collector so ceremony/runner
// callers in an embedding process can record outcomes against the same
// registry the /metrics endpoint serves.
func (d *Daemon) CeremonyMetrics() *metrics.Ceremony { return d.ceremonyMetrics }

// Registry exposes the chain registry.
func (d *Daemon) Registry() *chains.Registry { return d.registry }

// Pipeline returns the running Pipeline for chain, if any.
func (d *Daemon) Pipeline(id chains.ChainID) (*pipeline.Pipeline, bool) {
	p, ok := d.pipelines[id]
	return p, ok
}

// Start binds the witness and metrics listeners and launches the
// OnInitialize poll loop. Mirrors server.Start's idempotent
// atomic.AddInt32 guard.
func (d *Daemon) Start() error {
	if !atomic.CompareAndSwapInt32(&d.started, 0, 1) {
		return nil
	}

	d.witnessGRPC = rpcwitness.NewGRPCServer(d.witnessServer)
	witnessLis, err := net.Listen("tcp", d.cfg.WitnessListen)
	if err != nil {
		return fmt.Errorf("validatorcore: binding witness listener: %w", err)
	}
	d.witnessLis = witnessLis
	go func() {
		if err := d.witnessGRPC.Serve(witnessLis); err != nil {
			d.log.Errorf("witness gRPC server exited: %v", err)
		}
	}()

	d.opsGRPC = rpcops.NewGRPCServer(d.opsServer)
	opsLis, err := net.Listen("tcp", d.cfg.RPCListen)
	if err != nil {
		return fmt.Errorf("validatorcore: binding operator listener: %w", err)
	}
	d.opsLis = opsLis
	go func() {
		if err := d.opsGRPC.Serve(opsLis); err != nil {
			d.log.Errorf("operator gRPC server exited: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(d.promRegistry, promhttp.HandlerOpts{}))
	d.metricsSrv = &http.Server{Addr: d.cfg.MetricsListen, Handler: mux}
	go func() {
		if err := d.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			d.log.Errorf("metrics server exited: %v", err)
		}
	}()

	d.tick.Resume()
	go d.pollLoop()

	d.log.Infof("validatorcore started: witness=%s ops=%s metrics=%s chains=%v",
		d.cfg.WitnessListen, d.cfg.RPCListen, d.cfg.MetricsListen, d.registry.Active())
	return nil
}

// pollLoop drives every chain's Pipeline.OnInitialize off the shared
// ticker, reading each chain's externally-supplied Height on every tick -
// the ticker-driven equivalent of htlcswitch's per-block forwarding loop.
func (d *Daemon) pollLoop() {
	for {
		select {
		case <-d.tick.Ticks():
			for id, cd := range d.deps.Chains {
				if cd.Height == nil {
					continue
				}
				height, err := cd.Height()
				if err != nil {
					d.log.Warnf("chain %v: height unavailable: %v", id, err)
					continue
				}
				if p, ok := d.pipelines[id]; ok {
					p.OnInitialize(height)
				}
			}
		case <-d.quit:
			return
		}
	}
}

// Stop gracefully shuts down every listener and goroutine Start launched,
// then closes the store. Safe to call once; subsequent calls are no-ops.
func (d *Daemon) Stop() error {
	if !atomic.CompareAndSwapInt32(&d.stopped, 0, 1) {
		return nil
	}

	close(d.quit)
	d.tick.Stop()

	if d.witnessGRPC != nil {
		d.witnessGRPC.GracefulStop()
	}
	if d.opsGRPC != nil {
		d.opsGRPC.GracefulStop()
	}
	if d.metricsSrv != nil {
		if err := d.metricsSrv.Close(); err != nil {
			d.log.Warnf("closing metrics server: %v", err)
		}
	}

	return d.db.Close()
}
