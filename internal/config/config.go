// Package config parses validatorcore's governance-mutable parameters
// (spec.md §6.7), mirroring lnd.go's loadConfig/flags.Parse pattern: a
// struct of go-flags tagged fields, an optional --configfile ini overlay,
// and defaults applied before parsing.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"
)

var (
	errInvalidBroadcastTimeout = errors.New("config: broadcasttimeout must be non-zero")
	errInvalidStageTimeout     = errors.New("config: stagetimeout must be positive")
	errChainNameRequired       = errors.New("config: each configured chain requires a name")
)

const (
	defaultConfigFilename           = "validatorcore.conf"
	defaultDataDirname              = "data"
	defaultBroadcastTimeout         = uint64(100)
	defaultStageTimeout             = 30 * time.Second
	defaultSafeModeBlockMargin      = uint64(10)
	defaultSafeModeChainBlockMargin = uint64(10)
	defaultRPCListen                = "localhost:10080"
	defaultWitnessListen            = "localhost:10090"
	defaultMetricsListen            = "localhost:10100"
)

func defaultDataDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".validatorcore")
	}
	return filepath.Join(dir, ".validatorcore")
}

// ChainConfig holds one target chain's RPC endpoint and whether it's
// currently active (spec.md §6.7 "per-chain RPC endpoints").
type ChainConfig struct {
	Chain       string `long:"chain" description:"target chain identifier (ethereum, bitcoin, solana, polkadot)"`
	RPCEndpoint string `long:"rpcendpoint" description:"RPC endpoint URL for this chain's watcher/broadcaster"`
	Disabled    bool   `long:"disabled" description:"disable this chain without removing its configuration"`
}

// Config is validatorcore's full parsed configuration.
type Config struct {
	ShowVersion bool   `short:"V" long:"version" description:"display version and exit"`
	ConfigFile  string `long:"configfile" description:"path to a configuration file"`
	DataDir     string `long:"datadir" description:"directory holding the bbolt store"`
	LogDir      string `long:"logdir" description:"directory to write log files"`
	DebugLevel  string `long:"debuglevel" description:"logging level for all subsystems, or subsystem=level,subsystem2=level2,..."`

	// BroadcastTimeout is the default per-chain nomination timeout in
	// target-chain blocks (spec.md §6.7). It applies to every chain;
	// ChainConfig has no per-chain override.
	BroadcastTimeout uint64 `long:"broadcasttimeout" description:"default broadcast nomination timeout, in target-chain blocks"`

	// StageTimeout bounds how long a single ceremony stage may remain
	// open awaiting messages before it's treated as a broadcast
	// failure (spec.md §4.1).
	StageTimeout time.Duration `long:"stagetimeout" description:"ceremony stage timeout"`

	// SafeMode carries the governance-mutable retry/witnessing gates
	// and reschedule margins (spec.md §6.7, §9).
	SafeModeRetryEnabled            bool   `long:"safemode.retryenabled" description:"allow normal per-block retry processing"`
	SafeModeEgressWitnessingEnabled bool   `long:"safemode.egresswitnessingenabled" description:"allow witness-origin calls to mutate pipeline state"`
	SafeModeBlockMargin             uint64 `long:"safemode.blockmargin" description:"blocks to defer a retry-queue entry while retry is disabled"`
	SafeModeChainBlockMargin        uint64 `long:"safemode.chainblockmargin" description:"blocks to defer a timed-out entry while retry is disabled"`

	RPCListen     string `long:"rpclisten" description:"operator gRPC/CLI listen address"`
	WitnessListen string `long:"witnesslisten" description:"witness-origin gRPC listen address"`
	MetricsListen string `long:"metricslisten" description:"Prometheus /metrics listen address"`

	Chains []ChainConfig `group:"chain" namespace:"chain"`
}

// Default returns a Config populated with validatorcore's at-rest
// defaults, the values Load below applies before flag/ini parsing
// overrides them - mirrors lnd.go's defaultCfg literal.
func Default() *Config {
	return &Config{
		DataDir:                         filepath.Join(defaultDataDir(), defaultDataDirname),
		ConfigFile:                      filepath.Join(defaultDataDir(), defaultConfigFilename),
		DebugLevel:                      "info",
		BroadcastTimeout:                defaultBroadcastTimeout,
		StageTimeout:                    defaultStageTimeout,
		SafeModeRetryEnabled:            true,
		SafeModeEgressWitnessingEnabled: true,
		SafeModeBlockMargin:             defaultSafeModeBlockMargin,
		SafeModeChainBlockMargin:        defaultSafeModeChainBlockMargin,
		RPCListen:                       defaultRPCListen,
		WitnessListen:                   defaultWitnessListen,
		MetricsListen:                   defaultMetricsListen,
	}
}

// Load parses command-line flags over Default(), applying an ini-format
// --configfile overlay first if one is present - the same two-pass
// "defaults, then file, then flags win" order lnd.go's loadConfig uses.
func Load(args []string) (*Config, error) {
	preCfg := Default()
	parser := flags.NewParser(preCfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		fileParser := flags.NewParser(cfg, flags.Default)
		if err := flags.NewIniParser(fileParser).ParseFile(preCfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	flagParser := flags.NewParser(cfg, flags.Default)
	if _, err := flagParser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants Load can't express through struct tags
// alone.
func (c *Config) Validate() error {
	if c.BroadcastTimeout == 0 {
		return errInvalidBroadcastTimeout
	}
	if c.StageTimeout <= 0 {
		return errInvalidStageTimeout
	}
	for _, ch := range c.Chains {
		if ch.Chain == "" {
			return errChainNameRequired
		}
	}
	return nil
}
