// Package clog centralizes subsystem logger registration, mirroring the
// per-subsystem btclog wiring used throughout lnd (see lnd.go's
// logSubsystems table).
package clog

import (
	"os"

	"github.com/btcsuite/btclog"
)

// Subsystem tags, one per package that wants its own filterable log level.
const (
	SubsystemCeremony  = "CRMY"
	SubsystemBroadcast = "BCST"
	SubsystemChains    = "CHNS"
	SubsystemStore     = "STOR"
	SubsystemEvents    = "EVTS"
	SubsystemRPC       = "RPCW"
	SubsystemCore      = "CORE"
)

// backendLog is the logging backend that all subsystem loggers write
// through; it writes to stdout.
var backendLog = btclog.NewBackend(os.Stdout)

// registry holds a logger per subsystem tag so SetLevel can be applied to
// all of them from one config parameter.
var registry = make(map[string]btclog.Logger)

// Logger returns (creating if necessary) the logger for a subsystem tag.
func Logger(tag string) btclog.Logger {
	if l, ok := registry[tag]; ok {
		return l
	}
	l := backendLog.Logger(tag)
	l.SetLevel(defaultLevel)
	registry[tag] = l
	return l
}

// SetLevel applies a level string (e.g. "debug", "info", "warn") to every
// registered subsystem logger, and to any created afterwards by recording
// the default.
func SetLevel(levelStr string) error {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return errUnknownLevel(levelStr)
	}
	for _, l := range registry {
		l.SetLevel(level)
	}
	defaultLevel = level
	return nil
}

var defaultLevel = btclog.LevelInfo

type errUnknownLevel string

func (e errUnknownLevel) Error() string {
	return "unknown log level: " + string(e)
}
