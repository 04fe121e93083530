package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsZeroBroadcastTimeout(t *testing.T) {
	cfg := Default()
	cfg.BroadcastTimeout = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveStageTimeout(t *testing.T) {
	cfg := Default()
	cfg.StageTimeout = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnnamedChain(t *testing.T) {
	cfg := Default()
	cfg.Chains = []ChainConfig{{RPCEndpoint: "http://localhost:8545"}}
	require.Error(t, cfg.Validate())
}

func TestLoadAppliesFlagOverrides(t *testing.T) {
	cfg, err := Load([]string{"--broadcasttimeout=250", "--configfile=/nonexistent/path.conf"})
	require.NoError(t, err)
	require.Equal(t, uint64(250), cfg.BroadcastTimeout)
}
