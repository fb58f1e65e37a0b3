package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerec/pkg/utils"
)

func TestSetup(t *testing.T) {
	t.Setenv(utils.ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("GAMEREC_GRPC_ADDR", ":9191")
	t.Setenv("GAMEREC_LOG_LEVEL", "warn")

	cfg, logger, err := setup()
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.GRPC.Addr)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestSetupRejectsBadConfig(t *testing.T) {
	t.Setenv(utils.ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("GAMEREC_LIMIT", "0")

	_, _, err := setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
