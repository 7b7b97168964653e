package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPresetAndOverrides(t *testing.T) {
	cmd := runCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--preset", "relax", "--steps", "10", "--S", "0.5", "--wy", "2"}))

	cfg, err := resolveConfig(cmd, []string{"zero"})
	require.NoError(t, err)
	assert.Equal(t, "zero", cfg.Flow)
	assert.Equal(t, 10, cfg.Parameters.Steps)
	assert.Equal(t, 0.005, cfg.Parameters.Timestep, "preset timestep kept")
	require.NotNil(t, cfg.Parameters.RelaxationParameter)
	assert.Equal(t, 0.5, *cfg.Parameters.RelaxationParameter)
	require.NotNil(t, cfg.Parameters.DensityParameter)
	assert.Equal(t, 2.0, *cfg.Parameters.DensityParameter)
	assert.Equal(t, 1.0, cfg.Slip.X)
	assert.Equal(t, 2.0, cfg.Slip.Y)
}

func TestResolveConfigErrors(t *testing.T) {
	cmd := runCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--preset", "nope"}))
	_, err := resolveConfig(cmd, []string{"zero"})
	assert.ErrorContains(t, err, "unknown preset")

	cmd = runCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--order", "4"}))
	_, err = resolveConfig(cmd, nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidOrder)
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flow: uniform\norder: 2\nflow_options:\n  u: {x: 1, y: 0}\n"), 0644))

	cmd := runCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--order", "1"}))
	cfg, err := resolveConfig(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "uniform", cfg.Flow)
	assert.Equal(t, 1, cfg.Order)
	assert.Equal(t, 1.0, cfg.FlowOptions.U.X)
}

func TestRunStoresResult(t *testing.T) {
	dataDir = t.TempDir()
	t.Cleanup(func() { dataDir = ".mrsim" })

	cmd := runCommand()
	cmd.SetArgs([]string{"zero", "--preset", "relax", "--steps", "20"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	runs, err := storage.New(dataDir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "zero", runs[0].Flow)
	assert.Equal(t, 20, runs[0].Steps)
	assert.Equal(t, "terminated", runs[0].Status)

	_, traj, err := loadRun(runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 21, traj.Len())
}
