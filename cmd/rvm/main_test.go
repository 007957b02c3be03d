package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := log.GetLogger()
	t.Cleanup(func() { log.SetLogger(prev) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRegressCommand(t *testing.T) {
	dir := t.TempDir()
	plotPath := filepath.Join(dir, "sinc.png")
	metricsPath := filepath.Join(dir, "rvr.prom")

	out, logs, err := run(t, "regress", "--n", "40", "--test-points", "50",
		"--plot", plotPath, "--metrics", metricsPath)
	require.NoError(t, err)

	assert.Contains(t, out, "RVR  kernel=rbf(2)  bias=true  strategy=simultaneous")
	assert.Contains(t, out, "relevance vectors:")
	assert.Contains(t, out, "bias")
	assert.Contains(t, out, "rmse")
	assert.Contains(t, out, "sparsebayes_fits_total")
	assert.Contains(t, logs, "fit finished")

	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "sparsebayes_relevance_vectors{task=\"regression\"}")
}

func TestClassifyCommandFast(t *testing.T) {
	dir := t.TempDir()
	plotPath := filepath.Join(dir, "classes.png")

	out, _, err := run(t, "classify", "--n", "150", "--fast", "--convergence-threshold", "0.1",
		"--seed", "3", "--plot", plotPath)
	require.NoError(t, err)

	assert.Contains(t, out, "RVC  kernel=linear  bias=true  strategy=fast")
	assert.Contains(t, out, "accuracy")
	assert.Contains(t, out, "auc")
	assert.Contains(t, out, "sparsebayes_basis_events_total{action=add,task=classification}")
	assert.NotContains(t, out, "noise precision")

	_, err = os.Stat(plotPath)
	assert.NoError(t, err)
}

func TestConfigFileAndFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rvm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernel: rbf\nkernel_params: [1.5]\nmax_iter: 300\n"), 0o600))

	out, _, err := run(t, "regress", "--n", "30", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kernel=rbf(1.5)")

	out, _, err = run(t, "regress", "--n", "30", "--config", path, "--kernel-param", "3", "--bias=false")
	require.NoError(t, err)
	assert.Contains(t, out, "kernel=rbf(3)  bias=false")
}

func TestInvalidSettingsFail(t *testing.T) {
	_, _, err := run(t, "regress", "--kernel", "wavelet")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid settings"), err.Error())

	_, _, err = run(t, "regress", "--log-level", "loud")
	assert.Error(t, err)

	_, _, err = run(t, "regress", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestClassifyStandardized(t *testing.T) {
	out, logs, err := run(t, "classify", "--n", "150", "--standardize", "--kernel", "rbf")
	require.NoError(t, err)
	assert.Contains(t, out, "RVC  kernel=rbf(2)  bias=true  strategy=simultaneous")
	assert.Contains(t, out, "accuracy")
	assert.Contains(t, logs, "features standardized")
}
