package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-tsestimator/estimator"
	"github.com/aouyang1/go-tsestimator/nullmodel"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataHome(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "daily")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var sb strings.Builder
	sb.WriteString("date,sales\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "%s,%d\n", start.AddDate(0, 0, i).Format("2006-01-02"), 10+i%7)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte(sb.String()), 0o644))
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	logger := newConsoleLogger(&errOut)
	cmd := newRootCmd(&logger)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestInventoryCmd(t *testing.T) {
	root := writeDataHome(t)

	out, err := run(t, "--data-home", root, "inventory")
	require.NoError(t, err)
	assert.Equal(t, "sales\n", out)

	out, err = run(t, "--data-home", root, "--json", "inventory")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"sales"}, names)
}

func TestAggregateCmd(t *testing.T) {
	root := writeDataHome(t)

	out, err := run(t, "--data-home", root, "aggregate", "sales",
		"--time-col", "date", "--freq", "monthly", "--agg", "sales=max")
	require.NoError(t, err)
	assert.Equal(t, "ts,sales\n2024-01-01T00:00:00Z,16\n2024-02-01T00:00:00Z,16\n", out)

	_, err = run(t, "--data-home", root, "aggregate", "sales", "--time-col", "date", "--agg", "sales")
	assert.ErrorIs(t, err, errInvalidAgg)
}

func TestForecastCmd(t *testing.T) {
	root := writeDataHome(t)
	plotPath := filepath.Join(t.TempDir(), "forecast.html")

	out, err := run(t, "--data-home", root, "--json", "forecast", "sales",
		"--time-col", "date", "--value-col", "sales",
		"--model", "linear", "--weekly-orders", "3",
		"--test-size", "14", "--horizon", "7", "--plot", plotPath)
	require.NoError(t, err)

	var report struct {
		Dataset string         `json:"dataset"`
		Score   *float64       `json:"score"`
		Summary map[string]any `json:"summary"`
		Results struct {
			T        []time.Time `json:"time"`
			Forecast []float64   `json:"forecast"`
			Lower    []float64   `json:"lower"`
			Upper    []float64   `json:"upper"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "sales", report.Dataset)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 1.0, *report.Score, 1e-6)
	assert.Equal(t, "linear", report.Summary["model"])
	assert.Len(t, report.Results.T, 67)
	assert.Len(t, report.Results.Lower, 67)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), report.Results.T[66])

	html, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Forecast")

	out, err = run(t, "--data-home", root, "forecast", "sales",
		"--time-col", "date", "--value-col", "sales", "--coverage", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Estimator:")
	assert.Contains(t, out, "Results:")
}

func TestForecastCmdErrors(t *testing.T) {
	root := writeDataHome(t)

	_, err := run(t, "--data-home", root, "forecast", "sales",
		"--time-col", "date", "--value-col", "sales", "--model", "prophet")
	assert.ErrorIs(t, err, errUnknownModel)

	_, err = run(t, "--data-home", root, "forecast", "sales",
		"--time-col", "date", "--value-col", "sales", "--test-size", "60")
	assert.ErrorIs(t, err, errInvalidTestSize)

	_, err = run(t, "--data-home", root, "forecast", "sales",
		"--time-col", "date", "--value-col", "sales", "--coverage", "1.5")
	var cfgErr *estimator.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, estimator.ParamCoverage, cfgErr.Param)

	_, err = run(t, "--data-home", root, "forecast", "sales",
		"--time-col", "date", "--value-col", "sales", "--null-strategy", "mode")
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, nullmodel.ParamStrategy, cfgErr.Param)

	_, err = run(t, "--data-home", root, "--log-level", "verbose", "inventory")
	assert.Error(t, err)
}
