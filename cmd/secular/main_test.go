package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/secular/internal/config"
	"github.com/san-kum/secular/internal/secular"
	"github.com/san-kum/secular/internal/storage"
	"github.com/san-kum/secular/internal/task"
)

const (
	daTask = "1 2000 500  0 1 0 0 0  1 1 1  1 20 0.3 0.2 60 0 10 0 0"
	saTask = "2 2000 0  1 0 0 0 0  1 1 1  1 20 0.3 0.2 60 0 10 0 0  90"
	badRow = "3 2000 0  1 0 0 0 0  1 1 1  -1 20 0.3 0.2 60 0 10 0 0"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestRunEndToEnd(t *testing.T) {
	input := writeInput(t, daTask, saTask, badRow, "garbage line")
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, err := execute(t, "run", "--input", input, "--out", outDir,
		"--start", "3", "--end", "1", "--workers", "2", "--preset", "fast")
	require.NoError(t, err)
	assert.Contains(t, stdout, "finished")

	last, err := os.ReadFile(filepath.Join(outDir, storage.LastStateFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(last)), "\n")
	assert.Len(t, lines, 2)

	logData, err := os.ReadFile(filepath.Join(outDir, storage.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "1:DA")
	assert.Contains(t, string(logData), "2:SA")

	_, err = os.Stat(filepath.Join(outDir, "output_1.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "output_2.txt"))
	assert.True(t, os.IsNotExist(err))

	meta, err := storage.New(outDir, 12).LoadMetadata()
	require.NoError(t, err)
	assert.Equal(t, 1, meta.StartID)
	assert.Equal(t, 3, meta.EndID)
	assert.Equal(t, "dopri5", meta.Stepper)
	assert.Equal(t, 2, meta.Counts["finished"])
	assert.Equal(t, 1, meta.Counts["skipped"])
}

func TestRunFatalArguments(t *testing.T) {
	input := writeInput(t, daTask)
	out := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"zero start", []string{"--start", "0", "--end", "2"}},
		{"negative end", []string{"--start", "1", "--end", "-4"}},
		{"bad workers", []string{"--workers", "many"}},
		{"zero workers", []string{"--workers", "0"}},
		{"unknown stepper", []string{"--stepper", "leapfrog"}},
		{"unknown preset", []string{"--preset", "turbo"}},
		{"bad precision", []string{"--precision", "40"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--input", input, "--out", out}, tt.args...)
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestInspect(t *testing.T) {
	var out bytes.Buffer
	err := inspect(&out, strings.NewReader(daTask+"\n\n"+saTask+"\n"+badRow+"\n"), secular.Options{})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "1:DA|quad|GR_{in}")
	assert.Contains(t, text, "2:SA| oct")
	assert.Contains(t, text, "unprocessable")
	assert.Len(t, strings.Split(strings.TrimSpace(text), "\n"), 4)
}

func TestSeries(t *testing.T) {
	tk, err := task.Decode(daTask)
	require.NoError(t, err)
	x0 := tk.InitialState()
	states := [][]float64{x0, x0}

	e1, err := series(states, "e1", nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, e1[0], 1e-12)

	a1, err := series(states, "a1", tk)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, a1[1], 1e-10)

	inc, err := series(states, "i_mut", tk)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, inc[0], 1e-9)

	col, err := series(states, "x2", nil)
	require.NoError(t, err)
	assert.Equal(t, x0[2], col[0])

	_, err = series(states, "a1", nil)
	assert.Error(t, err)
	_, err = series(states, "99", nil)
	assert.Error(t, err)
	_, err = series(states, "energy", nil)
	assert.Error(t, err)
}

func TestScanTask(t *testing.T) {
	r := strings.NewReader(strings.Join([]string{"junk", daTask, saTask}, "\n"))
	tk, err := scanTask(r, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, tk.ID)
	assert.True(t, math.Abs(tk.MeanAnomaly-90) < 1e-12)

	_, err = scanTask(strings.NewReader(daTask), 5)
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config", "precise")
	require.NoError(t, err)
	assert.Contains(t, out, "stepper: bulirsch-stoer")

	path := filepath.Join(t.TempDir(), "fast.yaml")
	_, err = execute(t, "config", "fast", "--save", path)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dopri5", cfg.Stepper)

	_, err = execute(t, "config", "nope")
	assert.Error(t, err)
}
