package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sloan/internal/config"
	"sloan/internal/persistence"
	"sloan/internal/table"
)

// resetGlobals puts command state back to defaults for a direct RunE call.
func resetGlobals(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	rangeOut, rangeResume, showProgress = "", false, false
	sequenceAfter, sequenceFloor = 0, 0
	trajectoryPlain, trajectoryBounds = false, false
	configForce = false
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := fn(cmd, args)
	return out.String(), err
}

func TestParseUint(t *testing.T) {
	v, err := parseUint("start", "277")
	require.NoError(t, err)
	assert.Equal(t, uint64(277), v)

	for _, bad := range []string{"-5", "abc", "18446744073709551616"} {
		_, err := parseUint("start", bad)
		assert.Error(t, err, bad)
	}
}

func TestRunRangeWritesDefaultFile(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.BlockSize = 7

	out, err := run(t, runRange, "0", "20")
	require.NoError(t, err)

	path := filepath.Join(cfg.Output.Dir, "0-20.csv")
	assert.Contains(t, out, "Wrote 20 rows to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "Integer,Persistence,Base", lines[0])
	assert.Equal(t, "8,2,3", lines[9])
	assert.Equal(t, "10,2,4", lines[11])
}

func TestRunRangeAppendMatchesSingleRun(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.Workers = 3
	cfg.Scan.BlockSize = 40

	split := filepath.Join(cfg.Output.Dir, "split.csv")
	whole := filepath.Join(cfg.Output.Dir, "whole.csv")

	rangeOut = split
	_, err := run(t, runRange, "0", "100")
	require.NoError(t, err)
	_, err = run(t, runRange, "100", "200")
	require.NoError(t, err)

	rangeOut = whole
	_, err = run(t, runRange, "0", "200")
	require.NoError(t, err)

	a, err := os.ReadFile(split)
	require.NoError(t, err)
	b, err := os.ReadFile(whole)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestRunRangeResume(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.BlockSize = 25
	rangeOut = filepath.Join(cfg.Output.Dir, "resume.csv")

	_, err := run(t, runRange, "0", "50")
	require.NoError(t, err)

	rangeResume = true
	out, err := run(t, runRange, "0", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 70 rows")

	out, err = run(t, runRange, "0", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "already covers [0, 120)")

	data, err := os.ReadFile(rangeOut)
	require.NoError(t, err)
	assert.Equal(t, 121, strings.Count(string(data), "\n"))
}

func TestRunRangeResumeNarrowerRange(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.BlockSize = 64
	rangeOut = filepath.Join(cfg.Output.Dir, "wide.csv")

	_, err := run(t, runRange, "0", "200")
	require.NoError(t, err)

	rangeResume = true
	out, err := run(t, runRange, "0", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "already covers [0, 100)")
	assert.NotContains(t, out, "Wrote")

	data, err := os.ReadFile(rangeOut)
	require.NoError(t, err)
	assert.Equal(t, 201, strings.Count(string(data), "\n"))
}

func TestRunRangeResumeRejectsPartialRow(t *testing.T) {
	resetGlobals(t)
	rangeOut = filepath.Join(cfg.Output.Dir, "cut.csv")
	require.NoError(t, os.WriteFile(rangeOut, []byte("Integer,Persistence,Base\n0,0,2\n1,0,2\n2"), 0644))

	rangeResume = true
	_, err := run(t, runRange, "0", "10")
	assert.ErrorIs(t, err, table.ErrPartialRow)

	rangeResume = false
	_, err = run(t, runRange, "0", "10")
	assert.ErrorIs(t, err, table.ErrPartialRow)
}

func TestRunRangeInvalid(t *testing.T) {
	resetGlobals(t)

	_, err := run(t, runRange, "10", "10")
	assert.ErrorIs(t, err, persistence.ErrInvalidRange)

	_, err = run(t, runRange, "-1", "10")
	assert.Error(t, err)
}

func TestRunRangeUnwritablePath(t *testing.T) {
	resetGlobals(t)
	blocker := filepath.Join(cfg.Output.Dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	rangeOut = filepath.Join(blocker, "out.csv")

	_, err := run(t, runRange, "0", "10")
	assert.Error(t, err)
}

func TestRunSequence(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.RecordBlockSize = 100

	out, err := run(t, runSequence, "4")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Persistence,Integer,Base",
		"0,0,0",
		"1,1,2",
		"2,8,3",
		"3,23,6",
		"4,52,9",
		"5,127,13",
	}, "\n")+"\n", out)
}

func TestRunSequenceResume(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.RecordBlockSize = 100
	sequenceAfter, sequenceFloor = 127, 5

	out, err := run(t, runSequence, "2")
	require.NoError(t, err)
	assert.Equal(t, "Persistence,Integer,Base\n6,218,17\n7,412,23\n", out)

	sequenceFloor = 0
	_, err = run(t, runSequence, "2")
	assert.Error(t, err)
}

func TestRunSequenceFloorWithoutAfter(t *testing.T) {
	resetGlobals(t)
	sequenceFloor = 5

	out, err := run(t, runSequence, "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--floor requires --after")
	assert.Empty(t, out)
}

func TestRunTrajectory(t *testing.T) {
	resetGlobals(t)
	trajectoryPlain = true

	out, err := run(t, runTrajectory, "277", "29")
	require.NoError(t, err)
	assert.Contains(t, out, "[9, 16]_29")
	assert.Contains(t, out, "Persistence of 277 in base 29 is 5")

	_, err = run(t, runTrajectory, "277", "1")
	assert.ErrorIs(t, err, persistence.ErrInvalidBase)
}

func TestRunTrajectoryBounds(t *testing.T) {
	resetGlobals(t)
	trajectoryPlain = true

	out, err := run(t, runTrajectory, "277", "29")
	require.NoError(t, err)
	assert.NotContains(t, out, "Cutoff")

	trajectoryBounds = true
	out, err = run(t, runTrajectory, "277", "29")
	require.NoError(t, err)
	assert.Contains(t, out, "Candidate base for persistence 5 (unchecked): 47")
	assert.Contains(t, out, "Cutoff for persistence 5: 4314")
}

func TestPrintBoundsOverflow(t *testing.T) {
	out, err := run(t, func(cmd *cobra.Command, _ []string) error {
		return printBounds(cmd, 1000, 25)
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Candidate base for persistence 25 (unchecked): 39")
	assert.Contains(t, out, "Cutoff for persistence 25: exceeds 64 bits")
}

func TestRunConfigInit(t *testing.T) {
	resetGlobals(t)
	cfg.Scan.Workers = 4
	path := filepath.Join(cfg.Output.Dir, "conf", "sloan.yaml")

	out, err := run(t, runConfigInit, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote configuration to "+path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Scan.Workers)
	assert.Equal(t, cfg.Scan.BlockSize, loaded.Scan.BlockSize)

	_, err = run(t, runConfigInit, path)
	assert.ErrorContains(t, err, "already exists")

	configForce = true
	cfg.Scan.Workers = 2
	_, err = run(t, runConfigInit, path)
	require.NoError(t, err)
	loaded, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Scan.Workers)
}

func TestRootCommandAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "root.csv")
	t.Cleanup(func() {
		logger = zap.NewNop()
		cfg = config.DefaultConfig()
		rangeOut = ""
		workers, blockSize, verbose, configPath = 0, 0, false, config.DefaultConfigPath
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{
		"range", "0", "30",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--workers", "2",
		"--block-size", "8",
		"--out", out,
	})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, uint64(8), cfg.Scan.BlockSize)
	assert.Len(t, runID, 8)
	assert.Contains(t, buf.String(), "Wrote 30 rows")
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := newProgressBar(&buf, 100, true)
	bar.Advance(50)
	assert.InDelta(t, 0.5, bar.fraction(), 1e-9)
	bar.Advance(50)
	bar.Finish()
	assert.True(t, strings.HasPrefix(buf.String(), "\r"))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	buf.Reset()
	quiet := newProgressBar(&buf, 100, false)
	quiet.Advance(100)
	quiet.Finish()
	assert.Empty(t, buf.String())
}
