package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sloan/internal/scan"
	"sloan/internal/table"
)

var (
	sequenceAfter uint64
	sequenceFloor int
)

// sequenceCmd streams record-persistence terms
var sequenceCmd = &cobra.Command{
	Use:   "sequence [terms]",
	Short: "Print terms of the record-persistence sequence (A330152)",
	Long: `Finds integers whose maximal persistence beats every smaller integer's and
prints them as CSV rows (Persistence, Integer, Base) as soon as they are found.

Output starts with the sentinel row 0,0,0 and the seed 1,1,2, followed by the
requested number of new terms. With --after and --floor, scanning continues
after a known term and the preamble is omitted.

Example:
  sloan sequence 20
  sloan sequence 5 --after 692 --floor 9`,
	Args: cobra.ExactArgs(1),
	RunE: runSequence,
}

func init() {
	sequenceCmd.Flags().Uint64Var(&sequenceAfter, "after", 0, "Continue after this integer (a known term)")
	sequenceCmd.Flags().IntVar(&sequenceFloor, "floor", 0, "Persistence of the term given by --after")
}

func runSequence(cmd *cobra.Command, args []string) error {
	n, err := parseUint("terms", args[0])
	if err != nil {
		return err
	}
	if sequenceAfter == 0 && sequenceFloor != 0 {
		return fmt.Errorf("--floor requires --after")
	}
	if sequenceAfter != 0 && sequenceFloor < 1 {
		return fmt.Errorf("--floor must be at least 1 when --after is set")
	}
	delim, err := cfg.Output.DelimiterRune()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	backend := scan.NewBackend(cfg.Scan.Workers)
	stream, err := table.NewStream(cmd.OutOrStdout(), table.SequenceHeader, delim)
	if err != nil {
		return err
	}

	var scanner *scan.RecordScanner
	if sequenceAfter == 0 {
		if err := stream.WriteTerm(scan.Sentinel); err != nil {
			return err
		}
		if err := stream.WriteTerm(scan.Seed); err != nil {
			return err
		}
		scanner = scan.NewSeededRecordScanner(backend, cfg.Scan.RecordBlockSize)
	} else {
		scanner = scan.NewRecordScanner(backend, cfg.Scan.RecordBlockSize, sequenceAfter, sequenceFloor)
	}

	for i := uint64(0); i < n; i++ {
		term, err := scanner.Next(ctx)
		if err != nil {
			return fmt.Errorf("term %d: %w", i+1, err)
		}
		logger.Debug("Record term found",
			zap.Uint64("integer", term.Integer),
			zap.Int("persistence", term.Persistence),
			zap.Uint64("base", term.Base))
		if err := stream.WriteTerm(term); err != nil {
			return err
		}
	}
	return nil
}
