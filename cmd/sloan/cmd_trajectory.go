package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sloan/internal/persistence"
	"sloan/internal/trajectory"
)

var (
	trajectoryPlain  bool
	trajectoryBounds bool
)

// trajectoryCmd prints the digit-product trajectory of one number
var trajectoryCmd = &cobra.Command{
	Use:   "trajectory [n] [base]",
	Short: "Print each digit-product step of n in base",
	Long: `Repeatedly multiplies the digits of n written in base, printing the digits
and the product at every step, and reports the number of steps.

With --bounds it also prints the closed-form candidate base ceil(n/(P+1)) and
the cutoff (P+1)*((P+1)!-1) for the persistence P found. Neither is checked
against a search; they are estimates only.

Example:
  sloan trajectory 277 29
  sloan trajectory 277 29 --bounds`,
	Args: cobra.ExactArgs(2),
	RunE: runTrajectory,
}

func init() {
	trajectoryCmd.Flags().BoolVar(&trajectoryPlain, "plain", false, "Disable colors and styling")
	trajectoryCmd.Flags().BoolVar(&trajectoryBounds, "bounds", false, "Also print the unchecked closed-form base and cutoff")
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	n, err := parseUint("n", args[0])
	if err != nil {
		return err
	}
	base, err := parseUint("base", args[1])
	if err != nil {
		return err
	}

	t, err := trajectory.Trace(n, base)
	if err != nil {
		return err
	}

	theme := trajectory.Theme(cfg.Display.Theme)
	if trajectoryPlain {
		theme = trajectory.ThemePlain
	}
	if err := trajectory.Render(cmd.OutOrStdout(), t, theme); err != nil {
		return err
	}
	if trajectoryBounds {
		return printBounds(cmd, n, t.Persistence())
	}
	return nil
}

// printBounds reports the closed-form estimates for persistence p.
func printBounds(cmd *cobra.Command, n uint64, p int) error {
	out := cmd.OutOrStdout()
	base, err := persistence.FindBase(n, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Candidate base for persistence %d (unchecked): %d\n", p, base)

	cutoff, err := persistence.Cutoff(p)
	switch {
	case errors.Is(err, persistence.ErrOverflow):
		fmt.Fprintf(out, "Cutoff for persistence %d: exceeds 64 bits\n", p)
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "Cutoff for persistence %d: %d\n", p, cutoff)
	}
	return nil
}
