// Package trajectory traces and prints the repeated digit-product map of one
// number in one base. The output is meant for people, not parsers.
package trajectory

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sloan/internal/logging"
	"sloan/internal/persistence"
)

// Step is one application of the digit-product map.
type Step struct {
	Value   uint64
	Digits  []uint64
	Product uint64
}

// Trajectory is the full path of N under the map in Base.
type Trajectory struct {
	N     uint64
	Base  uint64
	Steps []Step
}

// Persistence is the number of steps taken.
func (t Trajectory) Persistence() int {
	return len(t.Steps)
}

// Trace applies the digit-product map while the value is greater than base.
// A value equal to base stops the trace, matching the diagnostic's historical
// output; persistence.Persistence counts one more step in that case.
func Trace(n, base uint64) (Trajectory, error) {
	if err := persistence.ValidateBase(base); err != nil {
		return Trajectory{}, err
	}
	t := Trajectory{N: n, Base: base}
	for current := n; current > base; {
		product := persistence.DigitProduct(current, base)
		t.Steps = append(t.Steps, Step{
			Value:   current,
			Digits:  persistence.Digits(current, base),
			Product: product,
		})
		current = product
	}
	logging.Get(logging.CategoryTrajectory).Debug("traced %d in base %d: %d steps", n, base, len(t.Steps))
	return t, nil
}

// Theme selects the styling used by Render.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemePlain Theme = "plain"
)

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	result lipgloss.Style
}

func stylesFor(theme Theme) styles {
	if theme == ThemeAuto || theme == "" {
		theme = ThemeLight
		if lipgloss.HasDarkBackground() {
			theme = ThemeDark
		}
	}
	switch theme {
	case ThemeLight:
		return styles{
			header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38")),
			label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5c6b7a")),
			value:  lipgloss.NewStyle().Foreground(lipgloss.Color("#101F38")),
			result: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#558B2F")),
		}
	case ThemeDark:
		return styles{
			header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
			label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9aa5b1")),
			value:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f2f2f2")),
			result: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		}
	}
	plain := lipgloss.NewStyle()
	return styles{header: plain, label: plain, value: plain, result: plain}
}

// FormatDigits writes digits as a bracketed base-10 list tagged with the base,
// e.g. [15, 15]_16 for ff in hexadecimal.
func FormatDigits(digits []uint64, base uint64) string {
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = strconv.FormatUint(d, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]_" + strconv.FormatUint(base, 10)
}

// Render writes t to w.
func Render(w io.Writer, t Trajectory, theme Theme) error {
	st := stylesFor(theme)

	var b strings.Builder
	b.WriteString(st.label.Render(`Digits are written as base-10 numbers, e.g. "ff" in base 16 is [15, 15]_16`))
	b.WriteString("\n")
	b.WriteString(st.header.Render(fmt.Sprintf("--- Persistence of %d in base %d ---", t.N, t.Base)))
	b.WriteString("\n")
	for i, s := range t.Steps {
		fmt.Fprintf(&b, "%s %s\n", st.label.Render(fmt.Sprintf("step %d  value in base:", i+1)), st.value.Render(FormatDigits(s.Digits, t.Base)))
		fmt.Fprintf(&b, "%s %s\n", st.label.Render("        digits multiplied:"), st.value.Render(strconv.FormatUint(s.Product, 10)))
	}
	b.WriteString(st.result.Render(fmt.Sprintf("Persistence of %d in base %d is %d", t.N, t.Base, t.Persistence())))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
