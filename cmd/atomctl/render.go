package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// formatScore prints a 0-10 value with two decimals, or n/a when absent.
func formatScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// scoreStyle colours a 0-10 value by maturity band.
func scoreStyle(v *float64) lipgloss.Style {
	switch {
	case v == nil:
		return dimStyle
	case *v >= 7:
		return goodStyle
	case *v >= 4:
		return warnStyle
	default:
		return errorStyle
	}
}

func printScoreRow(w io.Writer, label string, v *float64) {
	fmt.Fprintf(w, "  %-22s %s\n", label, scoreStyle(v).Render(formatScore(v)))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
