package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/linnemanlabs/carepath/internal/triage"
)

func severityColor(c triage.ColorCode) *color.Color {
	switch c {
	case triage.ColorRed:
		return color.New(color.FgRed, color.Bold)
	case triage.ColorOrange:
		return color.New(color.FgHiRed)
	case triage.ColorYellow:
		return color.New(color.FgYellow)
	case triage.ColorGreen:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgBlue)
	}
}

func printResult(w io.Writer, r *triage.Result) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	sev := r.EmergencySeverity

	_, _ = severityColor(sev.ColorCode).Fprintf(w, "ESI %d  %s\n", sev.ESILevel, sev.Severity)
	fmt.Fprintf(w, "  Action:    %s\n", sev.Action)
	fmt.Fprintf(w, "  Wait time: %s\n", sev.WaitTime)
	if sev.Warning != nil {
		_, _ = color.New(color.FgYellow).Fprintf(w, "  Warning:   %s\n", *sev.Warning)
	}
	fmt.Fprintln(w)

	_, _ = bold.Fprintln(w, "CANDIDATES")
	for i, c := range r.Predictions {
		fmt.Fprintf(w, "  %d. %-32s %7s  %s\n", i+1, c.Condition, c.ConfidencePercentage, c.Specialty)
		_, _ = dim.Fprintf(w, "     %s reliability: %s\n", c.Reliability, c.Reliability.Description())
	}
	fmt.Fprintln(w)

	if r.ID != "" {
		_, _ = dim.Fprintf(w, "assessment %s  model accuracy %v, trained %s\n", r.ID, r.ModelInfo.Accuracy, r.ModelInfo.TrainingDate)
	}
	_, _ = dim.Fprintln(w, strings.TrimSpace(r.Disclaimer))
}

func printError(w io.Writer, resp *triage.ErrorResponse) {
	_, _ = color.New(color.FgRed).Fprintf(w, "Error: %s\n", resp.Error)
	if resp.Disclaimer != "" {
		fmt.Fprintln(w)
		_, _ = color.New(color.FgHiBlack).Fprintln(w, strings.TrimSpace(resp.Disclaimer))
	}
}
