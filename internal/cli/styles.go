// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/comexar/despacho/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#74B3CE")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// CodeStyle highlights tariff codes.
	CodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// FormatClassification renders one classification for the terminal.
func FormatClassification(c model.Classification) string {
	out := fmt.Sprintf("%s  %s\n", CodeStyle.Render(c.Code), c.Description)
	out += SubtleStyle.Render(fmt.Sprintf("source: %s  confidence: %s", c.Source, c.Confidence)) + "\n"

	if !c.Duty.Pending {
		out += fmt.Sprintf("duty %.1f%%  statistical %.1f%%\n", c.Duty.DutyRate, c.Duty.StatisticalTax)
	} else {
		out += WarningStyle.Render("duty treatment pending verification") + "\n"
	}

	if len(c.Interventions) > 0 {
		out += fmt.Sprintf("interventions: %v\n", c.Interventions)
	}
	if c.Warning != "" {
		out += WarningStyle.Render("⚠ "+c.Warning) + "\n"
	}
	if c.RequiresManualReview {
		out += ErrorStyle.Render("requires manual review") + "\n"
	}
	return out
}
