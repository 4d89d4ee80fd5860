package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/planshift/planshift/pkg/engine"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Transform Report
// =============================================================================

// printReport renders the per-group outcome of a transformation run.
func printReport(result *engine.Result) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers("Group", "Attempted", "OK", "Failed")

	for _, row := range []struct {
		name  string
		tally engine.Tally
	}{
		{"regular", result.Regular},
		{"hosted", result.Hosted},
		{"sketch-bound", result.SketchBound},
		{"markers", result.Markers},
		{"views", result.Views},
		{"annotations", result.Annotations},
	} {
		if row.tally.Attempted == 0 {
			continue
		}
		t.Row(row.name,
			strconv.Itoa(row.tally.Attempted),
			strconv.Itoa(row.tally.Succeeded),
			strconv.Itoa(row.tally.Failed))
	}
	fmt.Println(t)

	if result.Excluded > 0 {
		printDetail("%d elements excluded (pinned, datum, or filtered)", result.Excluded)
	}
	if result.RotationPartial > 0 {
		printWarning("%d elements translated but refused the rotation", result.RotationPartial)
	}
	if result.SketchPartial > 0 {
		printWarning("%d sketch-bound elements translated but kept their orientation", result.SketchPartial)
	}
	if result.JoinsCaptured > 0 {
		printDetail("joins: %d captured, %d restored, %d dropped",
			result.JoinsCaptured, result.JoinsRestored, result.JoinsDropped)
	}
	if result.JoinsDropped > 0 {
		printWarning("%d structural joins could not be restored", result.JoinsDropped)
	}
	if result.MarkersSkipped > 0 {
		printDetail("%d default markers left in place", result.MarkersSkipped)
	}
	if result.MarkersAmbiguous > 0 {
		printWarning("%d markers were ambiguous and transformed anyway", result.MarkersAmbiguous)
	}
	printDetail("finished in %s", result.Stats.TotalTime.Round(time.Millisecond))
}
