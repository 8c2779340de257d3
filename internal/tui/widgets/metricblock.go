// ABOUTME: Compact metric block widget for the home screen
// ABOUTME: Shows an icon, a title in the border, a value, and a caption

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#9E9E9E"), // Muted gray
		TitleColor:  lipgloss.Color("#4A90A0"), // Clinic teal
		ValueColor:  lipgloss.Color("#F5F7FA"), // Light
	}
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title string, value string, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}

	// Inner width excludes the two border columns and two padding columns
	innerWidth := config.Width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)

	// Title sits inside the top border
	topBorder := fmt.Sprintf("┌─ %s %s┐",
		titleStyle.Render(titleStr),
		strings.Repeat("─", max(0, config.Width-5-lipgloss.Width(titleStr))))

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	valueLine := "│  " + pad(valueStyle.Render(truncate(value, innerWidth)), innerWidth) + "│"

	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	subtitleLine := "│  " + pad(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth) + "│"

	bottomBorder := fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))

	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	return strings.Join([]string{
		borderStyle.Render(topBorder),
		borderStyle.Render(valueLine),
		borderStyle.Render(subtitleLine),
		borderStyle.Render(bottomBorder),
	}, "\n")
}

// CountBlock renders a simple count metric
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

// pad right-fills s with spaces to width display columns
func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

// truncate shortens a string to maxLen display columns with ellipsis
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:min(len(runes), maxLen)])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
