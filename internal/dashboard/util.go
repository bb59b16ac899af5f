package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Icons gives panels a consistent emoji/ASCII fallback set.
type Icons struct {
	OK      string
	Warn    string
	Err     string
	Unknown string
}

func NewIcons(noEmoji bool) Icons {
	if noEmoji {
		return Icons{OK: "[OK]", Warn: "[!]", Err: "[X]", Unknown: "[?]"}
	}
	return Icons{OK: "✓", Warn: "⚠", Err: "✗", Unknown: "◯"}
}

// Percent formats a fraction in [0,1] as a percentage.
func Percent(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// ProgressBar renders a bar of the given width for a fraction in [0,1].
func ProgressBar(fraction float64, width int, noEmoji bool) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	if width < 3 {
		return fmt.Sprintf("%.0f%%", fraction*100)
	}
	barWidth := width
	if noEmoji {
		barWidth = width - 2
	}
	filled := int(float64(barWidth) * fraction)
	if filled > barWidth {
		filled = barWidth
	}
	if noEmoji {
		return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]"
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// DurationShort formats a duration concisely: 42s, 3m, 2h10m, 1d4h.
func DurationShort(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	if h == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, h)
}

// truncateWithEllipsis caps string length for fixed-width cells.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen == 1 {
		return "…"
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// joinLines joins lines with a separator via strings.Builder.
func joinLines(lines []string, sep string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(line)
	}
	return b.String()
}

// FormatTitle renders a panel title bold, centered, uppercased.
func FormatTitle(title string, width int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Width(width).
		Align(lipgloss.Center).
		Render(strings.ToUpper(title))
}

// panelStyle is the shared bordered box for panels.
func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1)
}

// innerWidth is the usable content width inside a bordered padded panel.
func innerWidth(total int) int {
	w := total - 4
	if w < 1 {
		w = 1
	}
	return w
}
