package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// SystemStatus shows host CPU, memory and disk pressure.
type SystemStatus struct {
	BaseComponent
	data    Data
	noEmoji bool
}

func NewSystemStatus(noEmoji bool) *SystemStatus {
	return &SystemStatus{noEmoji: noEmoji}
}

func (c *SystemStatus) ID() string    { return "system_status" }
func (c *SystemStatus) Title() string { return "Host" }

func (c *SystemStatus) Update(msg tea.Msg, data Data) (Component, tea.Cmd) {
	c.data = data
	return c, nil
}

func (c *SystemStatus) View(w, h int) string {
	content := c.renderContent(w)
	if c.CheckCacheWithSize(content, w, h) {
		return c.Cached()
	}
	rendered := panelStyle().Width(w - 2).Render(content)
	c.UpdateCache(rendered)
	return rendered
}

func (c *SystemStatus) renderContent(w int) string {
	sys := c.data.Metrics.System
	inner := innerWidth(w)
	barWidth := inner - 14
	if barWidth < 3 {
		barWidth = 3
	}

	var lines []string
	cpu := sys.CPUPercent / 100
	lines = append(lines, fmt.Sprintf("CPU  %6s %s", Percent(cpu), ProgressBar(cpu, barWidth, c.noEmoji)))

	if sys.MemTotal > 0 {
		memPct := float64(sys.MemUsed) / float64(sys.MemTotal)
		lines = append(lines, fmt.Sprintf("Mem  %6s %s", Percent(memPct), ProgressBar(memPct, barWidth, c.noEmoji)))
	}
	if sys.DiskTotal > 0 {
		diskPct := float64(sys.DiskUsed) / float64(sys.DiskTotal)
		lines = append(lines, fmt.Sprintf("Disk %6s %s", Percent(diskPct), ProgressBar(diskPct, barWidth, c.noEmoji)))
	}

	return FormatTitle(c.Title(), inner) + "\n" + joinLines(lines, "\n")
}
