package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ControllerStatus shows northbound reachability and diagstatus health.
type ControllerStatus struct {
	BaseComponent
	data  Data
	icons Icons
	port  int
}

func NewControllerStatus(noEmoji bool, restPort int) *ControllerStatus {
	return &ControllerStatus{icons: NewIcons(noEmoji), port: restPort}
}

func (c *ControllerStatus) ID() string    { return "controller_status" }
func (c *ControllerStatus) Title() string { return "Controller" }

func (c *ControllerStatus) Update(msg tea.Msg, data Data) (Component, tea.Cmd) {
	c.data = data
	return c, nil
}

func (c *ControllerStatus) View(w, h int) string {
	content := c.renderContent(w)
	if c.CheckCacheWithSize(content, w, h) {
		return c.Cached()
	}
	rendered := panelStyle().Width(w - 2).Render(content)
	c.UpdateCache(rendered)
	return rendered
}

func (c *ControllerStatus) renderContent(w int) string {
	ctl := c.data.Metrics.Controller
	var lines []string

	restIcon, rest := c.icons.Err, fmt.Sprintf("REST :%d not listening", c.port)
	if ctl.Listening {
		restIcon, rest = c.icons.OK, fmt.Sprintf("REST :%d listening", c.port)
	}
	lines = append(lines, fmt.Sprintf("%s %s", restIcon, rest))

	healthIcon, health := c.icons.Unknown, "Health unknown"
	switch {
	case ctl.Operational && ctl.Degraded == 0:
		healthIcon, health = c.icons.OK, "Operational"
	case ctl.Operational:
		healthIcon = c.icons.Warn
		health = fmt.Sprintf("Degraded (%d/%d services)", ctl.Degraded, ctl.Components)
	case ctl.Status != "":
		healthIcon, health = c.icons.Err, ctl.Status
	}
	lines = append(lines, fmt.Sprintf("%s %s", healthIcon, health))

	if ctl.Components > 0 {
		lines = append(lines, fmt.Sprintf("Services: %d", ctl.Components))
	}
	if ctl.LatencyMS > 0 {
		lines = append(lines, fmt.Sprintf("Latency: %dms", ctl.LatencyMS))
	}

	return FormatTitle(c.Title(), innerWidth(w)) + "\n" + joinLines(lines, "\n")
}
