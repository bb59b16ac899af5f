package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ServiceStatus shows the controller service as the init system sees it.
type ServiceStatus struct {
	BaseComponent
	data  Data
	icons Icons
}

func NewServiceStatus(noEmoji bool) *ServiceStatus {
	return &ServiceStatus{icons: NewIcons(noEmoji)}
}

func (c *ServiceStatus) ID() string    { return "service_status" }
func (c *ServiceStatus) Title() string { return "Service" }

func (c *ServiceStatus) Update(msg tea.Msg, data Data) (Component, tea.Cmd) {
	c.data = data
	return c, nil
}

func (c *ServiceStatus) View(w, h int) string {
	content := c.renderContent(w)
	if c.CheckCacheWithSize(content, w, h) {
		return c.Cached()
	}
	rendered := panelStyle().Width(w - 2).Render(content)
	c.UpdateCache(rendered)
	return rendered
}

func (c *ServiceStatus) renderContent(w int) string {
	svc := c.data.Metrics.Service
	var lines []string

	icon, state := c.icons.Err, "Stopped"
	if svc.Active {
		icon, state = c.icons.OK, "Running"
	}
	lines = append(lines, fmt.Sprintf("%s %s", icon, state))

	bootIcon, boot := c.icons.Warn, "Disabled at boot"
	if svc.Enabled {
		bootIcon, boot = c.icons.OK, "Enabled at boot"
	}
	lines = append(lines, fmt.Sprintf("%s %s", bootIcon, boot))

	if svc.Name != "" {
		lines = append(lines, fmt.Sprintf("Unit: %s", svc.Name))
	}

	return FormatTitle(c.Title(), innerWidth(w)) + "\n" + joinLines(lines, "\n")
}
