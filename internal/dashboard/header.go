package dashboard

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Header shows the product line: version, last refresh, update notice
// and the last collection error.
type Header struct {
	BaseComponent
	data Data
}

func NewHeader() *Header { return &Header{} }

func (c *Header) ID() string    { return "header" }
func (c *Header) Title() string { return "OpenDaylight Controller" }

func (c *Header) Update(msg tea.Msg, data Data) (Component, tea.Cmd) {
	c.data = data
	return c, nil
}

func (c *Header) View(w, h int) string {
	left := fmt.Sprintf("odlctl %s", c.data.CLIVersion)
	if c.data.UpdateInfo.Available {
		left += fmt.Sprintf("  (update available: %s)", c.data.UpdateInfo.LatestVersion)
	}

	right := "waiting for data"
	if !c.data.LastUpdate.IsZero() {
		right = "updated " + DurationShort(time.Since(c.data.LastUpdate)) + " ago"
	}
	if c.data.Err != nil {
		right = truncateWithEllipsis("error: "+c.data.Err.Error(), innerWidth(w)/2)
	}

	content := left
	gap := innerWidth(w) - lipgloss.Width(left) - lipgloss.Width(right)
	if gap > 0 {
		content = left + lipgloss.NewStyle().Width(gap).Render("") + right
	}

	if c.CheckCacheWithSize(content, w, h) {
		return c.Cached()
	}
	rendered := panelStyle().Width(w - 2).Render(
		FormatTitle(c.Title(), innerWidth(w)) + "\n" + content)
	c.UpdateCache(rendered)
	return rendered
}
