package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// maxEvents bounds the event ring buffer kept for display.
const maxEvents = 200

// EventViewer scrolls the controller notification stream in a
// bubbles viewport. Follow mode sticks to the newest event.
type EventViewer struct {
	BaseComponent
	data    Data
	vp      viewport.Model
	follow  bool
	sized   bool
	noEmoji bool
}

func NewEventViewer(noEmoji bool) *EventViewer {
	return &EventViewer{vp: viewport.New(0, 0), follow: true, noEmoji: noEmoji}
}

func (c *EventViewer) ID() string    { return "events" }
func (c *EventViewer) Title() string { return "Events" }

// Follow reports whether the viewer sticks to the newest event.
func (c *EventViewer) Follow() bool { return c.follow }

// ToggleFollow flips follow mode.
func (c *EventViewer) ToggleFollow() { c.follow = !c.follow }

func (c *EventViewer) Update(msg tea.Msg, data Data) (Component, tea.Cmd) {
	c.data = data
	c.vp.SetContent(c.renderEvents())
	if c.follow {
		c.vp.GotoBottom()
	}

	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "down", "pgup", "pgdown":
			c.follow = false
			c.vp, cmd = c.vp.Update(msg)
		}
	}
	return c, cmd
}

func (c *EventViewer) renderEvents() string {
	if len(c.data.Events) == 0 {
		return "no events yet"
	}
	var lines []string
	for _, ev := range c.data.Events {
		lines = append(lines, fmt.Sprintf("%s  %-10s %s",
			ev.Time.Format("15:04:05"), truncateWithEllipsis(ev.Stream, 10), ev.Data))
	}
	return joinLines(lines, "\n")
}

func (c *EventViewer) View(w, h int) string {
	inner := innerWidth(w)
	innerH := h - 3 // border + title
	if innerH < 1 {
		innerH = 1
	}
	if !c.sized || c.vp.Width != inner || c.vp.Height != innerH {
		c.vp.Width = inner
		c.vp.Height = innerH
		c.sized = true
		c.vp.SetContent(c.renderEvents())
		if c.follow {
			c.vp.GotoBottom()
		}
	}

	content := FormatTitle(c.Title(), inner) + "\n" + c.vp.View()
	if c.CheckCacheWithSize(content, w, h) {
		return c.Cached()
	}
	rendered := panelStyle().Width(w - 2).Render(content)
	c.UpdateCache(rendered)
	return rendered
}
