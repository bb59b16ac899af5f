package dashboard

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	tea "github.com/charmbracelet/bubbletea"
)

// Component is one dashboard panel.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg, data Data) (Component, tea.Cmd)
	View(width, height int) string

	ID() string
	Title() string
}

// BaseComponent carries shared panel state, including a hash-based
// render cache so unchanged panels skip lipgloss work.
type BaseComponent struct {
	lastHash uint64
	cached   string
}

// Init is a no-op by default.
func (c *BaseComponent) Init() tea.Cmd { return nil }

// CheckCacheWithSize reports a cache hit when neither content nor
// dimensions changed since the last render.
func (c *BaseComponent) CheckCacheWithSize(content string, w, h int) bool {
	h64 := xxhash.Sum64String(fmt.Sprintf("%dx%d|%s", w, h, content))
	if h64 == c.lastHash && c.cached != "" {
		return true
	}
	c.lastHash = h64
	return false
}

// UpdateCache stores the rendered output.
func (c *BaseComponent) UpdateCache(rendered string) { c.cached = rendered }

// Cached returns the stored render.
func (c *BaseComponent) Cached() string { return c.cached }

// Registry holds panels in deterministic registration order.
type Registry struct {
	order      []string
	components map[string]Component
}

func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Component)}
}

func (r *Registry) Register(comp Component) {
	id := comp.ID()
	if _, exists := r.components[id]; !exists {
		r.order = append(r.order, id)
	}
	r.components[id] = comp
}

func (r *Registry) Get(id string) Component { return r.components[id] }

// UpdateAll propagates a message and fresh data to every panel in
// registration order.
func (r *Registry) UpdateAll(msg tea.Msg, data Data) []tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range r.order {
		updated, cmd := r.components[id].Update(msg, data)
		r.components[id] = updated
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
