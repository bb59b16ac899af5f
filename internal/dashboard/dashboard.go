package dashboard

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/update"
)

// keyMap defines the dashboard keyboard shortcuts.
type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Follow  key.Binding
	Up      key.Binding
	Down    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Refresh, k.Help},
		{k.Follow, k.Up, k.Down},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
		Help:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "toggle help")),
		Follow:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle follow events")),
		Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll events up")),
		Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll events down")),
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// subscribedMsg carries the opened event channel to the UI thread.
type subscribedMsg struct{ ch <-chan controller.Event }

// Dashboard is the Bubble Tea model.
type Dashboard struct {
	opts     Options
	data     Data
	events   []controller.Event
	eventCh  <-chan controller.Event
	registry *Registry
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	showHelp bool
	loading  bool
	lastOK   time.Time

	ctx         context.Context
	fetchCancel context.CancelFunc
}

// New creates a dashboard model.
func New(opts Options) *Dashboard {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 2 * time.Second
	}

	registry := NewRegistry()
	registry.Register(NewHeader())
	registry.Register(NewServiceStatus(opts.NoEmoji))
	registry.Register(NewControllerStatus(opts.NoEmoji, opts.Config.RestPort))
	registry.Register(NewSystemStatus(opts.NoEmoji))
	registry.Register(NewEventViewer(opts.NoEmoji))

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Dashboard{
		opts:     opts,
		registry: registry,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  s,
		loading:  true,
		ctx:      context.Background(),
	}
}

// Run drives the program until the user quits or ctx is cancelled.
func (m *Dashboard) Run(ctx context.Context) error {
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if m.opts.Collector != nil {
		m.opts.Collector.Stop()
	}
	return err
}

func (m *Dashboard) Init() tea.Cmd {
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.fetchCmd(),
		tickCmd(m.opts.RefreshInterval),
	}
	if m.opts.Client != nil {
		cmds = append(cmds, m.subscribeCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Dashboard) subscribeCmd() tea.Cmd {
	client := m.opts.Client
	ctx := m.ctx
	return func() tea.Msg {
		ch, err := client.SubscribeEvents(ctx)
		if err != nil {
			return eventsClosedMsg{}
		}
		return subscribedMsg{ch: ch}
	}
}

func (m *Dashboard) listenCmd() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *Dashboard) fetchCmd() tea.Cmd {
	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	collector := m.opts.Collector

	started := func() tea.Msg { return fetchStartedMsg{cancel: cancel} }
	fetch := func() tea.Msg {
		defer cancel()
		snap := collector.Collect(ctx)
		if err := ctx.Err(); err != nil {
			return dataErrMsg{err: err}
		}
		return dataMsg(Data{Metrics: snap, LastUpdate: time.Now()})
	}
	return tea.Batch(started, fetch)
}

func (m *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case fetchStartedMsg:
		if m.fetchCancel != nil {
			m.fetchCancel()
		}
		m.fetchCancel = msg.cancel
		return m, nil

	case tickMsg:
		// only tickMsg schedules the next tick
		cmds := []tea.Cmd{tickCmd(m.opts.RefreshInterval)}
		if m.fetchCancel == nil {
			cmds = append(cmds, m.fetchCmd())
		}
		return m, tea.Batch(cmds...)

	case dataMsg:
		d := Data(msg)
		d.Events = m.events
		d.CLIVersion = m.opts.CLIVersion
		d.UpdateInfo = m.data.UpdateInfo
		m.data = d
		m.lastOK = time.Now()
		m.loading = false
		m.fetchCancel = nil
		m.refreshUpdateInfo()
		return m, tea.Batch(m.registry.UpdateAll(msg, m.data)...)

	case dataErrMsg:
		m.data.Err = msg.err
		m.loading = false
		m.fetchCancel = nil
		return m, tea.Batch(m.registry.UpdateAll(msg, m.data)...)

	case subscribedMsg:
		m.eventCh = msg.ch
		return m, m.listenCmd()

	case eventMsg:
		m.events = append(m.events, controller.Event(msg))
		if len(m.events) > maxEvents {
			m.events = m.events[len(m.events)-maxEvents:]
		}
		m.data.Events = m.events
		cmds := m.registry.UpdateAll(msg, m.data)
		cmds = append(cmds, m.listenCmd())
		return m, tea.Batch(cmds...)

	case eventsClosedMsg:
		m.eventCh = nil
		return m, nil

	case forceRefreshMsg:
		return m, m.fetchCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.fetchCancel != nil {
			m.fetchCancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg { return forceRefreshMsg{} }
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Follow):
		if ev, ok := m.registry.Get("events").(*EventViewer); ok {
			ev.ToggleFollow()
		}
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		return m, tea.Batch(m.registry.UpdateAll(msg, m.data)...)
	}
	return m, nil
}

// refreshUpdateInfo reads the cached release check; it never hits the
// network from the render loop.
func (m *Dashboard) refreshUpdateInfo() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	entry, err := update.LoadCache(home)
	if err != nil || !update.IsCacheValid(entry) {
		return
	}
	m.data.UpdateInfo.Available = entry.UpdateAvailable
	m.data.UpdateInfo.LatestVersion = entry.LatestVersion
}

func (m *Dashboard) View() string {
	if m.width <= 0 || m.height <= 1 {
		return ""
	}
	if m.loading {
		return m.spinner.View() + " collecting..."
	}

	header := m.registry.Get("header").View(m.width, 4)
	halfW := m.width / 2
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		m.registry.Get("service_status").View(halfW, 6),
		m.registry.Get("controller_status").View(m.width-halfW, 6),
	)
	row3 := m.registry.Get("system_status").View(m.width, 6)

	used := lipgloss.Height(header) + lipgloss.Height(row2) + lipgloss.Height(row3)
	eventsH := m.height - used - 1
	if eventsH < 5 {
		eventsH = 5
	}
	row4 := m.registry.Get("events").View(m.width, eventsH)

	out := lipgloss.JoinVertical(lipgloss.Left, header, row2, row3, row4)
	if m.showHelp {
		out += "\n" + m.help.FullHelpView(m.keys.FullHelp())
	} else {
		out += "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return out
}
