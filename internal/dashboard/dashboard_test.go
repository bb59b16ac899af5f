package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/metrics"
)

func TestBaseComponentCache(t *testing.T) {
	var c BaseComponent
	if c.CheckCacheWithSize("content", 80, 10) {
		t.Fatal("cache hit before first render")
	}
	c.UpdateCache("rendered")

	if !c.CheckCacheWithSize("content", 80, 10) {
		t.Fatal("cache miss for identical content and size")
	}
	if c.CheckCacheWithSize("content", 90, 10) {
		t.Fatal("cache hit after resize")
	}
	c.UpdateCache("rendered2")
	if c.CheckCacheWithSize("changed", 90, 10) {
		t.Fatal("cache hit after content change")
	}
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(NewHeader())
	r.Register(NewServiceStatus(true))
	r.Register(NewHeader()) // re-register keeps position

	if len(r.order) != 2 {
		t.Fatalf("order = %v", r.order)
	}
	if r.order[0] != "header" || r.order[1] != "service_status" {
		t.Fatalf("order = %v", r.order)
	}
}

func healthyData() Data {
	var d Data
	d.CLIVersion = "1.0.0"
	d.LastUpdate = time.Now()
	d.Metrics = metrics.Snapshot{
		Service: metrics.Service{Name: "opendaylight", Active: true, Enabled: true},
		Controller: metrics.Controller{
			Listening: true, Operational: true, Status: "OPERATIONAL",
			Components: 12, LatencyMS: 8,
		},
		System: metrics.System{
			CPUPercent: 25,
			MemUsed:    4 << 30, MemTotal: 16 << 30,
			DiskUsed: 50 << 30, DiskTotal: 100 << 30,
		},
	}
	return d
}

func TestServiceStatusView(t *testing.T) {
	c := NewServiceStatus(true)
	c.Update(nil, healthyData())
	out := c.View(40, 6)
	if !strings.Contains(out, "Running") || !strings.Contains(out, "Enabled at boot") {
		t.Fatalf("view:\n%s", out)
	}

	d := healthyData()
	d.Metrics.Service.Active = false
	c.Update(nil, d)
	if !strings.Contains(c.View(40, 6), "Stopped") {
		t.Fatal("stopped state not rendered")
	}
}

func TestControllerStatusView(t *testing.T) {
	c := NewControllerStatus(true, 8181)
	c.Update(nil, healthyData())
	out := c.View(40, 6)
	if !strings.Contains(out, "REST :8181 listening") || !strings.Contains(out, "Operational") {
		t.Fatalf("view:\n%s", out)
	}

	d := healthyData()
	d.Metrics.Controller.Degraded = 3
	c.Update(nil, d)
	if !strings.Contains(c.View(40, 6), "Degraded (3/12 services)") {
		t.Fatal("degraded state not rendered")
	}
}

func TestSystemStatusView(t *testing.T) {
	c := NewSystemStatus(true)
	c.Update(nil, healthyData())
	out := c.View(60, 6)
	for _, want := range []string{"CPU", "Mem", "25.0%", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestEventViewer(t *testing.T) {
	c := NewEventViewer(true)
	d := healthyData()
	d.Events = []controller.Event{
		{Stream: "topology", Data: "node openflow:1 added", Time: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
		{Stream: "flows", Data: "flow programmed", Time: time.Date(2026, 1, 2, 10, 0, 1, 0, time.UTC)},
	}
	c.Update(nil, d)
	out := c.View(80, 10)
	if !strings.Contains(out, "topology") || !strings.Contains(out, "flow programmed") {
		t.Fatalf("view:\n%s", out)
	}
	if !c.Follow() {
		t.Fatal("follow should default on")
	}
	c.ToggleFollow()
	if c.Follow() {
		t.Fatal("follow not toggled")
	}
}

func TestDashboardUpdateFlow(t *testing.T) {
	m := New(Options{NoEmoji: true, CLIVersion: "1.0.0"})
	m.width, m.height = 100, 40
	m.loading = false

	model, _ := m.Update(dataMsg(healthyData()))
	m = model.(*Dashboard)
	if m.data.Metrics.Service.Name != "opendaylight" {
		t.Fatalf("data not applied: %+v", m.data.Metrics.Service)
	}

	// events accumulate and are capped
	for i := 0; i < maxEvents+10; i++ {
		model, _ = m.Update(eventMsg(controller.Event{Stream: "s", Data: "d", Time: time.Now()}))
		m = model.(*Dashboard)
	}
	if len(m.events) != maxEvents {
		t.Fatalf("events = %d", len(m.events))
	}

	out := m.View()
	if !strings.Contains(out, "odlctl 1.0.0") {
		t.Fatalf("header missing version:\n%s", out)
	}
}

func TestDashboardQuitKey(t *testing.T) {
	m := New(Options{NoEmoji: true})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit key produced no command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("msg = %v", msg)
	}
}

func TestDurationShort(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{3 * time.Minute, "3m"},
		{2*time.Hour + 10*time.Minute, "2h10m"},
		{26 * time.Hour, "1d2h"},
		{48 * time.Hour, "2d"},
	}
	for _, tc := range cases {
		if got := DurationShort(tc.d); got != tc.want {
			t.Errorf("DurationShort(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestProgressBarASCII(t *testing.T) {
	bar := ProgressBar(0.5, 12, true)
	if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
		t.Fatalf("bar = %q", bar)
	}
	if strings.Count(bar, "=") != 5 {
		t.Fatalf("bar = %q", bar)
	}
}
