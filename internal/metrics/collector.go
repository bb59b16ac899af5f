// Package metrics gathers host and controller health for the status,
// doctor and dashboard surfaces.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/initsys"
)

type System struct {
	CPUPercent float64
	MemUsed    uint64
	MemTotal   uint64
	DiskUsed   uint64
	DiskTotal  uint64
}

type Service struct {
	Name    string
	Active  bool
	Enabled bool
}

type Controller struct {
	Listening   bool
	Operational bool
	Status      string
	Components  int
	Degraded    int // components not reporting OPERATIONAL
	LatencyMS   int64
}

type Snapshot struct {
	System      System
	Service     Service
	Controller  Controller
	CollectedAt time.Time
}

// Collector samples host metrics and probes the controller. CPU usage
// is collected on a background loop because an accurate reading needs
// a sampling window.
type Collector struct {
	mu         sync.RWMutex
	lastCPU    float64
	cpuRunning bool
	cpuDone    chan struct{}

	service string
	init    initsys.Manager
	client  controller.Client

	// DiskPath is the mount sampled for disk usage; defaults to the
	// root filesystem.
	DiskPath string
}

// New creates a Collector with background CPU sampling started, for
// long-running surfaces like the dashboard.
func New(service string, init initsys.Manager, client controller.Client) *Collector {
	c := NewWithoutCPU(service, init, client)
	c.Start()
	return c
}

// NewWithoutCPU creates a Collector without the CPU loop, for
// one-shot commands like status.
func NewWithoutCPU(service string, init initsys.Manager, client controller.Client) *Collector {
	return &Collector{
		cpuDone:  make(chan struct{}),
		service:  service,
		init:     init,
		client:   client,
		DiskPath: "/",
	}
}

// Start begins background CPU sampling; safe to call repeatedly.
func (c *Collector) Start() {
	c.mu.Lock()
	if c.cpuRunning {
		c.mu.Unlock()
		return
	}
	c.cpuRunning = true
	c.mu.Unlock()
	go c.updateCPU()
}

// Stop halts background CPU sampling.
func (c *Collector) Stop() {
	c.mu.Lock()
	running := c.cpuRunning
	c.cpuRunning = false
	c.mu.Unlock()
	if running {
		select {
		case c.cpuDone <- struct{}{}:
		default:
		}
	}
}

func (c *Collector) updateCPU() {
	for {
		select {
		case <-c.cpuDone:
			return
		default:
			if percent, err := cpu.Percent(time.Second, false); err == nil && len(percent) > 0 {
				c.mu.Lock()
				c.lastCPU = percent[0]
				c.mu.Unlock()
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Collect produces a best-effort snapshot: probe failures leave the
// corresponding fields at their zero values rather than failing the
// whole collection.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{CollectedAt: time.Now()}

	if c.init != nil {
		snap.Service = Service{
			Name:    c.service,
			Active:  c.init.IsActive(ctx, c.service),
			Enabled: c.init.IsEnabled(ctx, c.service),
		}
	}

	if c.client != nil {
		snap.Controller.Listening = c.client.IsListening(ctx)
		if h, err := c.client.Health(ctx); err == nil {
			snap.Controller.Operational = h.Operational()
			snap.Controller.Status = h.Status
			snap.Controller.Components = len(h.Components)
			snap.Controller.LatencyMS = h.Latency.Milliseconds()
			for _, comp := range h.Components {
				if comp.Status != "OPERATIONAL" {
					snap.Controller.Degraded++
				}
			}
		}
	}

	c.mu.RLock()
	snap.System.CPUPercent = c.lastCPU
	c.mu.RUnlock()

	if vmStat, err := mem.VirtualMemory(); err == nil {
		snap.System.MemUsed = vmStat.Used
		snap.System.MemTotal = vmStat.Total
	}
	if diskStat, err := disk.Usage(c.DiskPath); err == nil {
		snap.System.DiskUsed = diskStat.Used
		snap.System.DiskTotal = diskStat.Total
	}

	return snap
}
