package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/initsys"
	"github.com/opendaylight-tools/odlctl/internal/osfamily"
)

type fakeInit struct {
	active  bool
	enabled bool
}

func (f *fakeInit) Kind() osfamily.InitSystem                       { return osfamily.Systemd }
func (f *fakeInit) UnitPath(name string) string                     { return "" }
func (f *fakeInit) InstallUnit(u initsys.Unit) (bool, error)        { return false, nil }
func (f *fakeInit) RemoveUnit(name string) error                    { return nil }
func (f *fakeInit) Reload(ctx context.Context) error                { return nil }
func (f *fakeInit) Enable(ctx context.Context, name string) error   { return nil }
func (f *fakeInit) Disable(ctx context.Context, name string) error  { return nil }
func (f *fakeInit) Start(ctx context.Context, name string) error    { return nil }
func (f *fakeInit) Stop(ctx context.Context, name string) error     { return nil }
func (f *fakeInit) Restart(ctx context.Context, name string) error  { return nil }
func (f *fakeInit) IsActive(ctx context.Context, name string) bool  { return f.active }
func (f *fakeInit) IsEnabled(ctx context.Context, name string) bool { return f.enabled }

type fakeClient struct {
	listening bool
	health    controller.Health
	healthErr error
}

func (f *fakeClient) IsListening(ctx context.Context) bool { return f.listening }
func (f *fakeClient) Health(ctx context.Context) (controller.Health, error) {
	return f.health, f.healthErr
}
func (f *fakeClient) WaitReady(ctx context.Context, interval time.Duration) error { return nil }
func (f *fakeClient) SubscribeEvents(ctx context.Context) (<-chan controller.Event, error) {
	return nil, nil
}

func TestCollect_Healthy(t *testing.T) {
	c := NewWithoutCPU("opendaylight", &fakeInit{active: true, enabled: true}, &fakeClient{
		listening: true,
		health: controller.Health{
			Status:  "OPERATIONAL",
			Latency: 12 * time.Millisecond,
			Components: []controller.Component{
				{Service: "OPENFLOW", Status: "OPERATIONAL"},
				{Service: "AAA", Status: "ERROR"},
			},
		},
	})

	snap := c.Collect(context.Background())
	if !snap.Service.Active || !snap.Service.Enabled || snap.Service.Name != "opendaylight" {
		t.Fatalf("service = %+v", snap.Service)
	}
	if !snap.Controller.Listening || !snap.Controller.Operational {
		t.Fatalf("controller = %+v", snap.Controller)
	}
	if snap.Controller.Components != 2 || snap.Controller.Degraded != 1 {
		t.Fatalf("components = %+v", snap.Controller)
	}
	if snap.Controller.LatencyMS != 12 {
		t.Fatalf("latency = %d", snap.Controller.LatencyMS)
	}
	if snap.CollectedAt.IsZero() {
		t.Fatal("CollectedAt not set")
	}
}

func TestCollect_ControllerDown(t *testing.T) {
	c := NewWithoutCPU("opendaylight", &fakeInit{}, &fakeClient{
		healthErr: errors.New("connection refused"),
	})

	snap := c.Collect(context.Background())
	if snap.Controller.Listening || snap.Controller.Operational {
		t.Fatalf("controller = %+v", snap.Controller)
	}
	if snap.Service.Active {
		t.Fatal("service reported active")
	}
	// host metrics still collected best-effort
	if snap.System.MemTotal == 0 {
		t.Skip("memory stats unavailable in this environment")
	}
}

func TestStartStop(t *testing.T) {
	c := NewWithoutCPU("opendaylight", &fakeInit{}, &fakeClient{})
	c.Start()
	c.Start() // idempotent
	c.Stop()
	c.Stop()
}
