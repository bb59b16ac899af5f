// Package dashboard renders the live terminal dashboard: service and
// host state, controller health, and the controller event stream.
package dashboard

import (
	"context"
	"time"

	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/metrics"
)

// Message types for the Bubble Tea event loop.

// tickMsg triggers a periodic data refresh.
type tickMsg time.Time

// dataMsg carries a successfully collected snapshot.
type dataMsg Data

// dataErrMsg carries an error from a failed collection.
type dataErrMsg struct{ err error }

// fetchStartedMsg hands the cancel func to the UI thread so in-flight
// fetches can be cancelled there, never from a Cmd goroutine.
type fetchStartedMsg struct{ cancel context.CancelFunc }

// eventMsg is one controller notification from the websocket stream.
type eventMsg controller.Event

// eventsClosedMsg signals the event stream ended.
type eventsClosedMsg struct{}

// forceRefreshMsg is sent when the user presses 'r'.
type forceRefreshMsg struct{}

// Data aggregates everything the panels display.
type Data struct {
	Metrics metrics.Snapshot
	Events  []controller.Event

	UpdateInfo struct {
		Available     bool
		LatestVersion string
	}

	CLIVersion string
	LastUpdate time.Time
	Err        error
}

// Options configures dashboard behavior.
type Options struct {
	Config          config.Config
	RefreshInterval time.Duration
	NoColor         bool
	NoEmoji         bool
	CLIVersion      string

	// Collector samples host and service metrics; required.
	Collector *metrics.Collector

	// Client streams controller events; nil disables the event panel
	// feed (the panel still renders, empty).
	Client controller.Client
}
