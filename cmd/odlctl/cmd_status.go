package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

var statusStrict bool

// statusResult models the service and controller fields shown by the
// `status` command. It is also used for JSON/YAML output.
type statusResult struct {
	// Service state
	ServiceActive  bool   `json:"service_active" yaml:"service_active"`
	ServiceEnabled bool   `json:"service_enabled" yaml:"service_enabled"`
	InitSystem     string `json:"init_system" yaml:"init_system"`

	// REST connectivity
	RESTListening bool   `json:"rest_listening" yaml:"rest_listening"`
	RESTURL       string `json:"rest_url,omitempty" yaml:"rest_url,omitempty"`

	// Controller health
	Operational bool   `json:"operational" yaml:"operational"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Components  int    `json:"components,omitempty" yaml:"components,omitempty"`
	Degraded    int    `json:"degraded,omitempty" yaml:"degraded,omitempty"`
	LatencyMS   int64  `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty"`

	// Install facts
	Version    string `json:"version" yaml:"version"`
	Method     string `json:"method" yaml:"method"`
	InstallDir string `json:"install_dir,omitempty" yaml:"install_dir,omitempty"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// computeStatus gathers service, port and health state, best-effort.
func computeStatus(ctx context.Context, d *Deps) statusResult {
	res := statusResult{
		Version:    d.Cfg.Version,
		Method:     d.Cfg.Method,
		InstallDir: d.Cfg.InstallDir(),
		InitSystem: string(d.Init.Kind()),
		RESTURL:    fmt.Sprintf("http://127.0.0.1:%d", d.Cfg.RestPort),
	}
	svc := d.Cfg.ServiceName()
	res.ServiceActive = d.Init.IsActive(ctx, svc)
	res.ServiceEnabled = d.Init.IsEnabled(ctx, svc)

	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	res.RESTListening = d.Client.IsListening(dialCtx)
	cancel()
	if !res.RESTListening {
		return res
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	h, err := d.Client.Health(healthCtx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Operational = h.Operational()
	res.Status = h.Status
	res.Components = len(h.Components)
	for _, comp := range h.Components {
		if !strings.EqualFold(comp.Status, "OPERATIONAL") {
			res.Degraded++
		}
	}
	res.LatencyMS = h.Latency.Milliseconds()
	return res
}

// strictErr maps a degraded result to a non-zero exit for scripts.
func strictErr(res statusResult) error {
	switch {
	case !res.ServiceActive:
		return exitcodes.ValidationErr("service is not active")
	case !res.RESTListening:
		return exitcodes.ValidationErr("REST port is not listening")
	case !res.Operational:
		return exitcodes.ValidationErr("controller is not operational")
	}
	return nil
}

// printStatusText renders the boxed human-readable summary.
func printStatusText(res statusResult) {
	c := ui.NewColorConfigFromGlobal()

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Width(40)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Width(36).
		Align(lipgloss.Center)

	svcLines := []string{}
	if res.ServiceActive {
		svcLines = append(svcLines, c.Success("Running"))
	} else {
		svcLines = append(svcLines, c.Error("Stopped"))
	}
	if res.ServiceEnabled {
		svcLines = append(svcLines, "Enabled at boot")
	} else {
		svcLines = append(svcLines, "Disabled at boot")
	}
	svcLines = append(svcLines, fmt.Sprintf("Init: %s", res.InitSystem))
	svcBox := boxStyle.Render(titleStyle.Render("SERVICE") + "\n" + strings.Join(svcLines, "\n"))

	ctrlLines := []string{}
	if res.RESTListening {
		ctrlLines = append(ctrlLines, c.Success("REST listening"), res.RESTURL)
		switch {
		case res.Operational && res.Degraded == 0:
			ctrlLines = append(ctrlLines, c.Success(fmt.Sprintf("Operational (%d services)", res.Components)))
		case res.Error != "":
			ctrlLines = append(ctrlLines, c.Error(res.Error))
		default:
			ctrlLines = append(ctrlLines, c.Warning(fmt.Sprintf("Degraded (%d/%d services)", res.Degraded, res.Components)))
		}
		if res.LatencyMS > 0 {
			ctrlLines = append(ctrlLines, fmt.Sprintf("Latency: %dms", res.LatencyMS))
		}
	} else {
		ctrlLines = append(ctrlLines, c.Error("REST not listening"), res.RESTURL)
	}
	ctrlBox := boxStyle.Render(titleStyle.Render("CONTROLLER") + "\n" + strings.Join(ctrlLines, "\n"))

	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, svcBox, ctrlBox))
	fmt.Printf("Version: %s  Method: %s  Dir: %s\n", res.Version, res.Method, res.InstallDir)

	if !res.ServiceActive {
		fmt.Printf("\n%s Start it: odlctl start\n", c.Info("i"))
	} else if res.ServiceActive && !res.RESTListening {
		fmt.Printf("\n%s Diagnose: odlctl doctor\n", c.Info("i"))
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service and controller status",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		res := computeStatus(cmd.Context(), d)

		switch flagOutput {
		case "json":
			d.Printer.JSON(res)
		case "yaml":
			d.Printer.YAML(res)
		default:
			printStatusText(res)
		}
		if statusStrict {
			return strictErr(res)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusStrict, "strict", false, "Exit non-zero unless active, listening and operational")
	rootCmd.AddCommand(statusCmd)
}
