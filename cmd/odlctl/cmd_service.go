package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
)

var (
	startWait    bool
	startTimeout time.Duration
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the controller service",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		svc := d.Cfg.ServiceName()
		p := d.Printer

		if d.Init.IsActive(cmd.Context(), svc) {
			if flagOutput == "json" {
				p.JSON(map[string]any{"ok": true, "action": "start", "already_running": true})
			} else {
				p.Success("Controller is already running")
			}
			return nil
		}
		if err := d.Init.Start(cmd.Context(), svc); err != nil {
			return exitcodes.ProcessErr("start " + svc + ": " + err.Error())
		}

		if startWait {
			waitCtx, cancel := context.WithTimeout(cmd.Context(), startTimeout)
			defer cancel()
			if flagOutput == "text" && !flagQuiet {
				p.Info("Waiting for the controller to become operational...")
			}
			if err := d.Client.WaitReady(waitCtx, 5*time.Second); err != nil {
				return exitcodes.NetworkErr(err.Error())
			}
		}
		if flagOutput == "json" {
			p.JSON(map[string]any{"ok": true, "action": "start", "already_running": false})
		} else {
			p.Success("Controller started")
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the controller service",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		svc := d.Cfg.ServiceName()
		p := d.Printer

		if !d.Init.IsActive(cmd.Context(), svc) {
			if flagOutput == "json" {
				p.JSON(map[string]any{"ok": true, "action": "stop", "already_stopped": true})
			} else {
				p.Info("Controller is not running")
			}
			return nil
		}
		if err := d.Init.Stop(cmd.Context(), svc); err != nil {
			return exitcodes.ProcessErr("stop " + svc + ": " + err.Error())
		}
		if flagOutput == "json" {
			p.JSON(map[string]any{"ok": true, "action": "stop", "already_stopped": false})
		} else {
			p.Success("Controller stopped")
		}
		return nil
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the controller service",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		svc := d.Cfg.ServiceName()
		p := d.Printer

		if err := d.Init.Restart(cmd.Context(), svc); err != nil {
			return exitcodes.ProcessErr("restart " + svc + ": " + err.Error())
		}
		if flagOutput == "json" {
			p.JSON(map[string]any{"ok": true, "action": "restart"})
		} else {
			p.Success("Controller restarted")
		}
		return nil
	},
}

func init() {
	startCmd.Flags().BoolVar(&startWait, "wait", false, "Wait for the controller to report operational")
	startCmd.Flags().DurationVar(&startTimeout, "timeout", 5*time.Minute, "How long --wait polls before giving up")
	rootCmd.AddCommand(startCmd, stopCmd, restartCmd)
}
