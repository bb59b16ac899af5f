package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
)

var (
	installWait    bool
	installTimeout time.Duration
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the controller",
	Long:  "Install the controller via the native package manager or a release tarball, apply configuration, and start the service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		p := d.Printer

		if flagOutput == "text" && !flagQuiet {
			p.Info(fmt.Sprintf("Installing OpenDaylight %s (%s route) on %s %s", d.Cfg.Version, d.Cfg.Method, d.OS.ID, d.OS.VersionID))
		}

		results, err := d.Installer.Install(cmd.Context(), planProgress(d))
		printPlanOutcome(d, results)
		if err != nil {
			return exitcodes.ProcessErr("install failed: " + err.Error())
		}

		if installWait {
			if flagOutput == "text" && !flagQuiet {
				p.Info("Waiting for the controller to become operational...")
			}
			waitCtx, cancel := context.WithTimeout(cmd.Context(), installTimeout)
			defer cancel()
			if err := d.Client.WaitReady(waitCtx, 5*time.Second); err != nil {
				return exitcodes.NetworkErr(err.Error())
			}
		}

		if flagOutput == "text" && !flagQuiet {
			p.Success("Controller installed")
			p.Info(fmt.Sprintf("REST API: http://127.0.0.1:%d", d.Cfg.RestPort))
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&installWait, "wait", false, "Wait for the controller to report operational")
	installCmd.Flags().DurationVar(&installTimeout, "timeout", 5*time.Minute, "How long --wait polls before giving up")
	rootCmd.AddCommand(installCmd)
}
