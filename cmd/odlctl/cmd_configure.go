package main

import (
	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/resource"
)

var configureRestart bool

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Reapply configuration files on an existing install",
	Long:  "Rewrite the Karaf feature, logging, port and credential files from the current config. Changes take effect after a restart.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		p := d.Printer

		// snapshot the managed files before touching them
		backups, err := d.Store.Backup()
		if err != nil {
			return wrapNotFound(err, "controller configuration not found; is it installed?")
		}
		if flagVerbose && flagOutput == "text" {
			for _, b := range backups {
				p.Info("backed up " + b)
			}
		}

		results, err := d.Installer.Configure(cmd.Context(), planProgress(d))
		printPlanOutcome(d, results)
		if err != nil {
			return wrapNotFound(err, "controller configuration not found; is it installed?")
		}

		changed := false
		for _, r := range results {
			if r.Status == resource.StatusApplied {
				changed = true
			}
		}
		if !changed {
			if flagOutput == "text" && !flagQuiet {
				p.Success("Configuration already up to date")
			}
			return nil
		}

		if configureRestart {
			svc := d.Cfg.ServiceName()
			if err := d.Init.Restart(cmd.Context(), svc); err != nil {
				return exitcodes.ProcessErr("restart " + svc + ": " + err.Error())
			}
			if flagOutput == "text" && !flagQuiet {
				p.Success("Configuration applied, service restarted")
			}
			return nil
		}
		if flagOutput == "text" && !flagQuiet {
			p.Success("Configuration applied")
			p.Info("Restart to pick up changes: odlctl restart")
		}
		return nil
	},
}

func init() {
	configureCmd.Flags().BoolVar(&configureRestart, "restart", false, "Restart the service after applying changes")
	rootCmd.AddCommand(configureCmd)
}
