package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the controller",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		p := d.Printer

		what := "the opendaylight package"
		if d.Cfg.Method == config.MethodArchive {
			what = d.Cfg.InstallDir()
		}
		ok, err := confirm(d, fmt.Sprintf("Remove %s and its service?", what))
		if err != nil {
			return err
		}
		if !ok {
			if flagOutput == "text" {
				p.Info("Aborted")
			}
			return nil
		}

		results, err := d.Installer.Uninstall(cmd.Context(), planProgress(d))
		printPlanOutcome(d, results)
		if err != nil {
			return exitcodes.ProcessErr("uninstall failed: " + err.Error())
		}
		if flagOutput == "text" && !flagQuiet {
			p.Success("Controller removed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
