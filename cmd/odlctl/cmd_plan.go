package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the install plan without applying it",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		plan, err := d.Installer.InstallPlan()
		if err != nil {
			return err
		}
		names := plan.Names()

		switch flagOutput {
		case "json":
			d.Printer.JSON(map[string]any{"method": d.Cfg.Method, "resources": names})
		case "yaml":
			d.Printer.YAML(map[string]any{"method": d.Cfg.Method, "resources": names})
		default:
			d.Printer.Section(fmt.Sprintf("Install plan (%s route)", d.Cfg.Method))
			for i, name := range names {
				fmt.Fprintf(d.Output, "  %2d. %s\n", i+1, name)
			}
			fmt.Fprintf(d.Output, "\n%d resources\n", len(names))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
