package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/dashboard"
	"github.com/opendaylight-tools/odlctl/internal/metrics"
)

var dashboardRefresh time.Duration

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live dashboard with service, host and controller state",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		collector := metrics.New(d.Cfg.ServiceName(), d.Init, d.Client)
		m := dashboard.New(dashboard.Options{
			Config:          d.Cfg,
			RefreshInterval: dashboardRefresh,
			NoColor:         flagNoColor,
			NoEmoji:         flagNoEmoji,
			CLIVersion:      Version,
			Collector:       collector,
			Client:          d.Client,
		})
		return m.Run(cmd.Context())
	},
}

func init() {
	dashboardCmd.Flags().DurationVar(&dashboardRefresh, "refresh", 3*time.Second, "Data refresh interval")
	rootCmd.AddCommand(dashboardCmd)
}
