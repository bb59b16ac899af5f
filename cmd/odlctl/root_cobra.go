package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
	"github.com/opendaylight-tools/odlctl/internal/update"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// updateCheckResult stores the result of the background update check.
var (
	updateCheckResult *update.CheckResult
	updateCheckMu     sync.Mutex
)

// rootCmd wires the CLI surface using Cobra. Persistent flags are
// applied to a loaded config in loadCfg(). Subcommands implement the
// actual operations (install, configure, start/stop, status, etc.).
var rootCmd = &cobra.Command{
	Use:           "odlctl",
	Short:         "OpenDaylight Controller Manager",
	Long:          "Install, configure and operate an OpenDaylight SDN controller on this host.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.InitGlobal(ui.Config{
			NoColor:        flagNoColor,
			NoEmoji:        flagNoEmoji,
			Yes:            flagYes,
			NonInteractive: flagNonInteractive,
			Verbose:        flagVerbose,
			Quiet:          flagQuiet,
		})
		// make lipgloss and friends respect the flag too
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}

		if !shouldSkipUpdateCheck(cmd) {
			go checkForUpdateBackground()
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		updateCheckMu.Lock()
		result := updateCheckResult
		updateCheckMu.Unlock()
		if !shouldSkipUpdateCheck(cmd) && result != nil && result.UpdateAvailable {
			showUpdateNotification(result.LatestVersion)
		}
	},
}

var (
	flagConfig         string
	flagMethod         string
	flagVersionOverr   string
	flagPrefix         string
	flagRestPort       int
	flagOutput         string
	flagVerbose        bool
	flagQuiet          bool
	flagNoColor        bool
	flagNoEmoji        bool
	flagYes            bool
	flagNonInteractive bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagMethod, "method", "", "Install method: package|archive")
	rootCmd.PersistentFlags().StringVar(&flagVersionOverr, "odl-version", "", "Controller version (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPrefix, "prefix", "", "Parent directory for archive installs")
	rootCmd.PersistentFlags().IntVar(&flagRestPort, "rest-port", 0, "Northbound REST port")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode: minimal output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Assume yes for all prompts")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Fail instead of prompting")

	// Replace root help with grouped output; subcommands keep cobra's
	// default usage.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprintln(os.Stdout, cmd.UsageString())
			return
		}
		c := ui.NewColorConfig()
		c.Enabled = c.Enabled && !flagNoColor
		c.EmojiEnabled = c.EmojiEnabled && !flagNoEmoji
		w := os.Stdout

		const cmdWidth = 28

		fmt.Fprintln(w, c.Header(" OpenDaylight Controller Manager "))
		fmt.Fprintln(w, c.Description("Install, configure and operate an OpenDaylight SDN controller on this host."))
		fmt.Fprintln(w, c.Separator(50))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("USAGE"))
		fmt.Fprintf(w, "  %s <command> [flags]\n", "odlctl")
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Quick Start"))
		fmt.Fprintln(w, c.FormatCommandAligned("install", "Install the controller", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("status", "Show service/controller status", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("dashboard", "Live dashboard with metrics", cmdWidth))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Operations"))
		fmt.Fprintln(w, c.FormatCommandAligned("start", "Start the controller service", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("stop", "Stop the controller service", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("restart", "Restart the controller service", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("configure", "Reapply configuration files", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("logs", "Tail controller logs", cmdWidth))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Maintenance"))
		fmt.Fprintln(w, c.FormatCommandAligned("plan", "Show the install plan without applying", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("uninstall", "Remove the controller", cmdWidth))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Utilities"))
		fmt.Fprintln(w, c.FormatCommandAligned("doctor", "Run diagnostic checks", cmdWidth))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Upgrades"))
		fmt.Fprintln(w, c.FormatCommandAligned("update", "Update odlctl to latest version", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("version", "Show version (--check for updates)", cmdWidth))
		fmt.Fprintln(w)
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcodes.CodeForError(err))
	}
}

// loadCfg reads defaults + optional file + env via config.Load and
// then applies overrides from persistent flags.
func loadCfg() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagMethod != "" {
		cfg.Method = flagMethod
	}
	if flagVersionOverr != "" {
		cfg.Version = flagVersionOverr
	}
	if flagPrefix != "" {
		cfg.Prefix = flagPrefix
	}
	if flagRestPort != 0 {
		cfg.RestPort = flagRestPort
	}
	if err := cfg.Validate(); err != nil {
		return cfg, exitcodes.ValidationErr(err.Error())
	}
	return cfg, nil
}

// wrapNotFound maps os.ErrNotExist-style failures to the precondition
// exit code so scripts can distinguish "not installed" from crashes.
func wrapNotFound(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return exitcodes.PreconditionError(msg + ": " + err.Error())
	}
	return err
}
