package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/update"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_date": BuildDate,
		}
		p := getPrinter()

		var check *update.CheckResult
		if versionCheck {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			check, err = update.ForceCheck(home, Version)
			if err != nil {
				return exitcodes.NetworkErr("update check: " + err.Error())
			}
			info["latest_version"] = check.LatestVersion
			if check.UpdateAvailable {
				info["update_available"] = "true"
			} else {
				info["update_available"] = "false"
			}
		}

		switch flagOutput {
		case "json":
			p.JSON(info)
		case "yaml":
			p.YAML(info)
		default:
			fmt.Printf("odlctl %s (%s) built %s\n", Version, Commit, BuildDate)
			if check != nil {
				if check.UpdateAvailable {
					p.Warn(fmt.Sprintf("Update available: v%s (run: odlctl update)", check.LatestVersion))
				} else {
					p.Success("Up to date")
				}
			}
		}
		return nil
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return exitcodes.InvalidArgsError("unknown shell: " + args[0])
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Also check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// checkForUpdateBackground runs in a goroutine before commands and
// records whether a newer release exists. Failures are silent; a
// version check must never break a command.
func checkForUpdateBackground() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	if cache, err := update.LoadCache(home); err == nil && update.IsCacheValid(cache) {
		if cache.UpdateAvailable && update.IsNewerVersion(Version, cache.LatestVersion) {
			updateCheckMu.Lock()
			updateCheckResult = &update.CheckResult{
				CurrentVersion:  strings.TrimPrefix(Version, "v"),
				LatestVersion:   cache.LatestVersion,
				UpdateAvailable: true,
			}
			updateCheckMu.Unlock()
		}
		return
	}

	updater, err := update.NewUpdater(Version)
	if err != nil {
		return
	}
	result, err := updater.Check()
	if err != nil {
		return
	}
	_ = update.SaveCache(home, &update.CacheEntry{
		CheckedAt:       time.Now(),
		LatestVersion:   result.LatestVersion,
		UpdateAvailable: result.UpdateAvailable,
	})
	if result.UpdateAvailable {
		updateCheckMu.Lock()
		updateCheckResult = result
		updateCheckMu.Unlock()
	}
}

// showUpdateNotification prints a banner after a command completes.
func showUpdateNotification(latestVersion string) {
	if flagOutput == "json" || flagOutput == "yaml" || flagQuiet {
		return
	}
	c := ui.NewColorConfigFromGlobal()
	fmt.Println()
	fmt.Println(c.Warning(strings.Repeat("─", 60)))
	fmt.Printf("  Update available: %s → v%s\n", Version, latestVersion)
	fmt.Println(c.Info("  Run: odlctl update"))
	fmt.Println(c.Warning(strings.Repeat("─", 60)))
}

// shouldSkipUpdateCheck filters commands where the banner is noise or
// would corrupt the display.
func shouldSkipUpdateCheck(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "update", "version", "help", "completion", "dashboard", "logs":
		return true
	}
	return false
}
