package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/update"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

// CLIUpdater abstracts the self-update operations for testability.
type CLIUpdater interface {
	FetchLatestRelease() (*update.Release, error)
	FetchReleaseByTag(tag string) (*update.Release, error)
	Download(asset *update.Asset, progress update.ProgressFunc) ([]byte, error)
	VerifyChecksum(data []byte, release *update.Release, assetName string) error
	ExtractBinary(archiveData []byte) ([]byte, error)
	Install(binaryData []byte) error
	Rollback() error
}

type updateCoreOpts struct {
	checkOnly      bool
	force          bool
	version        string
	skipVerify     bool
	currentVersion string
	binaryPath     string
	homeDir        string
}

// runUpdateCore drives the self-update flow: fetch release metadata,
// download, verify, swap the binary, and roll back when the new binary
// fails its sanity run.
func runUpdateCore(updater CLIUpdater, opts updateCoreOpts, p ui.Printer, prompter Prompter, output io.Writer, verifyBinary func(string) (string, error)) error {
	var release *update.Release
	var err error
	if opts.version != "" {
		p.Info(fmt.Sprintf("Fetching release %s...", opts.version))
		release, err = updater.FetchReleaseByTag(opts.version)
	} else {
		p.Info("Checking for updates...")
		release, err = updater.FetchLatestRelease()
	}
	if err != nil {
		return exitcodes.NetworkErr("fetch release: " + err.Error())
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(opts.currentVersion, "v")

	available := update.IsNewerVersion(opts.currentVersion, release.TagName)
	if opts.homeDir != "" {
		_ = update.SaveCache(opts.homeDir, &update.CacheEntry{
			CheckedAt:       time.Now(),
			LatestVersion:   latest,
			UpdateAvailable: available,
		})
	}

	if !opts.force && !available {
		p.Success(fmt.Sprintf("Already up to date (v%s)", current))
		return nil
	}

	fmt.Fprintln(output)
	p.Info(fmt.Sprintf("Update available: v%s → v%s", current, latest))

	if release.Body != "" {
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Changelog:")
		lines := strings.Split(release.Body, "\n")
		maxLines := 10
		if len(lines) < maxLines {
			maxLines = len(lines)
		}
		for _, line := range lines[:maxLines] {
			fmt.Fprintf(output, "  %s\n", line)
		}
		if len(lines) > 10 {
			fmt.Fprintf(output, "  ... (see %s for the full changelog)\n", release.HTMLURL)
		}
	}
	fmt.Fprintln(output)

	if opts.checkOnly {
		p.Info("Run 'odlctl update' to install")
		return nil
	}

	if !opts.force && !flagYes {
		response, err := prompter.ReadLine("Update now? [Y/n]: ")
		if err != nil {
			p.Warn("Update cancelled")
			return nil
		}
		response = strings.ToLower(response)
		if response != "" && response != "y" && response != "yes" {
			p.Warn("Update cancelled")
			return nil
		}
	}

	asset, err := update.AssetForPlatform(release)
	if err != nil {
		return err
	}

	p.Info(fmt.Sprintf("Downloading %s...", asset.Name))
	bar := ui.NewProgressBar(output, asset.Size)
	archiveData, err := updater.Download(asset, func(downloaded, total int64) {
		bar.Update(downloaded)
	})
	bar.Finish()
	if err != nil {
		return exitcodes.NetworkErr("download: " + err.Error())
	}

	if !opts.skipVerify {
		p.Info("Verifying checksum...")
		if err := updater.VerifyChecksum(archiveData, release, asset.Name); err != nil {
			return exitcodes.ValidationErr("checksum verification: " + err.Error())
		}
		p.Success("Checksum verified")
	} else {
		p.Warn("Skipping checksum verification (not recommended)")
	}

	p.Info("Extracting binary...")
	binaryData, err := updater.ExtractBinary(archiveData)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	p.Info("Installing...")
	if err := updater.Install(binaryData); err != nil {
		return fmt.Errorf("install: %w", err)
	}

	if verifyBinary != nil {
		p.Info("Verifying installation...")
		if _, verErr := verifyBinary(opts.binaryPath); verErr != nil {
			p.Warn("Verification failed, rolling back...")
			if rbErr := updater.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, verErr)
			}
			return fmt.Errorf("new binary failed verification, rolled back: %w", verErr)
		}
	}

	fmt.Fprintln(output)
	p.Success(fmt.Sprintf("Updated to v%s", latest))
	return nil
}

func init() {
	var (
		checkOnly  bool
		force      bool
		version    string
		skipVerify bool
	)

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update odlctl to the latest version",
		Long: `Check for and install the latest odlctl release.

Pre-built binaries are downloaded from GitHub Releases, checksum
verified, and swapped in place of the running binary.

Examples:
  odlctl update                   # Update to latest version
  odlctl update --check           # Check only, don't install
  odlctl update --version v1.2.0  # Install a specific version`,
		RunE: func(cmd *cobra.Command, args []string) error {
			updater, err := update.NewUpdater(Version)
			if err != nil {
				return err
			}
			home, _ := os.UserHomeDir()

			opts := updateCoreOpts{
				checkOnly:      checkOnly,
				force:          force,
				version:        version,
				skipVerify:     skipVerify,
				currentVersion: Version,
				binaryPath:     updater.BinaryPath,
				homeDir:        home,
			}

			verifyBinary := func(path string) (string, error) {
				verifyCmd := exec.Command(path, "version")
				var stdout bytes.Buffer
				verifyCmd.Stdout = &stdout
				if err := verifyCmd.Run(); err != nil {
					return "", err
				}
				return strings.TrimSpace(stdout.String()), nil
			}

			return runUpdateCore(updater, opts, getPrinter(), &ttyPrompter{}, os.Stdout, verifyBinary)
		},
	}

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
	updateCmd.Flags().BoolVar(&force, "force", false, "Skip confirmation and version comparison")
	updateCmd.Flags().StringVar(&version, "version", "", "Install a specific version (e.g. v1.2.0)")
	updateCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Skip checksum verification (not recommended)")

	rootCmd.AddCommand(updateCmd)
}
