package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
)

var (
	logsFollow bool
	logsLines  int
)

// karafLogPath returns the controller's main log file.
func karafLogPath(installDir string) string {
	return filepath.Join(installDir, "data", "log", "karaf.log")
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail the controller log",
	Long:  "Print the last lines of data/log/karaf.log; --follow keeps streaming until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		lp := karafLogPath(d.Cfg.InstallDir())
		info, err := os.Stat(lp)
		if err != nil {
			return exitcodes.PreconditionError("log file not found: " + lp)
		}

		// seek back roughly logsLines worth; tail re-syncs to the
		// next newline
		var loc *tail.SeekInfo
		if logsLines > 0 {
			offset := int64(logsLines) * 200
			if offset > info.Size() {
				offset = info.Size()
			}
			loc = &tail.SeekInfo{Offset: -offset, Whence: io.SeekEnd}
		}

		t, err := tail.TailFile(lp, tail.Config{
			Location:  loc,
			Follow:    logsFollow,
			ReOpen:    logsFollow,
			MustExist: true,
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			return exitcodes.ProcessErr("tail " + lp + ": " + err.Error())
		}
		defer t.Cleanup()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		for {
			select {
			case line, ok := <-t.Lines:
				if !ok {
					return t.Err()
				}
				if line.Err != nil {
					return line.Err
				}
				fmt.Fprintln(d.Output, line.Text)
			case <-sigs:
				_ = t.Stop()
				return nil
			case <-cmd.Context().Done():
				_ = t.Stop()
				return nil
			}
		}
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep streaming new lines")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Approximate number of trailing lines to show")
	rootCmd.AddCommand(logsCmd)
}
