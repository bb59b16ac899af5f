package main

import (
	"fmt"
	"strings"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/resource"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

// getPrinter returns a UI printer bound to the current --output flag.
func getPrinter() ui.Printer { return ui.NewPrinterFromGlobal(flagOutput) }

// confirm asks a yes/no question, honoring --yes and --non-interactive.
func confirm(d *Deps, question string) (bool, error) {
	if flagYes {
		return true, nil
	}
	if !d.Prompter.IsInteractive() {
		return false, exitcodes.PreconditionError("confirmation required; re-run with --yes")
	}
	answer, err := d.Prompter.ReadLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// planProgress returns a ProgressFunc that prints each resource result
// as the plan runs, unless --quiet.
func planProgress(d *Deps) resource.ProgressFunc {
	if flagQuiet || flagOutput != "text" {
		return nil
	}
	c := d.Printer.Colors
	return func(r resource.Result) {
		switch r.Status {
		case resource.StatusApplied:
			fmt.Fprintf(d.Output, "  %s %s\n", c.Success("changed"), r.Name)
		case resource.StatusUnchanged:
			fmt.Fprintf(d.Output, "  %s %s\n", c.Info("ok"), r.Name)
		case resource.StatusFailed:
			fmt.Fprintf(d.Output, "  %s %s: %s\n", c.Error("failed"), r.Name, r.Error)
		}
	}
}

// summarize counts plan results by status.
func summarize(results []resource.Result) (applied, unchanged, failed int) {
	for _, r := range results {
		switch r.Status {
		case resource.StatusApplied:
			applied++
		case resource.StatusUnchanged:
			unchanged++
		case resource.StatusFailed:
			failed++
		}
	}
	return
}

// printPlanOutcome prints the run summary or structured results.
func printPlanOutcome(d *Deps, results []resource.Result) {
	switch flagOutput {
	case "json":
		d.Printer.JSON(results)
	case "yaml":
		d.Printer.YAML(results)
	default:
		applied, unchanged, failed := summarize(results)
		if !flagQuiet {
			fmt.Fprintf(d.Output, "\n%d changed, %d unchanged, %d failed\n", applied, unchanged, failed)
		}
	}
}
