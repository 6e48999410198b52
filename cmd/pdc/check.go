package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"palladium/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file]",
	Short: "Type-check a Palladium program without generating code",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	colorOn := useColor(cmd)
	applyColorMode(colorOn)
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")

	entry, _, err := resolveEntry(args)
	if err != nil {
		return err
	}

	res, err := driver.Check(entry, driver.Options{MaxDiagnostics: maxDiags})
	if err != nil {
		return err
	}
	reportDiagnostics(res, colorOn, maxDiags)
	if res.HasErrors() {
		return &exitError{code: exitDiags}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
