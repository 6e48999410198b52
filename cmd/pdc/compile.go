package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"palladium/internal/diagfmt"
	"palladium/internal/driver"
)

var (
	compileOutput   string
	compileEmitMeta bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output C file (default: entry name with .c)")
	compileCmd.Flags().BoolVar(&compileEmitMeta, "emit-meta", false, "write the msgpack metadata artifact next to the output")
}

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [file]",
	Short: "Compile a Palladium program to C",
	Long:  "Compile a Palladium program to C. Without a file argument the entry point comes from pd.toml.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompile,
}

func runCompile(cmd *cobra.Command, args []string) error {
	colorOn := useColor(cmd)
	applyColorMode(colorOn)
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")

	entry, manifest, err := resolveEntry(args)
	if err != nil {
		return err
	}

	res, err := driver.Compile(entry, driver.Options{
		MaxDiagnostics: maxDiags,
		EmitMeta:       compileEmitMeta,
	})
	if err != nil {
		if res != nil && strings.HasPrefix(err.Error(), "internal:") {
			fmt.Fprintln(os.Stderr, "pdc:", err)
			return &exitError{code: exitInternal}
		}
		return err
	}
	reportDiagnostics(res, colorOn, maxDiags)
	if res.HasErrors() {
		return &exitError{code: exitDiags}
	}

	outPath := outputPath(entry, manifest)
	if err := os.WriteFile(outPath, res.CSource, 0o644); err != nil {
		return err
	}
	runtimePath := filepath.Join(filepath.Dir(outPath), "pd_runtime.c")
	if err := os.WriteFile(runtimePath, res.Runtime, 0o644); err != nil {
		return err
	}
	if compileEmitMeta {
		metaPath := strings.TrimSuffix(outPath, ".c") + ".meta"
		if err := os.WriteFile(metaPath, res.Meta, 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
	return nil
}

func resolveEntry(args []string) (string, *projectManifest, error) {
	if len(args) == 1 {
		return args[0], nil, nil
	}
	return entryFromManifest(".")
}

// outputPath picks the C output location: the -o flag wins, then the
// manifest's [build].output, then the entry name with a .c suffix.
func outputPath(entry string, manifest *projectManifest) string {
	if compileOutput != "" {
		return compileOutput
	}
	if manifest != nil && strings.TrimSpace(manifest.Config.Build.Output) != "" {
		return filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Build.Output))
	}
	base := strings.TrimSuffix(entry, filepath.Ext(entry))
	return base + ".c"
}

func reportDiagnostics(res *driver.Result, colorOn bool, maxDiags int) {
	if res.Bag.Len() == 0 {
		return
	}
	res.Bag.Sort()
	res.Bag.Dedup()
	diagfmt.Pretty(os.Stderr, res.Bag, res.Session.FS, diagfmt.PrettyOpts{
		Color:     colorOn,
		ShowNotes: true,
		Max:       maxDiags,
	})
}
