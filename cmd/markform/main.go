// Command markform works with structured-form Markdown documents: validate
// them, apply patch batches, normalize their directive style, render plain
// reports, and fill them interactively.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "markform",
		Short:         "Parse, validate, patch and serialize form documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCheckCmd(),
		newApplyCmd(),
		newFmtCmd(),
		newReportCmd(),
		newFillCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "markform:", err)
		os.Exit(1)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
