package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlevy/markform-sub006/pkg/parser"
	"github.com/jlevy/markform-sub006/pkg/patch"
	"github.com/jlevy/markform-sub006/pkg/serialize"
)

func newApplyCmd() *cobra.Command {
	var patchPath string
	var output string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply <document>",
		Short: "Apply a JSON patch batch to a document",
		Long: `Reads a JSON array of patch operations, validates the whole batch against
the document, and applies it atomically: one invalid patch rejects the batch.
The updated document is written back in place unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := parser.Parse(src)
			if err != nil {
				return err
			}

			var patchData []byte
			if patchPath == "" || patchPath == "-" {
				patchData, err = io.ReadAll(cmd.InOrStdin())
			} else {
				patchData, err = os.ReadFile(patchPath)
			}
			if err != nil {
				return err
			}
			patches, err := patch.DecodeBatch(patchData)
			if err != nil {
				return err
			}

			result := patch.Apply(f, patches)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if result.Status == patch.StatusRejected {
				return fmt.Errorf("batch rejected (%d patches failed)", len(result.Rejections))
			}
			if dryRun {
				return nil
			}

			out, err := serialize.Serialize(f, serialize.Options{})
			if err != nil {
				return err
			}
			target := output
			if target == "" {
				target = args[0]
			}
			return writeOutput(target, out)
		},
	}
	cmd.Flags().StringVarP(&patchPath, "patches", "p", "", "patch file (stdin if empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write result here instead of in place")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the outcome without writing the document")
	return cmd
}
