package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlevy/markform-sub006/pkg/parser"
	"github.com/jlevy/markform-sub006/pkg/serialize"
	"github.com/jlevy/markform-sub006/pkg/transcode"
)

func newFmtCmd() *cobra.Command {
	var style string
	var output string
	var fromScratch bool

	cmd := &cobra.Command{
		Use:   "fmt <document>",
		Short: "Normalize a document's form syntax",
		Long: `Re-renders the form in canonical shape while keeping all prose outside the
form byte-identical. --style switches between the tag and comment directive
conventions.`,
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

			opts := serialize.Options{}
			if fromScratch {
				opts.Mode = serialize.ModeRender
			}
			switch style {
			case "":
			case "tag":
				opts.Style = transcode.StyleTag
			case "comment":
				opts.Style = transcode.StyleComment
			default:
				return fmt.Errorf("unknown style %q (want tag or comment)", style)
			}

			out, err := serialize.Serialize(f, opts)
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
	cmd.Flags().StringVar(&style, "style", "", "directive style: tag or comment (default keeps the document's)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write result here instead of in place")
	cmd.Flags().BoolVar(&fromScratch, "from-scratch", false, "regenerate the whole document, dropping outside prose")
	return cmd
}
