package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jlevy/markform-sub006/pkg/parser"
	"github.com/jlevy/markform-sub006/pkg/serialize"
)

func newReportCmd() *cobra.Command {
	var output string
	var withNotes bool
	var withUnanswered bool
	var sanitize bool

	cmd := &cobra.Command{
		Use:   "report <document>",
		Short: "Render a filled form as plain Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := parser.Parse(src)
			if err != nil {
				return err
			}
			out, err := serialize.Report(f, serialize.ReportOptions{
				IncludeNotes:      withNotes,
				IncludeUnanswered: withUnanswered,
				SanitizeHTML:      sanitize,
			})
			if err != nil {
				return err
			}
			return writeOutput(output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&withNotes, "notes", false, "include notes as blockquotes")
	cmd.Flags().BoolVar(&withUnanswered, "unanswered", false, "include unanswered fields")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "strip raw HTML from the output")
	return cmd
}
