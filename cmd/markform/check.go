package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlevy/markform-sub006/pkg/parser"
	"github.com/jlevy/markform-sub006/pkg/summary"
	"github.com/jlevy/markform-sub006/pkg/transcode"
	"github.com/jlevy/markform-sub006/pkg/validate"
)

func newCheckCmd() *cobra.Command {
	var asJSON bool
	var strictStyle bool

	cmd := &cobra.Command{
		Use:   "check <document>",
		Short: "Parse and validate a form document",
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

			if strictStyle {
				for _, v := range transcode.ValidateConsistency(string(src), f.SourceStyle) {
					fmt.Fprintf(cmd.ErrOrStderr(), "line %d: directive style differs from the document's %s style: %s\n",
						v.Line, f.SourceStyle, v.Text)
				}
			}

			issues, _ := validate.Validate(f)
			issues = append(issues, validate.EmptyOptionalNotices(f)...)
			ranked := summary.Prioritize(f.Schema, issues)

			if asJSON {
				out := struct {
					Issues   []summary.RankedIssue   `json:"issues"`
					Progress summary.ProgressSummary `json:"progress"`
					Complete bool                    `json:"complete"`
				}{ranked, summary.Progress(f), summary.Complete(f, issues)}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			for _, issue := range ranked {
				fmt.Fprintf(cmd.OutOrStdout(), "[tier %d] %-7s %s: %s\n",
					issue.Tier, issue.Severity, issue.Ref, issue.Msg)
			}
			progress := summary.Progress(f)
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d answered, %d valid\n",
				progress.Answered, progress.TotalFields, progress.Valid)
			if !summary.Complete(f, issues) {
				return fmt.Errorf("document incomplete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable output")
	cmd.Flags().BoolVar(&strictStyle, "strict-style", false, "report directive style inconsistencies")
	return cmd
}
