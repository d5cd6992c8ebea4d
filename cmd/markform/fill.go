package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlevy/markform-sub006/internal/fill"
	"github.com/jlevy/markform-sub006/pkg/parser"
	"github.com/jlevy/markform-sub006/pkg/patch"
	"github.com/jlevy/markform-sub006/pkg/serialize"
)

func newFillCmd() *cobra.Command {
	var output string
	var role string
	var all bool

	cmd := &cobra.Command{
		Use:   "fill <document>",
		Short: "Fill a form interactively",
		Long: `Prompts for each unanswered field in document order and applies the
answers as one atomic batch. Interrupting keeps the answers gathered so far.`,
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

			patches, err := fill.Run(f, fill.NewSurveyDriver(), fill.Options{
				OnlyUnanswered: !all,
				Role:           role,
			})
			if err != nil && !errors.Is(err, fill.ErrInterrupted) {
				return err
			}
			if len(patches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to apply")
				return nil
			}

			result := patch.Apply(f, patches)
			if result.Status == patch.StatusRejected {
				for _, rej := range result.Rejections {
					fmt.Fprintf(cmd.ErrOrStderr(), "patch %d (%s): %s\n", rej.Index, rej.Op, rej.Msg)
				}
				return fmt.Errorf("answers rejected")
			}

			out, err := serialize.Serialize(f, serialize.Options{})
			if err != nil {
				return err
			}
			target := output
			if target == "" {
				target = args[0]
			}
			if err := writeOutput(target, out); err != nil {
				return err
			}
			progress := result.Progress
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d answered\n", progress.Answered, progress.TotalFields)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write result here instead of in place")
	cmd.Flags().StringVar(&role, "role", "", "only prompt for fields owned by this role")
	cmd.Flags().BoolVar(&all, "all", false, "re-prompt answered fields too")
	return cmd
}
