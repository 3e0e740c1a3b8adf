package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [source]",
		Short: "Report every structural issue of a definition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			def, location, err := ctx.loadDefinition(cmd.Context(), args)
			if err != nil {
				var defErr *parser.DefinitionError
				if !errors.As(err, &defErr) {
					return err
				}
				rows := make([][]string, 0, len(defErr.Issues))
				for _, issue := range defErr.Issues {
					rows = append(rows, []string{issue.Path, issue.Code, issue.Message})
				}
				printTable(out, location, []string{"Path", "Code", "Message"}, rows, nil)
				return fmt.Errorf("%s: %d issue(s)", location, len(defErr.Issues))
			}

			fields := 0
			for _, step := range def.Steps {
				fields += len(step.Fields)
			}
			fmt.Fprintf(out, "%s: ok (%d steps, %d fields, %d dependencies)\n",
				location, len(def.Steps), fields, len(def.Dependencies))
			return nil
		},
	}
}
