package main

import (
	"strconv"

	"github.com/spf13/cobra"

	formsteward "github.com/Dun-Njuguna/form-steward-sub000"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/definition"
)

func newExamplesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the bundled example definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := formsteward.NewLoader(definition.WithFileSystem(formsteward.ExampleForms()))
			var rows [][]string
			for _, name := range formsteward.ExampleNames() {
				file, _ := formsteward.ExampleFile(name)
				def, err := formsteward.Load(cmd.Context(), loader, definition.FromFS(file))
				if err != nil {
					return err
				}
				fields := 0
				for _, step := range def.Steps {
					fields += len(step.Fields)
				}
				rows = append(rows, []string{name, def.FormName, strconv.Itoa(len(def.Steps)), strconv.Itoa(fields)})
			}
			printTable(cmd.OutOrStdout(), "", []string{"Example", "Form", "Steps", "Fields"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight})
			return nil
		},
	}
}
