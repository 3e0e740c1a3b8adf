package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/widgets"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [source]",
		Short: "Show the steps, fields and dependencies of a definition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, _, err := ctx.loadDefinition(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				raw, err := parser.Serialize(def)
				if err != nil {
					return err
				}
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, raw, "", "  "); err != nil {
					return err
				}
				pretty.WriteByte('\n')
				_, err = out.Write(pretty.Bytes())
				return err
			}

			fmt.Fprintf(out, "Form: %s\n\n", def.FormName)
			printTable(out, "Steps", []string{"#", "Name", "Title", "Fields"}, stepRows(def), []columnAlignment{alignRight, alignLeft, alignLeft, alignRight})
			printTable(out, "Fields", []string{"Step", "ID", "Name", "Type", "Widget", "Label", "Required", "Options"}, fieldRows(def, widgets.NewRegistry()), []columnAlignment{alignLeft, alignRight})
			if len(def.Dependencies) > 0 {
				printTable(out, "Dependencies", []string{"Dependent", "Parent", "URL template"}, dependencyRows(def), nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized definition as JSON")
	return cmd
}

func stepRows(def model.FormDefinition) [][]string {
	rows := make([][]string, 0, len(def.Steps))
	for i, step := range def.Steps {
		rows = append(rows, []string{strconv.Itoa(i + 1), step.Name, step.Title, strconv.Itoa(len(step.Fields))})
	}
	return rows
}

func fieldRows(def model.FormDefinition, reg *widgets.Registry) [][]string {
	var rows [][]string
	for _, step := range def.Steps {
		for _, field := range step.Fields {
			widget, ok := reg.Resolve(field)
			if !ok {
				widget = "-"
			}
			rows = append(rows, []string{
				step.Name,
				strconv.Itoa(field.ID),
				field.Name,
				string(field.Type),
				widget,
				field.Label,
				yesNo(field.Validation.Required),
				optionSummary(field),
			})
		}
	}
	return rows
}

func optionSummary(field model.Field) string {
	switch {
	case field.FetchOptionsURL != "":
		return field.FetchOptionsURL
	case len(field.Options) > 0:
		return fmt.Sprintf("%d static", len(field.Options))
	default:
		return ""
	}
}

func dependencyRows(def model.FormDefinition) [][]string {
	rows := make([][]string, 0, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		rows = append(rows, []string{dep.DependentField, dep.ParentField, dep.FetchOptionsURLTemplate})
	}
	return rows
}
