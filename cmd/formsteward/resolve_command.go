package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/dependency"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		field string
		value string
		fetch bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [source]",
		Short: "Show the option URLs a field value resolves for its dependents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, _, err := ctx.loadDefinition(cmd.Context(), args)
			if err != nil {
				return err
			}
			refs := def.Lookup(field)
			if len(refs) == 0 {
				return fmt.Errorf("unknown field %q", field)
			}
			out := cmd.OutOrStdout()

			resolver := dependency.NewResolver(def)
			updates, err := resolver.Resolve(field, substitute(refs[0].Field, value))
			if err != nil {
				return err
			}
			if len(updates) == 0 {
				fmt.Fprintf(out, "%s has no dependents with option URLs\n", field)
				return nil
			}

			rows := make([][]string, 0, len(updates))
			for _, update := range updates {
				action := "fetch"
				if update.Clear {
					action = "clear"
				}
				rows = append(rows, []string{update.DependentField, action, update.URL})
			}
			printTable(out, "", []string{"Dependent", "Action", "URL"}, rows, nil)

			if !fetch {
				return nil
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			fetcher := ctx.fetcher(cfg, logger)
			for _, update := range updates {
				if update.Clear {
					continue
				}
				opts, err := fetcher.Fetch(cmd.Context(), update.URL)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", update.DependentField, err)
					continue
				}
				optRows := make([][]string, 0, len(opts))
				for _, opt := range opts {
					optRows = append(optRows, []string{strconv.Itoa(opt.ID), opt.Value})
				}
				printTable(out, update.DependentField, []string{"ID", "Value"}, optRows, []columnAlignment{alignRight})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "parent field name")
	cmd.Flags().StringVar(&value, "value", "", "parent value; option ids of choice fields are replaced by their label")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "fetch the resolved option lists")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

// substitute mirrors what a session substitutes for a parent value: the
// label of a static option when raw is one of its ids.
func substitute(field model.Field, raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if field.Type.IsChoice() {
		if id, err := strconv.Atoi(raw); err == nil {
			if opt, ok := field.Option(id); ok {
				return opt.Value
			}
		}
	}
	return raw
}
