package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/internal/logging"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/renderers/tui"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/session"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/trigger"
)

func newFillCommand(ctx *commandContext) *cobra.Command {
	var (
		format      string
		output      string
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "fill [source]",
		Short: "Fill a definition step by step in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := tui.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			driver := ctx.driver
			if driver == nil {
				if !logging.Interactive(os.Stdin) {
					return errors.New("fill needs an interactive terminal")
				}
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}

			def, _, err := ctx.loadDefinition(cmd.Context(), args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runner := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithMaxAttempts(maxAttempts),
				tui.WithLogger(logger),
			)
			s := session.New(def,
				session.WithFetcher(ctx.fetcher(cfg, logger)),
				session.WithCapturer(runner.Capturer()),
				session.WithLogger(logger),
				session.WithTriggerOptions(trigger.WithConcurrency(cfg.Trigger.Concurrency)),
			)
			defer s.Close()
			logger.Info("fill started", zap.String("session", s.ID()), zap.String("form", def.FormName))

			values, err := runner.Run(cmd.Context(), s)
			if err != nil {
				printProgress(cmd, s.Progress())
				return err
			}
			payload, err := tui.Encode(values, outputFormat)
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, payload, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Submission written to %s\n", output)
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "submission format: json, form or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the submission to a file instead of stdout")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", tui.DefaultMaxAttempts, "prompts per invalid field before giving up, 0 for no limit")
	return cmd
}

func printProgress(cmd *cobra.Command, progress session.Progress) {
	rows := make([][]string, 0, len(progress.Steps))
	for _, step := range progress.Steps {
		marker := ""
		if step.Name == progress.Current {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			step.Name,
			strconv.Itoa(step.Evaluated) + "/" + strconv.Itoa(step.Fields),
			yesNo(step.Valid),
			strings.Join(step.Invalid, ", "),
		})
	}
	printTable(cmd.ErrOrStderr(), "Progress: "+string(progress.Status),
		[]string{"", "Step", "Checked", "Valid", "Invalid"}, rows, nil)
}
