package main

import (
	"github.com/spf13/cobra"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/renderers/tui"
)

// newRootCommand builds the command tree. driver replaces the terminal
// prompts of fill when non-nil.
func newRootCommand(driver tui.PromptDriver) *cobra.Command {
	ctx := newCommandContext()
	ctx.driver = driver

	rootCmd := &cobra.Command{
		Use:           "formsteward",
		Short:         "Inspect and fill multi-step form definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "YAML configuration file")
	flags.StringVar(&ctx.envFileFlag, "env-file", ".env", "dotenv file with FORMSTEWARD_ overrides")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "override the configured log level")
	flags.StringVar(&ctx.exampleFlag, "example", "", "use a bundled example definition instead of a source argument")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newFillCommand(ctx))
	rootCmd.AddCommand(newImportOpenAPICommand(ctx))
	rootCmd.AddCommand(newExamplesCommand(ctx))

	return rootCmd
}
