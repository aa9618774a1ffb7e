package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docmeta/internal/adapters/cli"
	"github.com/kirillkom/docmeta/internal/bootstrap"
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Process a single PDF or text document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cli.Supported(args[0]) {
			return fmt.Errorf("unsupported file type: %s", args[0])
		}

		app, err := bootstrap.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		runner := cli.NewRunner(app.ProcessUC, app.PlainText, app.Output, logger)
		result, err := runner.ProcessFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\t%s\t%s (%.2f)\n", result.ID, result.Status, result.Classification.Type, result.Classification.Confidence)
		if result.Error != "" {
			fmt.Fprintf(out, "error: %s\n", result.Error)
		}
		fmt.Fprintf(out, "written: %s\n", app.Output.Path(result.ID+".json"))
		return nil
	},
}
