package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docmeta/internal/adapters/cli"
	"github.com/kirillkom/docmeta/internal/bootstrap"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process every PDF and text document in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.BatchConcurrency
		}

		runner := cli.NewRunner(app.ProcessUC, app.PlainText, app.Output, logger)
		results, err := runner.ProcessDir(cmd.Context(), args[0], concurrency)
		if err != nil {
			return err
		}

		succeeded, failed := cli.Counts(results)
		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "%s\t%s\t%s\n", r.Filename, r.Status, r.Classification.Type)
		}
		fmt.Fprintf(out, "processed %d documents: %d succeeded, %d failed\n", len(results), succeeded, failed)
		fmt.Fprintf(out, "summary: %s\n", app.Output.Path(cli.SummaryFile))
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "documents processed in parallel (default: $BATCH_CONCURRENCY)")
}
