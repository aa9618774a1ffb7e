package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docmeta/internal/config"
	"github.com/kirillkom/docmeta/internal/observability/logging"
)

var (
	envFile   string
	outputDir string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docmeta",
	Short: "Classify documents and extract their metadata with an LLM",
	Long: `docmeta classifies PDF and text documents against a registry of document
types and extracts structured metadata from them with a language model.

Each processed document is written to the output directory as {id}.json.
Batch runs also write summary.xlsx.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		cfg = config.Load()
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		// Logs go to stderr so stdout stays readable.
		logger = logging.New("docmeta-cli", cfg.LogLevel, os.Stderr, logging.FileConfig{Path: cfg.LogFile})
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "directory for result files (default: $OUTPUT_DIR)")

	rootCmd.AddCommand(processCmd, batchCmd, cacheCmd)
}
