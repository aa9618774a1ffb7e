package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docmeta/internal/bootstrap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the LLM response cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := bootstrap.OpenCache(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := c.Prune(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %s cache\n", cfg.CacheBackend)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := bootstrap.OpenCache(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := c.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s cache\n", cfg.CacheBackend)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd, cacheClearCmd)
}
