package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/taxocache"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Lookup cache utilities",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheClearCommand(cmdCtx))

	return cacheCmd
}

func newCacheStatsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show lookup cache contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := taxocache.Open(cfg.Cache.Dir, cacheTTL(cfg.Cache.TTLDays), logging.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, statsTable(stats))
			fmt.Fprintf(out, "cache database: %s\n", stats.Path)
			return nil
		},
	}
}

func newCacheClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached lookup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := taxocache.Open(cfg.Cache.Dir, cacheTTL(cfg.Cache.TTLDays), logging.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
}
