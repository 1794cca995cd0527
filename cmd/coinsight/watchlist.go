package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/store"
)

func newWatchlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage the scanned symbol watchlist",
	}

	withRepo := func(run func(ctx context.Context, repo store.WatchlistRepo, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.DSN == "" {
				return fmt.Errorf("watchlist requires postgres.dsn (or COINSIGHT_POSTGRES_DSN)")
			}
			repo, err := store.Open(cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer repo.Close()
			return run(cmd.Context(), repo, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched symbols",
		RunE: withRepo(func(ctx context.Context, repo store.WatchlistRepo, _ []string) error {
			entries, err := repo.List(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("watchlist is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%-12s added %s\n", e.Symbol, e.AddedAt.Format("2006-01-02"))
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: withRepo(func(ctx context.Context, repo store.WatchlistRepo, args []string) error {
			entry, err := repo.Add(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("added %s\n", entry.Symbol)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: withRepo(func(ctx context.Context, repo store.WatchlistRepo, args []string) error {
			if err := repo.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		}),
	})

	return cmd
}
