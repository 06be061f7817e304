package main

import (
	"context"
	"fmt"

	"github.com/manuel-rabade/posts-to-blog/internal/config"
	"github.com/manuel-rabade/posts-to-blog/internal/history"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show curation history statistics",
	Long:  `Display aggregate statistics from the curation history database.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForHistory(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := history.Open(ctx, cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	fmt.Println("=== Curation History ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.HistoryDBPath)
	fmt.Println()
	fmt.Printf("Items: %d\n", stats.Items)

	if len(stats.ByStatus) > 0 {
		fmt.Println("  By status:")
		for _, sc := range stats.ByStatus {
			fmt.Printf("    %s: %d\n", sc.Status, sc.Count)
		}
	}
	if len(stats.ByCategory) > 0 {
		fmt.Println("  By category:")
		for _, cc := range stats.ByCategory {
			fmt.Printf("    %s: %d\n", cc.Category, cc.Count)
		}
	}

	fmt.Println()
	fmt.Println("Tokens:")
	fmt.Printf("  Input: %d\n", stats.InputTokens)
	fmt.Printf("  Output: %d\n", stats.OutputTokens)
	fmt.Printf("  Total: %d\n", stats.TotalTokens)

	if len(stats.RecentRuns) > 0 {
		fmt.Println()
		fmt.Println("Recent runs:")
		for _, run := range stats.RecentRuns {
			fmt.Printf("  #%d %s %s/%s %s: %d items\n",
				run.ID, run.StartedAt.Format("2006-01-02 15:04"),
				run.Engine, run.Model, run.Template, run.Items)
		}
	}

	return nil
}
