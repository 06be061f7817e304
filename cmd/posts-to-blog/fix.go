package main

import (
	"fmt"
	"sort"

	"github.com/manuel-rabade/posts-to-blog/internal/fixer"
	"github.com/spf13/cobra"
)

var (
	fixApply   bool
	fixVerbose bool
)

var fixCmd = &cobra.Command{
	Use:   "fix POSTS CSV",
	Short: "Apply manual category and draft fixes from a CSV",
	Long: `Fix reads a CSV of corrections (id,category,draft) and applies them to a
categorized posts tree: posts move into their corrected category directory
and draft flags are set to the desired state.

Dry run by default; use --apply to persist the changes.

Example:
  posts-to-blog fix posts/ fixes.csv --apply --verbose`,
	Args: cobra.ExactArgs(2),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().BoolVar(&fixApply, "apply", false, "Persist the fixes")
	fixCmd.Flags().BoolVar(&fixVerbose, "verbose", false, "Print each fix")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	postsDir, csvPath := args[0], args[1]

	fixes, err := fixer.LoadCSV(csvPath)
	if err != nil {
		return fmt.Errorf("load fixes: %w", err)
	}
	fmt.Printf("%d fixes loaded\n", len(fixes))

	stats, err := fixer.New(postsDir, fixes, fixApply, fixVerbose).Run()
	if err != nil {
		return fmt.Errorf("run fixer: %w", err)
	}

	categories := make([]string, 0, len(stats))
	for category := range stats {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	totalFound, totalDrafts, totalFixed := 0, 0, 0
	for _, category := range categories {
		st := stats[category]
		fmt.Printf("%s: %d posts found, %d drafts, %d fixed\n",
			category, st.Found, st.Drafts, st.Fixed)
		totalFound += st.Found
		totalDrafts += st.Drafts
		totalFixed += st.Fixed
	}
	fmt.Printf("total: %d posts found, %d drafts, %d fixed\n",
		totalFound, totalDrafts, totalFixed)

	if !fixApply {
		fmt.Println("dry run, use --apply to persist changes")
	}

	return nil
}
