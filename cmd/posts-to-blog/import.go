package main

import (
	"fmt"
	"os"
	"time"

	"github.com/manuel-rabade/posts-to-blog/internal/importer"
	"github.com/spf13/cobra"
)

var (
	importAfter    string
	importBefore   string
	importTimezone string
	importAuthor   string
	importTag      string
	importUsername string
	importUnsafe   bool
	importCSV      string
)

var importCmd = &cobra.Command{
	Use:   "import ARCHIVE OUTPUT",
	Short: "Convert a Twitter/X archive into posts",
	Long: `Import reads a Twitter/X archive export and generates one post per
thread: reply chains are merged chronologically, media files are copied
into post bundles, and links and mentions become markdown.

Existing posts are never overwritten unless --unsafe is set.

Example:
  posts-to-blog import archive/ posts/ --after 2020-01-01 --timezone America/Mexico_City --author manuel --tag tuits`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importAfter, "after", "", "Include only entries created after this date")
	importCmd.Flags().StringVar(&importBefore, "before", "", "Include only entries created before this date")
	importCmd.Flags().StringVar(&importTimezone, "timezone", "", "Local timezone for timestamps")
	importCmd.Flags().StringVar(&importAuthor, "author", "", "Author metadata for generated posts")
	importCmd.Flags().StringVar(&importTag, "tag", "", "Tag metadata for generated posts")
	importCmd.Flags().StringVar(&importUsername, "username", "", "Account username for origin links")
	importCmd.Flags().BoolVar(&importUnsafe, "unsafe", false, "Overwrite existing posts")
	importCmd.Flags().StringVar(&importCSV, "csv", "", "Thread inventory CSV output path")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	archiveDir, outputDir := args[0], args[1]

	var filter importer.Filter
	if importTimezone != "" {
		loc, err := time.LoadLocation(importTimezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
		filter.Location = loc
	}
	if importAfter != "" {
		after, err := importer.ParseDate(importAfter, filter.Location)
		if err != nil {
			return err
		}
		filter.After = after
	}
	if importBefore != "" {
		before, err := importer.ParseDate(importBefore, filter.Location)
		if err != nil {
			return err
		}
		filter.Before = before
	}

	tweets, err := importer.LoadArchive(archiveDir)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}
	fmt.Printf("%d tweets loaded\n", len(tweets))

	threads, replies := importer.BuildThreads(tweets, filter)
	fmt.Printf("%d threads found\n", len(threads))
	fmt.Printf("%d replies found\n", replies)

	opts := importer.Options{
		Author:   importAuthor,
		Tag:      importTag,
		Username: importUsername,
		Unsafe:   importUnsafe,
	}

	summary, err := importer.WritePosts(archiveDir, outputDir, threads, opts)
	if err != nil {
		return fmt.Errorf("write posts: %w", err)
	}
	fmt.Printf("%d posts written\n", summary.Written)
	fmt.Printf("%d posts skipped\n", summary.Skipped)

	if importCSV != "" {
		f, err := os.Create(importCSV)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()

		if err := importer.WriteCSV(f, threads, importUsername); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	return nil
}
