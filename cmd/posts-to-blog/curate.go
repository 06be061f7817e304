package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/manuel-rabade/posts-to-blog/internal/config"
	"github.com/manuel-rabade/posts-to-blog/internal/curator"
	"github.com/manuel-rabade/posts-to-blog/internal/engine"
	"github.com/manuel-rabade/posts-to-blog/internal/history"
	"github.com/manuel-rabade/posts-to-blog/internal/post"
	"github.com/manuel-rabade/posts-to-blog/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	curateSample int
	curateApply  bool
	curateCSV    string
)

var curateCmd = &cobra.Command{
	Use:   "curate POSTS ENGINE TEMPLATE",
	Short: "Curate posts with a model",
	Long: `Curate posts using an LLM engine and a prompt template. The template
type selects the operation: categorize assigns a category, label adds
subject tags, curate generates title, summary, tags and slug.

Dry run by default: results go to the audit CSV and the history database
without touching any post. Use --apply to write metadata back.

Examples:
  posts-to-blog curate posts/ engines/claude.yaml templates/categorize.yaml --csv audit.csv
  posts-to-blog curate posts/ engines/claude.yaml templates/label.yaml --apply`,
	Args: cobra.ExactArgs(3),
	RunE: runCurate,
}

func init() {
	curateCmd.Flags().IntVar(&curateSample, "sample", 0, "Process a random sample of N posts")
	curateCmd.Flags().BoolVar(&curateApply, "apply", false, "Write curated metadata into the posts")
	curateCmd.Flags().StringVar(&curateCSV, "csv", "", "Audit CSV output path")
	rootCmd.AddCommand(curateCmd)
}

func runCurate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()
	postsDir, enginePath, templatePath := args[0], args[1], args[2]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	engineCfg, err := engine.LoadConfig(enginePath)
	if err != nil {
		return fmt.Errorf("load engine config: %w", err)
	}

	if err := cfg.ValidateForEngine(engineCfg.Type); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	tmpl, err := prompt.Load(templatePath)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	eng, err := engine.New(engineCfg, cfg.KeyFor(engineCfg.Type))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	posts, err := post.LoadDir(postsDir)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	fmt.Printf("%d posts found\n", len(posts))

	if curateSample > 0 && curateSample < len(posts) {
		rand.Shuffle(len(posts), func(i, j int) {
			posts[i], posts[j] = posts[j], posts[i]
		})
		posts = posts[:curateSample]
		fmt.Printf("%d posts sampled\n", len(posts))
	}

	if err := cfg.ValidateForHistory(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	store, err := history.Open(ctx, cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()

	runID, err := store.StartRun(ctx, engineCfg.Type, engineCfg.Model, tmpl.Type)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	var audit *curator.Audit
	if curateCSV != "" {
		f, err := os.Create(curateCSV)
		if err != nil {
			return fmt.Errorf("create audit csv: %w", err)
		}
		defer f.Close()

		audit, err = curator.NewAudit(f)
		if err != nil {
			return err
		}
	}

	cur := curator.New(tmpl, eng, curatorRoot(postsDir), curateApply)
	summary := curator.Summary{Found: len(posts)}

	for _, p := range posts {
		slog.Debug("processing post", "id", p.ID)
		res := cur.Process(ctx, p)
		summary.Count(res, curateApply)

		if res.Status != curator.StatusOK {
			slog.Warn("post not curated", "id", res.ID, "status", res.Status)
		}

		if audit != nil {
			if err := audit.Record(res); err != nil {
				return err
			}
		}

		// History recording is best effort for the batch.
		if err := store.RecordItem(ctx, runID, history.Item{
			PostID:   res.ID,
			Status:   string(res.Status),
			Category: res.Category,
			Reason:   res.Reason,
			Input:    res.Usage.Input,
			Output:   res.Usage.Output,
			Total:    res.Usage.Total,
		}); err != nil {
			slog.Warn("failed to record history item", "id", res.ID, "error", err)
		}
	}

	if audit != nil {
		if err := audit.Flush(); err != nil {
			return fmt.Errorf("flush audit csv: %w", err)
		}
	}

	summary.Log()

	usage := cur.Usage()
	fmt.Printf("%d posts processed, %d applied, %d invalid, %d errors\n",
		summary.Processed, summary.Applied, summary.Invalid, summary.Errors)
	fmt.Printf("%d input tokens\n", usage.Input)
	fmt.Printf("%d output tokens\n", usage.Output)
	fmt.Printf("%d total tokens\n", usage.Total)
	fmt.Printf("%d elapsed minutes\n", int(time.Since(start).Minutes()))

	return nil
}

// curatorRoot is the directory categorized posts move under. POSTS may be a
// single file, in which case its directory is the root.
func curatorRoot(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
