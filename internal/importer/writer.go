package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manuel-rabade/posts-to-blog/internal/post"
)

// Summary reports the outcome of an import run.
type Summary struct {
	Written int
	Skipped int
}

// WritePosts generates one output per thread: a bundle directory with
// index.md and copied media, or a standalone markdown file when the thread
// has none. Existing outputs are skipped unless Options.Unsafe allows
// overwriting.
func WritePosts(archiveDir, outputDir string, threads []*Tweet, opts Options) (Summary, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("create output directory: %w", err)
	}

	var sum Summary
	for _, t := range threads {
		meta, body, catalog := BuildPost(t, opts)
		id := fmt.Sprintf("%s-%s", t.Created.Format("20060102"), t.ID)

		var filename string
		if len(catalog) > 0 {
			dir := filepath.Join(outputDir, id)
			if exists(dir) && !opts.Unsafe {
				slog.Debug("post already exists, skipping", "id", id)
				sum.Skipped++
				continue
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return sum, fmt.Errorf("create post directory: %w", err)
			}
			for orig, name := range catalog {
				src := filepath.Join(archiveDir, "data", "tweets_media", orig)
				if err := copyFile(src, filepath.Join(dir, name)); err != nil {
					slog.Error("failed to copy media", "id", id, "file", orig, "error", err)
				}
			}
			filename = filepath.Join(dir, "index.md")
		} else {
			filename = filepath.Join(outputDir, id+".md")
			if exists(filename) && !opts.Unsafe {
				slog.Debug("post already exists, skipping", "id", id)
				sum.Skipped++
				continue
			}
		}

		p := &post.Post{Filename: filename, Meta: meta, Body: body}
		if err := p.Save(); err != nil {
			return sum, err
		}
		sum.Written++
	}

	return sum, nil
}

// WriteCSV emits the thread inventory: one row per generated post.
func WriteCSV(w io.Writer, threads []*Tweet, username string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "time", "replies", "media", "link", "body"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range threads {
		media := len(t.Media)
		for _, r := range t.Replies {
			media += len(r.Media)
		}
		row := []string{
			t.ID,
			t.Created.Format("2006-Jan-02"),
			t.Created.Format("15:04"),
			strconv.Itoa(len(t.Replies)),
			strconv.Itoa(media),
			fmt.Sprintf("https://x.com/%s/status/%s", username, t.ID),
			t.ThreadText(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
