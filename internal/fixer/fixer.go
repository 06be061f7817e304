// Package fixer reapplies manual category and draft corrections from a CSV
// to a categorized posts tree.
package fixer

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

// Fix is one correction: the target category and, optionally, the desired
// draft state. A nil Draft leaves the flag untouched.
type Fix struct {
	ID       string
	Category string
	Draft    *bool
}

// LoadCSV reads a fix file with header id,category,draft. The draft column
// may be empty (no change) or a boolean.
func LoadCSV(path string) (map[string]Fix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fix csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read fix csv header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"id", "category", "draft"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("fix csv: missing column %q", required)
		}
	}

	fixes := make(map[string]Fix)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fix csv: %w", err)
		}

		fix := Fix{
			ID:       row[col["id"]],
			Category: row[col["category"]],
		}
		if raw := row[col["draft"]]; raw != "" {
			draft, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("fix csv: invalid draft value %q for id %s", raw, fix.ID)
			}
			fix.Draft = &draft
		}
		fixes[fix.ID] = fix
	}

	return fixes, nil
}

// Stats counts the outcome for one category directory.
type Stats struct {
	Found  int
	Drafts int
	Fixed  int
}

// Fixer walks the category subdirectories of a posts tree and applies the
// loaded fixes. Dry run unless apply is set; idempotent either way.
type Fixer struct {
	root    string
	fixes   map[string]Fix
	apply   bool
	verbose bool
}

// New creates a fixer over the posts tree rooted at root.
func New(root string, fixes map[string]Fix, apply, verbose bool) *Fixer {
	return &Fixer{
		root:    root,
		fixes:   fixes,
		apply:   apply,
		verbose: verbose,
	}
}

// Run applies the fixes and returns per-category statistics.
func (f *Fixer) Run() (map[string]Stats, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("read posts directory: %w", err)
	}

	stats := make(map[string]Stats)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		category := entry.Name()
		posts, err := post.LoadDir(filepath.Join(f.root, category))
		if err != nil {
			return nil, err
		}

		st := Stats{Found: len(posts)}
		for _, p := range posts {
			if err := f.fixPost(p, category, &st); err != nil {
				// Per-item file errors are recorded, not fatal.
				slog.Error("failed to fix post", "id", p.ID, "error", err)
			}
		}
		stats[category] = st
	}

	return stats, nil
}

func (f *Fixer) fixPost(p *post.Post, category string, st *Stats) error {
	fix, ok := f.fixes[p.ID]
	if !ok {
		return nil
	}

	changed := false
	if fix.Draft != nil && p.Meta.Draft != *fix.Draft {
		p.Meta.Draft = *fix.Draft
		st.Drafts++
		changed = true
		if f.verbose {
			fmt.Printf("   %s: draft -> %t\n", p.ID, *fix.Draft)
		}
	}

	if fix.Category != "" && fix.Category != category {
		if f.verbose {
			fmt.Printf("   %s: %s -> %s\n", p.ID, category, fix.Category)
		}

		// Swap the old category for the new one in the tags.
		tags := make([]string, 0, len(p.Meta.Tags)+1)
		for _, tag := range p.Meta.Tags {
			if tag != category {
				tags = append(tags, tag)
			}
		}
		p.Meta.Tags = append(tags, fix.Category)
		p.Meta.Categories = []string{fix.Category}
		st.Fixed++
		changed = true

		if f.apply {
			if err := p.Save(); err != nil {
				return err
			}
			return p.Move(filepath.Join(f.root, fix.Category))
		}
		return nil
	}

	if changed && f.apply {
		return p.Save()
	}
	return nil
}
