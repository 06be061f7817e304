// Package post manages static-site posts: front matter plus markdown body.
package post

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---\n"

// FrontMatter holds the structured metadata block of a post.
type FrontMatter struct {
	Title      string   `yaml:"title,omitempty"`
	Date       string   `yaml:"date,omitempty"`
	Author     string   `yaml:"author,omitempty"`
	Summary    string   `yaml:"summary,omitempty"`
	Slug       string   `yaml:"slug,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Subjects   []string `yaml:"subjects,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Draft      bool     `yaml:"draft,omitempty"`
	Origin     string   `yaml:"origin,omitempty"`
}

// knownKeys are the front matter fields FrontMatter models. Anything else
// is carried in Post.Extra so rewrites keep hand-written metadata.
var knownKeys = map[string]struct{}{
	"title": {}, "date": {}, "author": {}, "summary": {}, "slug": {},
	"tags": {}, "subjects": {}, "categories": {}, "draft": {}, "origin": {},
}

// Post is a single post on disk. Bundle posts live in their own directory
// as index.md (possibly next to media files); standalone posts are a single
// markdown file. Path is what moves when the post changes category.
type Post struct {
	Filename string // markdown file path
	Path     string // bundle directory, or the file itself for standalone posts
	Bundle   bool
	ID       string
	Meta     FrontMatter
	Extra    map[string]any // front matter keys outside FrontMatter
	Body     string
}

// Load reads a markdown file and parses its front matter and body.
func Load(filename string) (*Post, error) {
	p := &Post{Filename: filename}

	if filepath.Base(filename) == "index.md" {
		p.Bundle = true
		p.Path = filepath.Dir(filename)
		p.ID = filepath.Base(p.Path)
	} else {
		p.Path = filename
		p.ID = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read post: %w", err)
	}

	parts := strings.SplitN(string(content), frontMatterDelimiter, 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) != "" {
		return nil, fmt.Errorf("parse post %s: missing front matter", filename)
	}

	if err := yaml.Unmarshal([]byte(parts[1]), &p.Meta); err != nil {
		return nil, fmt.Errorf("parse front matter of %s: %w", filename, err)
	}

	var all map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &all); err != nil {
		return nil, fmt.Errorf("parse front matter of %s: %w", filename, err)
	}
	for key := range all {
		if _, ok := knownKeys[key]; ok {
			delete(all, key)
		}
	}
	if len(all) > 0 {
		p.Extra = all
	}

	p.Body = parts[2]

	return p, nil
}

// LoadDir loads all posts under path: bundle directories containing index.md
// and standalone .md files. Directory order is preserved so batch runs are
// reproducible. A single file path loads that one post.
func LoadDir(path string) ([]*Post, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat posts path: %w", err)
	}
	if !info.IsDir() {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		return []*Post{p}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read posts directory: %w", err)
	}

	var posts []*Post
	for _, entry := range entries {
		var filename string
		switch {
		case entry.IsDir():
			filename = filepath.Join(path, entry.Name(), "index.md")
			if _, err := os.Stat(filename); err != nil {
				continue // directory without index.md
			}
		case filepath.Ext(entry.Name()) == ".md":
			filename = filepath.Join(path, entry.Name())
		default:
			continue
		}

		p, err := Load(filename)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, nil
}

// Save writes the post's front matter and body back to its file.
func (p *Post) Save() error {
	meta, err := yaml.Marshal(&p.Meta)
	if err != nil {
		return fmt.Errorf("marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter)
	sb.Write(meta)
	if len(p.Extra) > 0 {
		extra, err := yaml.Marshal(p.Extra)
		if err != nil {
			return fmt.Errorf("marshal front matter: %w", err)
		}
		sb.Write(extra)
	}
	sb.WriteString(frontMatterDelimiter)
	sb.WriteString(p.Body)

	if err := os.WriteFile(p.Filename, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write post: %w", err)
	}
	return nil
}

// Category returns the post's primary category, or "" if none is set.
func (p *Post) Category() string {
	if len(p.Meta.Categories) > 0 {
		return p.Meta.Categories[0]
	}
	return ""
}

// Move relocates the post into destDir, keeping its basename so the post
// identity is stable across category changes.
func (p *Post) Move(destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create category directory: %w", err)
	}

	dest := filepath.Join(destDir, filepath.Base(p.Path))
	if err := os.Rename(p.Path, dest); err != nil {
		return fmt.Errorf("move post: %w", err)
	}

	p.Path = dest
	if p.Bundle {
		p.Filename = filepath.Join(dest, "index.md")
	} else {
		p.Filename = dest
	}
	return nil
}
