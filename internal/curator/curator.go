// Package curator derives post metadata from model completions and applies
// it to post files.
package curator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/manuel-rabade/posts-to-blog/internal/engine"
	"github.com/manuel-rabade/posts-to-blog/internal/post"
	"github.com/manuel-rabade/posts-to-blog/internal/prompt"
)

// ErrValidation marks a model reply that violates the template's schema or
// vocabulary. The post is left unmodified and the failure is recorded.
var ErrValidation = errors.New("validation error")

// summaryLimit caps generated summaries, in runes.
const summaryLimit = 180

// Status classifies the outcome of one curated post.
type Status string

const (
	StatusOK      Status = "ok"
	StatusInvalid Status = "invalid"
	StatusError   Status = "error"
)

// Result is the outcome of curating one post: the extracted fields, the
// model's justification, and token usage.
type Result struct {
	ID       string
	Status   Status
	Category string
	Title    string
	Summary  string
	Slug     string
	Tags     []string
	Subjects []string
	Reason   string
	Usage    engine.Usage
}

// Curator runs one template against a batch of posts.
type Curator struct {
	tmpl  *prompt.Template
	eng   engine.Engine
	root  string // posts root, categorized posts move into root/<category>
	apply bool

	usage engine.Usage
}

// New creates a curator. With apply false (dry run) posts are never
// mutated; results only reach the audit outputs.
func New(tmpl *prompt.Template, eng engine.Engine, root string, apply bool) *Curator {
	return &Curator{
		tmpl:  tmpl,
		eng:   eng,
		root:  root,
		apply: apply,
	}
}

// Usage returns the cumulative token usage of the batch.
func (c *Curator) Usage() engine.Usage {
	return c.usage
}

// reply is the JSON contract with the model. Which fields are required
// depends on the template type; list fields arrive as comma-separated
// strings.
type reply struct {
	Category string `json:"category"`
	Subjects string `json:"subjects"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Tags     string `json:"tags"`
	Reason   string `json:"reason"`
}

// Process curates a single post. Provider and validation failures are
// reported in the result status, never as a batch-fatal error.
func (c *Curator) Process(ctx context.Context, p *post.Post) Result {
	res := Result{ID: p.ID}

	text, usage, err := c.eng.Complete(ctx, c.tmpl.Render(p.Body), engine.Params{
		Temperature: c.tmpl.Params.Temperature,
		MaxTokens:   c.tmpl.Params.MaxTokens,
	})
	res.Usage = usage
	c.usage.Add(usage)
	if err != nil {
		res.Status = StatusError
		res.Reason = err.Error()
		return res
	}

	raw, err := extractObject(text)
	if err != nil {
		res.Status = StatusInvalid
		res.Reason = fmt.Sprintf("%v\nresponse: %s", err, text)
		return res
	}

	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		res.Status = StatusInvalid
		res.Reason = fmt.Sprintf("parse reply: %v\nresponse: %s", err, text)
		return res
	}
	res.Reason = r.Reason

	if err := c.validate(&r, &res); err != nil {
		res.Status = StatusInvalid
		res.Reason = fmt.Sprintf("%v\nmodel reason: %s", err, r.Reason)
		return res
	}
	res.Status = StatusOK

	if c.apply {
		if err := c.applyResult(p, res); err != nil {
			res.Status = StatusError
			res.Reason = err.Error()
		}
	}

	return res
}

// validate checks the reply against the template's declared vocabulary and
// fills in the validated result fields.
func (c *Curator) validate(r *reply, res *Result) error {
	switch c.tmpl.Type {
	case prompt.TypeCategorize:
		if r.Category == "" {
			return fmt.Errorf("%w: missing category", ErrValidation)
		}
		if !c.tmpl.ValidCategory(r.Category) {
			return fmt.Errorf("%w: invalid category: %q", ErrValidation, r.Category)
		}
		res.Category = r.Category

	case prompt.TypeLabel:
		subjects := splitList(r.Subjects)
		if len(subjects) == 0 {
			return fmt.Errorf("%w: missing subjects", ErrValidation)
		}
		for _, s := range subjects {
			if !c.tmpl.ValidSubject(s) {
				return fmt.Errorf("%w: invalid subject: %q", ErrValidation, s)
			}
		}
		res.Subjects = subjects

	case prompt.TypeCurate:
		if r.Title == "" {
			return fmt.Errorf("%w: missing title", ErrValidation)
		}
		if r.Summary == "" {
			return fmt.Errorf("%w: missing summary", ErrValidation)
		}
		tags := splitList(r.Tags)
		if len(tags) == 0 {
			return fmt.Errorf("%w: missing tags", ErrValidation)
		}
		for _, t := range tags {
			if !c.tmpl.ValidTag(t) {
				return fmt.Errorf("%w: invalid tag: %q", ErrValidation, t)
			}
		}
		res.Title = r.Title
		res.Summary = capSummary(r.Summary)
		res.Tags = tags
		// The slug is derived, never trusted from the model.
		res.Slug = Slugify(r.Title)
	}

	return nil
}

// applyResult writes the validated fields into the post's front matter.
func (c *Curator) applyResult(p *post.Post, res Result) error {
	switch c.tmpl.Type {
	case prompt.TypeCategorize:
		p.Meta.Categories = []string{res.Category}
		if err := p.Save(); err != nil {
			return err
		}
		return p.Move(filepath.Join(c.root, res.Category))

	case prompt.TypeLabel:
		p.Meta.Subjects = merge(p.Meta.Subjects, res.Subjects)
		return p.Save()

	case prompt.TypeCurate:
		p.Meta.Title = res.Title
		p.Meta.Summary = res.Summary
		p.Meta.Tags = res.Tags
		p.Meta.Slug = res.Slug
		return p.Save()
	}

	return fmt.Errorf("unsupported template type: %q", c.tmpl.Type)
}

// Summary aggregates batch counters for the end-of-run report.
type Summary struct {
	Found     int
	Processed int
	Applied   int
	Invalid   int
	Errors    int
}

// Count folds one result into the summary.
func (s *Summary) Count(r Result, applied bool) {
	s.Processed++
	switch r.Status {
	case StatusOK:
		if applied {
			s.Applied++
		}
	case StatusInvalid:
		s.Invalid++
	case StatusError:
		s.Errors++
	}
}

// Log emits the batch counters.
func (s *Summary) Log() {
	slog.Info("curation batch finished",
		"found", s.Found,
		"processed", s.Processed,
		"applied", s.Applied,
		"invalid", s.Invalid,
		"errors", s.Errors,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func merge(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := append([]string(nil), existing...)
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func capSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryLimit {
		return s
	}
	return string(runes[:summaryLimit])
}
