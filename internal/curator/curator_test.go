package curator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manuel-rabade/posts-to-blog/internal/engine"
	"github.com/manuel-rabade/posts-to-blog/internal/post"
	"github.com/manuel-rabade/posts-to-blog/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine returns a canned reply and records the prompts it was given.
type stubEngine struct {
	reply   string
	err     error
	usage   engine.Usage
	prompts []string
}

func (s *stubEngine) Complete(ctx context.Context, prompt string, params engine.Params) (string, engine.Usage, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", engine.Usage{}, s.err
	}
	return s.reply, s.usage, nil
}

func categorizeTemplate(t *testing.T) *prompt.Template {
	t.Helper()
	tmpl, err := prompt.Parse([]byte(`
type: categorize
objective: Clasificar posts
persona: Bibliotecario
instructions: "Categorías: %CATEGORIES%"
output_format: JSON
categories: [tecnología, cultura, otros]
`))
	require.NoError(t, err)
	return tmpl
}

func writePost(t *testing.T, root, id string) *post.Post {
	t.Helper()
	filename := filepath.Join(root, id+".md")
	content := "---\ntitle: \"123\"\ndate: 2020-05-01T10:00:00-05:00\n---\nHoy aprendí sobre compiladores.\n"
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	p, err := post.Load(filename)
	require.NoError(t, err)
	return p
}

func TestProcessCategorize(t *testing.T) {
	t.Run("apply sets category and moves the post", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")
		eng := &stubEngine{
			reply: `{"category": "tecnología", "reason": "habla de compiladores"}`,
			usage: engine.Usage{Input: 10, Output: 5, Total: 15},
		}

		cur := New(categorizeTemplate(t), eng, root, true)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusOK, res.Status)
		assert.Equal(t, "tecnología", res.Category)
		assert.Equal(t, "habla de compiladores", res.Reason)
		assert.Equal(t, engine.Usage{Input: 10, Output: 5, Total: 15}, res.Usage)

		moved, err := post.Load(filepath.Join(root, "tecnología", "20200501-123.md"))
		require.NoError(t, err)
		assert.Equal(t, "tecnología", moved.Category())
		// Other fields are untouched.
		assert.Equal(t, "123", moved.Meta.Title)
		assert.Equal(t, "Hoy aprendí sobre compiladores.\n", moved.Body)

		// The prompt carried the post body.
		require.Len(t, eng.prompts, 1)
		assert.Contains(t, eng.prompts[0], "Hoy aprendí sobre compiladores.")
	})

	t.Run("dry run never mutates the post", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")
		before, err := os.ReadFile(p.Filename)
		require.NoError(t, err)

		eng := &stubEngine{reply: `{"category": "tecnología", "reason": "ok"}`}
		cur := New(categorizeTemplate(t), eng, root, false)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusOK, res.Status)
		after, err := os.ReadFile(filepath.Join(root, "20200501-123.md"))
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.NoDirExists(t, filepath.Join(root, "tecnología"))
	})

	t.Run("out of vocabulary category is recorded, not applied", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")
		before, err := os.ReadFile(p.Filename)
		require.NoError(t, err)

		eng := &stubEngine{reply: `{"category": "deportes", "reason": "?"}`}
		cur := New(categorizeTemplate(t), eng, root, true)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusInvalid, res.Status)
		assert.Contains(t, res.Reason, "deportes")
		assert.Empty(t, res.Category)

		after, err := os.ReadFile(filepath.Join(root, "20200501-123.md"))
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("fenced reply is parsed", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")

		eng := &stubEngine{reply: "```json\n{\"category\": \"cultura\", \"reason\": \"ok\"}\n```"}
		cur := New(categorizeTemplate(t), eng, root, false)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusOK, res.Status)
		assert.Equal(t, "cultura", res.Category)
	})

	t.Run("provider failure is recorded, batch continues", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")

		eng := &stubEngine{err: engine.ErrProvider}
		cur := New(categorizeTemplate(t), eng, root, true)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusError, res.Status)
		assert.NotEmpty(t, res.Reason)
	})
}

func TestProcessLabel(t *testing.T) {
	tmpl, err := prompt.Parse([]byte(`
type: label
objective: Etiquetar posts
persona: Bibliotecario
instructions: "Temas: %SUBJECTS%"
output_format: JSON
subjects: [software, música, viajes]
`))
	require.NoError(t, err)

	t.Run("merges validated subjects", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")
		p.Meta.Subjects = []string{"viajes"}
		require.NoError(t, p.Save())

		eng := &stubEngine{reply: `{"subjects": "software, viajes", "reason": "ok"}`}
		cur := New(tmpl, eng, root, true)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusOK, res.Status)
		assert.Equal(t, []string{"software", "viajes"}, res.Subjects)

		reloaded, err := post.Load(p.Filename)
		require.NoError(t, err)
		assert.Equal(t, []string{"viajes", "software"}, reloaded.Meta.Subjects)
	})

	t.Run("rejects subject outside the vocabulary", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")

		eng := &stubEngine{reply: `{"subjects": "software, deportes", "reason": "?"}`}
		cur := New(tmpl, eng, root, true)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusInvalid, res.Status)
		assert.Contains(t, res.Reason, "deportes")
	})
}

func TestProcessCurate(t *testing.T) {
	tmpl, err := prompt.Parse([]byte(`
type: curate
objective: Describir posts
persona: Editor
instructions: "Etiquetas: %TAGS%"
output_format: JSON
tags: [go, compiladores, web]
`))
	require.NoError(t, err)

	t.Run("applies title, summary, tags and slug", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")

		eng := &stubEngine{reply: `{"title": "Aprendiendo compiladores", "summary": "Notas sobre compiladores.", "tags": "go, compiladores", "reason": "ok"}`}
		cur := New(tmpl, eng, root, true)
		res := cur.Process(context.Background(), p)

		require.Equal(t, StatusOK, res.Status)
		assert.Equal(t, "aprendiendo-compiladores", res.Slug)

		reloaded, err := post.Load(p.Filename)
		require.NoError(t, err)
		assert.Equal(t, "Aprendiendo compiladores", reloaded.Meta.Title)
		assert.Equal(t, "Notas sobre compiladores.", reloaded.Meta.Summary)
		assert.Equal(t, []string{"go", "compiladores"}, reloaded.Meta.Tags)
		assert.Equal(t, "aprendiendo-compiladores", reloaded.Meta.Slug)
	})

	t.Run("caps the summary", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")

		long := strings.Repeat("á", 200)
		eng := &stubEngine{reply: `{"title": "T", "summary": "` + long + `", "tags": "go", "reason": "ok"}`}
		cur := New(tmpl, eng, root, false)
		res := cur.Process(context.Background(), p)

		require.Equal(t, StatusOK, res.Status)
		assert.Equal(t, 180, len([]rune(res.Summary)))
	})

	t.Run("rejects tag outside the vocabulary", func(t *testing.T) {
		root := t.TempDir()
		p := writePost(t, root, "20200501-123")

		eng := &stubEngine{reply: `{"title": "T", "summary": "S", "tags": "go, rust", "reason": "?"}`}
		cur := New(tmpl, eng, root, true)
		res := cur.Process(context.Background(), p)

		assert.Equal(t, StatusInvalid, res.Status)
		assert.Contains(t, res.Reason, "rust")
	})
}

func TestUsageAccumulation(t *testing.T) {
	root := t.TempDir()
	eng := &stubEngine{
		reply: `{"category": "otros", "reason": "ok"}`,
		usage: engine.Usage{Input: 10, Output: 2, Total: 12},
	}
	cur := New(categorizeTemplate(t), eng, root, false)

	cur.Process(context.Background(), writePost(t, root, "20200501-1"))
	p2 := writePost(t, root, "20200501-2")
	cur.Process(context.Background(), p2)

	assert.Equal(t, engine.Usage{Input: 20, Output: 4, Total: 24}, cur.Usage())
}

func TestSummaryCount(t *testing.T) {
	var s Summary
	s.Count(Result{Status: StatusOK}, true)
	s.Count(Result{Status: StatusOK}, false)
	s.Count(Result{Status: StatusInvalid}, true)
	s.Count(Result{Status: StatusError}, true)

	assert.Equal(t, 4, s.Processed)
	assert.Equal(t, 1, s.Applied)
	assert.Equal(t, 1, s.Invalid)
	assert.Equal(t, 1, s.Errors)
}
