package post

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `---
title: Hola mundo
date: 2020-05-01T10:00:00-05:00
tags:
  - tuits
draft: true
---
Cuerpo del post.
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	t.Run("standalone file", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "20200501-123.md")
		writeFile(t, filename, sample)

		p, err := Load(filename)
		require.NoError(t, err)

		assert.Equal(t, "20200501-123", p.ID)
		assert.False(t, p.Bundle)
		assert.Equal(t, filename, p.Path)
		assert.Equal(t, "Hola mundo", p.Meta.Title)
		assert.Equal(t, []string{"tuits"}, p.Meta.Tags)
		assert.True(t, p.Meta.Draft)
		assert.Equal(t, "Cuerpo del post.\n", p.Body)
	})

	t.Run("bundle directory", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "20200501-456", "index.md")
		writeFile(t, filename, sample)

		p, err := Load(filename)
		require.NoError(t, err)

		assert.Equal(t, "20200501-456", p.ID)
		assert.True(t, p.Bundle)
		assert.Equal(t, filepath.Join(dir, "20200501-456"), p.Path)
	})

	t.Run("missing front matter", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "bad.md")
		writeFile(t, filename, "just a body, no metadata\n")

		_, err := Load(filename)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "20200501-123.md")
	writeFile(t, filename, sample)

	p, err := Load(filename)
	require.NoError(t, err)

	p.Meta.Categories = []string{"tecnología"}
	p.Meta.Summary = "Un resumen"
	require.NoError(t, p.Save())

	reloaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "tecnología", reloaded.Category())
	assert.Equal(t, "Un resumen", reloaded.Meta.Summary)
	assert.Equal(t, "Hola mundo", reloaded.Meta.Title)
	assert.Equal(t, p.Body, reloaded.Body)
}

func TestSaveKeepsUnknownFrontMatter(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "20200501-123.md")
	writeFile(t, filename, `---
title: Hola mundo
lastmod: "2024-01-01"
description: escrito a mano
weight: 10
---
Cuerpo del post.
`)

	p, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "escrito a mano", p.Extra["description"])

	p.Meta.Categories = []string{"cultura"}
	require.NoError(t, p.Save())

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(content), `lastmod: "2024-01-01"`)
	assert.Contains(t, string(content), "description: escrito a mano")
	assert.Contains(t, string(content), "weight: 10")

	reloaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "cultura", reloaded.Category())
	assert.Equal(t, p.Extra, reloaded.Extra)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "20200501-1.md"), sample)
	writeFile(t, filepath.Join(dir, "20200502-2", "index.md"), sample)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a post")
	writeFile(t, filepath.Join(dir, "empty-dir", "readme.txt"), "no index here")

	posts, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Directory order is preserved for reproducible batches.
	assert.Equal(t, "20200501-1", posts[0].ID)
	assert.Equal(t, "20200502-2", posts[1].ID)
}

func TestLoadDirSingleFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "20200501-1.md")
	writeFile(t, filename, sample)

	posts, err := LoadDir(filename)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "20200501-1", posts[0].ID)
}

func TestMove(t *testing.T) {
	t.Run("standalone file", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "20200501-1.md")
		writeFile(t, filename, sample)

		p, err := Load(filename)
		require.NoError(t, err)

		require.NoError(t, p.Move(filepath.Join(dir, "tecnología")))

		assert.FileExists(t, filepath.Join(dir, "tecnología", "20200501-1.md"))
		assert.NoFileExists(t, filename)

		// Identity is stable across the move.
		moved, err := Load(p.Filename)
		require.NoError(t, err)
		assert.Equal(t, "20200501-1", moved.ID)
	})

	t.Run("bundle directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "20200501-2", "index.md"), sample)
		writeFile(t, filepath.Join(dir, "20200501-2", "1.jpg"), "media")

		p, err := Load(filepath.Join(dir, "20200501-2", "index.md"))
		require.NoError(t, err)

		require.NoError(t, p.Move(filepath.Join(dir, "cultura")))

		assert.FileExists(t, filepath.Join(dir, "cultura", "20200501-2", "index.md"))
		assert.FileExists(t, filepath.Join(dir, "cultura", "20200501-2", "1.jpg"))
		assert.Equal(t, "20200501-2", p.ID)
	})
}
