package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.txt"))
	assert.True(t, Supported("b.MD"))
	assert.True(t, Supported("c.pdf"))
	assert.False(t, Supported("d.epub"))
	assert.False(t, Supported("noext"))
}

func TestForFile(t *testing.T) {
	p, err := ForFile("book.txt")
	require.NoError(t, err)
	assert.Equal(t, "text", p.Name())

	p, err = ForFile("book.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", p.Name())

	_, err = ForFile("book.epub")
	assert.Error(t, err)
}

func TestDirProvider_Documents(t *testing.T) {
	t.Run("reads supported files in order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.txt"), "Second file.\n")
		writeFile(t, filepath.Join(dir, "a.txt"), "CHAPTER 1\n\nFirst file.\n\nCHAPTER 2\n\nStill first.\n")
		writeFile(t, filepath.Join(dir, "nested", "c.md"), "Third file.\n")
		writeFile(t, filepath.Join(dir, "skip.epub"), "Ignored.\n")
		writeFile(t, filepath.Join(dir, ".hidden", "d.txt"), "Hidden.\n")

		p := NewDirProvider(dir, 2)
		assert.Equal(t, "dir", p.Name())

		docs, err := Collect(context.Background(), p)
		require.NoError(t, err)
		require.Len(t, docs, 4)

		var texts []string
		for _, d := range docs {
			texts = append(texts, d.Paragraphs[0][0])
		}
		assert.Equal(t, []string{"First file.", "Still first.", "Second file.", "Third file."}, texts)
	})

	t.Run("skips unreadable file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "good.txt"), "Fine.\n")
		writeFile(t, filepath.Join(dir, "broken.pdf"), "not a pdf")

		docs, err := Collect(context.Background(), NewDirProvider(dir, 0))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "good", docs[0].Title)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Collect(context.Background(), NewDirProvider(filepath.Join(t.TempDir(), "nope"), 1))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("callback error stops", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "One.\n")
		writeFile(t, filepath.Join(dir, "b.txt"), "Two.\n")

		stop := errors.New("stop")
		calls := 0
		err := NewDirProvider(dir, 1).Documents(context.Background(), func(Document) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})
}

func TestDirProvider_Files(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z.txt"), "z")
	writeFile(t, filepath.Join(dir, "a.pdf"), "a")
	writeFile(t, filepath.Join(dir, "m.jpg"), "m")

	files, err := NewDirProvider(dir, 1).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "z.txt")}, files)
}

func TestPDFProvider_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	writeFile(t, path, "plain text pretending to be a pdf")

	p := NewPDFProvider(path)
	assert.Equal(t, "pdf", p.Name())

	_, err := Collect(context.Background(), p)
	assert.Error(t, err)
}
