package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetraveling/pkg/models"
)

type textRenderer struct{}

func (textRenderer) RenderListing(w io.Writer, posts []models.PostSummary, nextCursor string) error {
	_, err := fmt.Fprintf(w, "listing %s next=%q", strings.Join(ids(posts), ","), nextCursor)
	return err
}

func (textRenderer) RenderPost(w io.Writer, page models.PostPageModel) error {
	_, err := fmt.Fprintf(w, "post %s %dmin", page.Post.ID, page.ReadingTime)
	return err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestExporterWritesEveryPost(t *testing.T) {
	out := t.TempDir()
	blog := NewBlog(newFakeSource(1, threePosts()...), BlogOptions{})

	report, err := NewExporter(blog, textRenderer{}, out, 2, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExportReport{Posts: 3}, report)

	assert.Equal(t, `listing first,second,third next=""`, readFile(t, filepath.Join(out, "index.html")))
	assert.Equal(t, "post second 2min", readFile(t, filepath.Join(out, "post", "second", "index.html")))
	assert.FileExists(t, filepath.Join(out, "post", "third", "index.html"))
}

func TestExporterSkipsUnsafeUIDs(t *testing.T) {
	out := t.TempDir()
	docs := append(threePosts(), rawPost("D4", "../escape", "Escape", epoch.Add(72*time.Hour), 1))
	blog := NewBlog(newFakeSource(10, docs...), BlogOptions{PageSize: 10})

	report, err := NewExporter(blog, textRenderer{}, out, 1, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Posts)
	assert.Equal(t, 1, report.Skipped)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(out), "escape", "index.html"))
}

func TestExporterFailsOnUpstreamError(t *testing.T) {
	src := newFakeSource(1, threePosts()...)
	src.setErr(errors.New("cms down"))
	blog := NewBlog(src, BlogOptions{})

	_, err := NewExporter(blog, textRenderer{}, t.TempDir(), 4, nil).Run(context.Background())
	var upstream *UpstreamFetchError
	assert.True(t, errors.As(err, &upstream))
}

func TestSafeJoin(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "post", "hello"), SafeJoin("out", "post", "hello"))
	assert.Equal(t, filepath.Join("out", "post", "a..b"), SafeJoin("out", "post", "a..b"))
	assert.Equal(t, "", SafeJoin("out", "post", "../etc"))
	assert.Equal(t, "", SafeJoin("out", "post", ".."))
	assert.Equal(t, "", SafeJoin("out", "post", "a/../../etc"))
	assert.Equal(t, "", SafeJoin("out", "post", "."))
	assert.Equal(t, "", SafeJoin("out", "post", ""))
	assert.Equal(t, "", SafeJoin("out", "post", "/etc/passwd"))
}
