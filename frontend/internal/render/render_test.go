package render

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testFS(page string) fstest.MapFS {
	return fstest.MapFS{
		"base.html":     {Data: []byte(`<main>{{template "content" .}}</main>`)},
		"partials.html": {Data: []byte(`{{define "greeting"}}Hi {{.}}{{end}}`)},
		"page.html":     {Data: []byte(page)},
		"notes.txt":     {Data: []byte(`ignored`)},
	}
}

func TestRender(t *testing.T) {
	tmpls, err := Load(testFS(`{{define "content"}}{{template "greeting" .Name}} {{add 1 2}} {{year .Created}} {{shout .Name}}{{end}}`),
		template.FuncMap{"shout": func(s string) string { return s + "!" }})
	require.NoError(t, err)

	assert.True(t, tmpls.Has("page.html"))
	assert.False(t, tmpls.Has("base.html"), "the layout is not a page")
	assert.False(t, tmpls.Has("notes.txt"))

	out, err := tmpls.Render("page.html", map[string]any{"Name": "<Jane>", "Created": int64(1700000000000)})
	require.NoError(t, err)
	assert.Equal(t, "<main>Hi &lt;Jane&gt; 3 2023 &lt;Jane&gt;!</main>", out)

	_, err = tmpls.Render("missing.html", nil)
	assert.Error(t, err)
}

func TestRenderExecutionError(t *testing.T) {
	tmpls := MustLoad(testFS(`{{define "content"}}{{.Missing.Field}}{{end}}`), nil)

	_, err := tmpls.Render("page.html", struct{ Missing *struct{ Field string } }{})
	assert.Error(t, err)
}

func TestLoadParseError(t *testing.T) {
	_, err := Load(testFS(`{{define "content"}}{{end`), nil)
	assert.Error(t, err)
	assert.Panics(t, func() { MustLoad(testFS(`{{if}}`), nil) })
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}

func writeDir(t *testing.T, page string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range testFS(page) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data.Data, 0o644))
	}
	return dir
}

func writePage(t *testing.T, dir, page string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(page), 0o644))
}

func TestReloadKeepsOldSetOnError(t *testing.T) {
	dir := writeDir(t, `{{define "content"}}v1{{end}}`)
	tmpls := MustLoad(os.DirFS(dir), nil)

	writePage(t, dir, `{{define "content"}}v2{{end}}`)
	require.NoError(t, tmpls.Reload())
	out, _ := tmpls.Render("page.html", nil)
	assert.Equal(t, "<main>v2</main>", out)

	writePage(t, dir, `{{define "content"}}{{end`)
	assert.Error(t, tmpls.Reload())
	out, _ = tmpls.Render("page.html", nil)
	assert.Equal(t, "<main>v2</main>", out)
}

func TestStartReloader(t *testing.T) {
	dir := writeDir(t, `{{define "content"}}v1{{end}}`)
	tmpls := MustLoad(os.DirFS(dir), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tmpls.StartReloader(ctx, 5*time.Millisecond)
	writePage(t, dir, `{{define "content"}}v2{{end}}`)

	assert.Eventually(t, func() bool {
		out, _ := tmpls.Render("page.html", nil)
		return out == "<main>v2</main>"
	}, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
}
