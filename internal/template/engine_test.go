package template

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLEngineRenderSubstitutesVars(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "error.html"), []byte("{{.status}}: {{.reason}}"), 0o644))

	engine := NewHTMLEngine(root)
	var buf bytes.Buffer
	err := engine.Render(&buf, "error.html", map[string]any{"status": 404, "reason": "Not Found"})
	assert.NoError(err)
	assert.Equal("404: Not Found", buf.String())
}

func TestHTMLEngineRenderCollectionMergesItems(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "listing.html"),
		[]byte("{{range .entries}}{{.name}},{{end}}"),
		0o644,
	))

	engine := NewHTMLEngine(root)
	items := []map[string]any{{"name": "a.txt"}, {"name": "b.txt"}}

	var buf bytes.Buffer
	err := engine.RenderCollection(&buf, "listing.html", map[string]any{}, "entries", items)
	assert.NoError(err)
	assert.Equal("a.txt,b.txt,", buf.String())
}

func TestHTMLEngineCachesParsedTemplate(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	path := filepath.Join(root, "error.html")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	engine := NewHTMLEngine(root)
	var buf1 bytes.Buffer
	assert.NoError(engine.Render(&buf1, "error.html", nil))
	assert.Equal("v1", buf1.String())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	var buf2 bytes.Buffer
	assert.NoError(engine.Render(&buf2, "error.html", nil))
	assert.Equal("v1", buf2.String())
}

func TestHTMLEngineRenderMissingTemplateErrors(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	engine := NewHTMLEngine(root)

	var buf bytes.Buffer
	err := engine.Render(&buf, "nope.html", nil)
	assert.Error(err)
}
