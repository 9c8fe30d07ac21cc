package listing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunarcoffee/lucent/internal/config"
)

// recordingEngine captures the vars/items RenderCollection was called with,
// instead of rendering through html/template, so assertions can inspect the
// row data directly.
type recordingEngine struct {
	vars  map[string]any
	items []map[string]any
}

func (e *recordingEngine) Render(w io.Writer, name string, vars map[string]any) error {
	e.vars = vars
	_, err := io.WriteString(w, "rendered")
	return err
}

func (e *recordingEngine) RenderCollection(w io.Writer, name string, vars map[string]any, collectionKey string, items []map[string]any) error {
	e.vars = vars
	e.items = items
	_, err := io.WriteString(w, "rendered")
	return err
}

func writeDirFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestServeRequiresViewableUnlessAllViewable(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeDirFile(t, dir, "a.txt", "hi")

	engine := &recordingEngine{}
	_, err := Serve(engine, config.DirListingPolicy{Enabled: true}, dir, "/files")
	assert.Error(err)

	_, err = Serve(engine, config.DirListingPolicy{Enabled: true, AllViewable: true}, dir, "/files")
	assert.NoError(err)
}

func TestServeExposesViewableMessage(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeDirFile(t, dir, ".viewable", "  browse freely  ")
	writeDirFile(t, dir, "a.txt", "hi")

	engine := &recordingEngine{}
	_, err := Serve(engine, config.DirListingPolicy{Enabled: true}, dir, "/files")
	assert.NoError(err)
	assert.Equal("browse freely", engine.vars["message"])
}

func TestServeHidesDotfilesUnlessShowHidden(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeDirFile(t, dir, ".viewable", "")
	writeDirFile(t, dir, ".hidden", "secret")
	writeDirFile(t, dir, "visible.txt", "hi")

	engine := &recordingEngine{}
	_, err := Serve(engine, config.DirListingPolicy{Enabled: true}, dir, "/files")
	assert.NoError(err)
	assert.Len(engine.items, 1)
	assert.Equal("visible.txt", engine.items[0]["name"])

	engine2 := &recordingEngine{}
	_, err = Serve(engine2, config.DirListingPolicy{Enabled: true, ShowHidden: true}, dir, "/files")
	assert.NoError(err)
	assert.Len(engine2.items, 2)
}

func TestServeSortsDirectoriesBeforeFilesThenByName(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeDirFile(t, dir, ".viewable", "")
	writeDirFile(t, dir, "b.txt", "hi")
	writeDirFile(t, dir, "a.txt", "hi")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "zzz_dir"), 0o755))

	engine := &recordingEngine{}
	_, err := Serve(engine, config.DirListingPolicy{Enabled: true}, dir, "/files")
	assert.NoError(err)
	assert.Len(engine.items, 3)
	assert.Equal("zzz_dir", engine.items[0]["name"])
	assert.True(engine.items[0]["is_dir"].(bool))
	assert.Equal("a.txt", engine.items[1]["name"])
	assert.Equal("b.txt", engine.items[2]["name"])
}

func TestServeRowPathJoinsURLPath(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeDirFile(t, dir, ".viewable", "")
	writeDirFile(t, dir, "a.txt", "hi")

	engine := &recordingEngine{}
	_, err := Serve(engine, config.DirListingPolicy{Enabled: true}, dir, "/files")
	assert.NoError(err)
	assert.Equal("/files/a.txt", engine.items[0]["path"])
}

func TestServePropagatesRenderError(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeDirFile(t, dir, ".viewable", "")

	_, err := Serve(failingEngine{}, config.DirListingPolicy{Enabled: true}, dir, "/files")
	assert.Error(err)
}

type failingEngine struct{}

func (failingEngine) Render(w io.Writer, name string, vars map[string]any) error {
	return fmt.Errorf("boom")
}

func (failingEngine) RenderCollection(w io.Writer, name string, vars map[string]any, collectionKey string, items []map[string]any) error {
	return fmt.Errorf("boom")
}
