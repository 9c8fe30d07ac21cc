package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunarcoffee/lucent/internal/httperr"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolvePlainFile(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "hi")

	target, err := Resolve(root, "/index.html", false)
	assert.NoError(err)
	assert.Equal(KindFile, target.Kind)
}

func TestResolveDirectoryRequiresListingEnabled(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	_, err := Resolve(root, "/sub", false)
	assert.ErrorIs(err, httperr.ErrNotFound)

	target, err := Resolve(root, "/sub", true)
	assert.NoError(err)
	assert.Equal(KindDirectory, target.Kind)
}

func TestResolveMissingPathReturnsNotFound(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()

	_, err := Resolve(root, "/nope.html", false)
	assert.ErrorIs(err, httperr.ErrNotFound)
}

func TestResolveCGIScriptExactPath(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report_cgi.py"), "#!/usr/bin/env python3\n")

	target, err := Resolve(root, "/report_cgi.py", false)
	assert.NoError(err)
	assert.Equal(KindCGI, target.Kind)
	assert.Equal("/report_cgi.py", target.ScriptName)
	assert.Equal("", target.PathInfo)
}

func TestResolveCGIScriptWithPathInfo(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report_cgi.py"), "#!/usr/bin/env python3\n")

	target, err := Resolve(root, "/report_cgi.py/extra/path", false)
	assert.NoError(err)
	assert.Equal(KindCGI, target.Kind)
	assert.Equal("/report_cgi.py", target.ScriptName)
	assert.Equal("/extra/path", target.PathInfo)
}

func TestResolveNPHStem(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stream_nph_cgi.py"), "#!/usr/bin/env python3\n")

	target, err := Resolve(root, "/stream_nph_cgi.py", false)
	assert.NoError(err)
	assert.Equal(KindNPH, target.Kind)
}

func TestResolveNonScriptWithExtraSegmentsNotFound(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "plain.txt"), "hello")

	_, err := Resolve(root, "/plain.txt/extra", false)
	assert.ErrorIs(err, httperr.ErrNotFound)
}

func TestResolveRejectsEscapeViaSymlink(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.txt"), "top secret")

	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")))

	_, err := Resolve(root, "/link.txt", false)
	assert.ErrorIs(err, httperr.ErrForbidden)
}
