// Package listing implements the directory-listing responder: enumerate
// a directory subject to a visibility policy and render it through the
// template engine.
package listing

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/lunarcoffee/lucent/internal/config"
	"github.com/lunarcoffee/lucent/internal/httperr"
	"github.com/lunarcoffee/lucent/internal/template"
	"github.com/lunarcoffee/lucent/internal/wire"
)

const viewableFile = ".viewable"
const listingTemplate = "listing.html"

// Serve renders a listing of dirPath for urlPath, enforcing policy.
func Serve(engine template.Engine, policy config.DirListingPolicy, dirPath, urlPath string) (*wire.Response, error) {
	message, hasViewable, err := readViewable(dirPath)
	if err != nil {
		return nil, httperr.Wrap(500, "Internal Server Error", err)
	}
	if !policy.AllViewable && !hasViewable {
		return nil, httperr.ErrForbidden
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, httperr.Wrap(500, "Internal Server Error", err)
	}

	rows := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == viewableFile {
			continue
		}
		if strings.HasPrefix(name, ".") && !policy.ShowHidden {
			continue
		}
		row, ok := buildRow(dirPath, urlPath, entry, policy)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i]["is_dir"].(bool), rows[j]["is_dir"].(bool)
		if di != dj {
			return di
		}
		return strings.ToLower(rows[i]["name"].(string)) < strings.ToLower(rows[j]["name"].(string))
	})

	vars := map[string]any{
		"path":    urlPath,
		"message": message,
	}

	var buf strings.Builder
	if err := engine.RenderCollection(&buf, listingTemplate, vars, "entries", rows); err != nil {
		return nil, httperr.Wrap(500, "Internal Server Error", err)
	}

	body := []byte(buf.String())
	resp := wire.NewResponse(200, body)
	resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	return resp, nil
}

func buildRow(dirPath, urlPath string, entry os.DirEntry, policy config.DirListingPolicy) (map[string]any, bool) {
	name := entry.Name()
	info, err := entry.Info()
	if err != nil {
		return nil, false
	}

	isDir := info.IsDir()
	isSymlink := info.Mode()&os.ModeSymlink != 0
	var target string
	if isSymlink {
		if !policy.ShowSymlinks {
			// Render as if the link's target type: re-stat through the
			// link to learn whether it points at a file or directory.
			if targetInfo, err := os.Stat(filepath.Join(dirPath, name)); err == nil {
				isDir = targetInfo.IsDir()
			}
		} else {
			if resolved, err := os.Readlink(filepath.Join(dirPath, name)); err == nil {
				if _, err := os.Stat(filepath.Join(dirPath, name)); err == nil {
					target = resolved
				}
			}
			// A broken link resolves target to "" above, which the
			// template renders as an absent target.
		}
	}

	size := ""
	if !isDir {
		size = humanize.Bytes(uint64(info.Size()))
	}

	return map[string]any{
		"name":          name,
		"path":          path.Join(urlPath, name),
		"is_dir":        isDir,
		"is_symlink":    isSymlink,
		"target":        target,
		"last_modified": wire.FormatIMFFixdate(info.ModTime().UTC()),
		"size":          size,
	}, true
}

// readViewable reports whether dirPath contains a .viewable file and, if
// so, its contents as the listing's optional message.
func readViewable(dirPath string) (message string, exists bool, err error) {
	data, err := os.ReadFile(filepath.Join(dirPath, viewableFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(data)), true, nil
}
