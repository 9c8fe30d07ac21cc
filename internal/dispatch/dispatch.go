// Package dispatch classifies a post-rewrite request path into the
// filesystem target that should answer it.
package dispatch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lunarcoffee/lucent/internal/httperr"
)

// Kind is which responder answers a dispatched request.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindCGI
	KindNPH
)

// Target is the outcome of resolving a URL path against file_root.
type Target struct {
	Kind Kind

	// FSPath is the absolute, symlink-resolved filesystem path of the
	// file or directory that answers the request.
	FSPath string

	// ScriptName and PathInfo are only meaningful for KindCGI/KindNPH:
	// ScriptName is the URL path segment identifying the script,
	// PathInfo is whatever followed it, "" if nothing did.
	ScriptName string
	PathInfo   string
}

// Resolve maps urlPath (the post-rewrite request path, no query string)
// to a Target under fileRoot. dirListingEnabled controls whether a
// directory hit is reported at all, since a disabled listing responder
// means a directory is indistinguishable from "not found".
func Resolve(fileRoot, urlPath string, dirListingEnabled bool) (*Target, error) {
	segments := splitSegments(urlPath)
	full := filepath.Join(fileRoot, filepath.FromSlash("/"+strings.Join(segments, "/")))

	if fi, err := os.Lstat(full); err == nil {
		resolved, err := resolveWithinRoot(fileRoot, full)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			if !dirListingEnabled {
				return nil, httperr.ErrNotFound
			}
			return &Target{Kind: KindDirectory, FSPath: resolved}, nil
		}
		return classifyFile(resolved, "/"+strings.Join(segments, "/"), "")
	} else if !os.IsNotExist(err) && !errors.Is(err, syscall.ENOTDIR) {
		return nil, httperr.Wrap(500, "Internal Server Error", err)
	}

	// The exact path doesn't exist: walk back through its ancestors
	// looking for a CGI script that claims the remainder as PATH_INFO.
	for i := len(segments) - 1; i >= 1; i-- {
		candidate := filepath.Join(fileRoot, filepath.FromSlash("/"+strings.Join(segments[:i], "/")))
		fi, err := os.Lstat(candidate)
		if err != nil {
			continue
		}
		if fi.IsDir() {
			continue
		}
		if !isCGIStem(candidate) {
			continue
		}
		resolved, err := resolveWithinRoot(fileRoot, candidate)
		if err != nil {
			continue
		}
		scriptName := "/" + strings.Join(segments[:i], "/")
		pathInfo := "/" + strings.Join(segments[i:], "/")
		return classifyFile(resolved, scriptName, pathInfo)
	}

	return nil, httperr.ErrNotFound
}

func classifyFile(resolved, scriptName, pathInfo string) (*Target, error) {
	switch {
	case strings.HasSuffix(stem(resolved), "_nph_cgi"):
		return &Target{Kind: KindNPH, FSPath: resolved, ScriptName: scriptName, PathInfo: pathInfo}, nil
	case strings.HasSuffix(stem(resolved), "_cgi"):
		return &Target{Kind: KindCGI, FSPath: resolved, ScriptName: scriptName, PathInfo: pathInfo}, nil
	case pathInfo != "":
		// A non-script file can't accept PATH_INFO.
		return nil, httperr.ErrNotFound
	default:
		return &Target{Kind: KindFile, FSPath: resolved, ScriptName: scriptName}, nil
	}
}

// stem is the file name with its final extension removed.
func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

func isCGIStem(path string) bool {
	s := stem(path)
	return strings.HasSuffix(s, "_cgi") || strings.HasSuffix(s, "_nph_cgi")
}

func splitSegments(urlPath string) []string {
	clean := filepath.ToSlash(filepath.Clean("/" + urlPath))
	parts := strings.Split(clean, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveWithinRoot resolves symlinks in full and verifies the result is
// a descendant of (or equal to) root, enforcing the invariant that served
// paths stay inside file_root after symlink resolution.
func resolveWithinRoot(root, full string) (string, error) {
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", httperr.ErrNotFound
		}
		return "", httperr.Wrap(500, "Internal Server Error", err)
	}
	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", httperr.Wrap(500, "Internal Server Error", err)
	}
	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", httperr.ErrForbidden
	}
	return resolved, nil
}
