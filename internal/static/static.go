// Package static implements the static-file responder: range-less
// delivery with Content-Type, Content-Length, and Last-Modified, with
// no directory-traversal or range-request support.
package static

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lunarcoffee/lucent/internal/httperr"
	"github.com/lunarcoffee/lucent/internal/wire"
)

// Serve builds the response for GET/HEAD of the regular file at fsPath.
// A file that vanished between the dispatcher's stat and this open
// surfaces as 404.
func Serve(fsPath string, method wire.Method) (*wire.Response, error) {
	f, err := os.Open(fsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, httperr.ErrNotFound
		}
		return nil, httperr.Wrap(500, "Internal Server Error", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, httperr.Wrap(500, "Internal Server Error", err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, httperr.ErrNotFound
	}

	resp := &wire.Response{
		Status:  200,
		Headers: wire.Headers{},
		BodyLen: fi.Size(),
	}
	resp.Headers.Set("Content-Type", MediaTypeByExt(strings.TrimPrefix(filepath.Ext(fsPath), ".")))
	resp.Headers.Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	resp.Headers.Set("Last-Modified", wire.FormatIMFFixdate(fi.ModTime().UTC()))

	if method == wire.MethodHead {
		f.Close()
		return resp, nil
	}
	resp.Body = f
	return resp, nil
}
