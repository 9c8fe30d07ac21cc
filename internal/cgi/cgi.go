// Package cgi implements the CGI and NPH responder: interpreter
// selection by extension, RFC-3875 environment construction,
// child-process streaming, and response translation.
package cgi

import (
	"bufio"
	"context"
	"strings"

	"github.com/lunarcoffee/lucent/internal/dispatch"
	"github.com/lunarcoffee/lucent/internal/httperr"
	"github.com/lunarcoffee/lucent/internal/wire"
)

// Outcome is what a single CGI/NPH invocation produced: either a finished
// response, or a local-path Location redirect the caller must restart
// dispatch with.
type Outcome struct {
	Response *wire.Response
	Redirect string
}

// Invoke runs the script named by target against req and returns its
// outcome. executors maps a script's extension to its interpreter path.
func Invoke(ctx context.Context, req *wire.Request, target *dispatch.Target, executors map[string]string, fileRoot, serverName, serverPort string, authForwarded bool, remoteUser string) (*Outcome, error) {
	ext := extensionOf(target.FSPath)
	interpreter, ok := executors[ext]
	if !ok {
		return nil, httperr.New(500, "Internal Server Error")
	}

	env := buildEnv(req, Params{
		ScriptAbsPath: target.FSPath,
		ScriptName:    target.ScriptName,
		PathInfo:      target.PathInfo,
		FileRoot:      fileRoot,
		ServerName:    serverName,
		ServerPort:    serverPort,
		AuthForwarded: authForwarded,
		RemoteUser:    remoteUser,
	})

	timeoutCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	p, err := start(interpreter, target.FSPath, env)
	if err != nil {
		return nil, err
	}

	writeErrCh := make(chan error, 1)
	go func() { writeErrCh <- p.writeBody(req.Body) }()

	if target.Kind == dispatch.KindNPH {
		return invokeNPH(timeoutCtx, p, writeErrCh)
	}
	return invokeCGI(timeoutCtx, p, writeErrCh)
}

func invokeCGI(ctx context.Context, p *process, writeErrCh chan error) (*Outcome, error) {
	status, headers, parseErr := parseCGIOutput(p.stdout)
	waitErr := p.wait(ctx)
	<-writeErrCh

	if parseErr != nil {
		if waitErr != nil {
			return nil, httperr.New(502, "Bad Gateway")
		}
		return nil, parseErr
	}
	if ctx.Err() != nil {
		return nil, httperr.New(504, "Gateway Timeout")
	}

	if loc, ok := headers.Get("Location"); ok && isLocalPath(loc) {
		return &Outcome{Redirect: loc}, nil
	}

	body, _ := readAll(p.stdout)
	resp := wire.NewResponse(status, body)
	for _, h := range headers.List() {
		if strings.EqualFold(h.Name, "Content-Length") {
			// The codec derives the real length from the bytes actually
			// read; trusting the child's own header could desync framing.
			continue
		}
		if strings.EqualFold(h.Name, "Location") {
			resp.Status = statusOrDefault(status, 302)
		}
		resp.Headers.Add(h.Name, h.Value)
	}
	if len(body) > 0 && !resp.Headers.Has("Content-Type") {
		return nil, httperr.New(502, "Bad Gateway")
	}
	return &Outcome{Response: resp}, nil
}

func invokeNPH(ctx context.Context, p *process, writeErrCh chan error) (*Outcome, error) {
	status, reason, headers, parseErr := parseNPHOutput(p.stdout)
	waitErr := p.wait(ctx)
	<-writeErrCh

	if parseErr != nil {
		if waitErr != nil {
			return nil, httperr.New(502, "Bad Gateway")
		}
		return nil, parseErr
	}
	if ctx.Err() != nil {
		return nil, httperr.New(504, "Gateway Timeout")
	}

	body, _ := readAll(p.stdout)
	resp := wire.NewResponse(status, body)
	resp.Reason = reason
	resp.Headers = headers
	return &Outcome{Response: resp}, nil
}

func statusOrDefault(status, def int) int {
	if status == 200 {
		return def
	}
	return status
}

func isLocalPath(location string) bool {
	return strings.HasPrefix(location, "/") && !strings.HasPrefix(location, "//")
}

func extensionOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

func readAll(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	return buf, nil
}

// RedirectBudget bounds internal-redirect chains to a small constant so
// a script that keeps redirecting to itself can't loop forever.
const RedirectBudget = 4
