package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/lunarcoffee/lucent/internal/auth"
	"github.com/lunarcoffee/lucent/internal/cgi"
	"github.com/lunarcoffee/lucent/internal/dispatch"
	"github.com/lunarcoffee/lucent/internal/httperr"
	"github.com/lunarcoffee/lucent/internal/listing"
	"github.com/lunarcoffee/lucent/internal/route"
	"github.com/lunarcoffee/lucent/internal/static"
	"github.com/lunarcoffee/lucent/internal/wire"
)

// serveConnection runs the sequential request/response loop for one
// connection: no pipelining, the next request is read only after the
// previous response is fully flushed.
func (s *Server) serveConnection(id int64, c *wire.Conn) {
	for {
		req, err := c.ReadRequest()
		if err != nil {
			s.handleReadError(id, c, err)
			return
		}

		resp := s.handleRequest(req)
		_ = req.Close()

		keepAlive := wire.DecideKeepAlive(req, resp)
		if !keepAlive {
			resp.Headers.Set("Connection", "close")
		}

		if err := c.WriteResponse(req, resp); err != nil {
			slog.Debug("write response failed", "conn", id, "error", err)
			return
		}
		if closer, ok := resp.Body.(io.Closer); ok {
			closer.Close()
		}
		if !keepAlive {
			return
		}
	}
}

// fallbackRequest stands in for a request the codec never finished
// parsing, just enough for WriteResponse's HEAD/keep-alive bookkeeping
// when a connection-closing error response must still be sent.
func fallbackRequest() *wire.Request {
	return &wire.Request{Method: wire.MethodGet, Version: wire.Version{Major: 1, Minor: 1}, Headers: wire.Headers{}}
}

func (s *Server) handleReadError(id int64, c *wire.Conn, err error) {
	if errors.Is(err, wire.ErrIdleTimeout) {
		return
	}
	var perr *wire.ParseError
	if errors.As(err, &perr) {
		resp := s.errorResponse(perr.Status, perr.Reason)
		resp.Headers.Set("Connection", "close")
		_ = c.WriteResponse(fallbackRequest(), resp)
		return
	}
	if errors.Is(err, wire.ErrRequestTimeout) {
		resp := s.errorResponse(408, "Request Timeout")
		resp.Headers.Set("Connection", "close")
		_ = c.WriteResponse(fallbackRequest(), resp)
	}
}

// handleRequest runs the full pipeline for one already-parsed request:
// rewrite, authorize, dispatch, respond. A CGI internal-redirect restarts
// the dispatch/authorize/respond sequence from the new path, bounded by
// cgi.RedirectBudget.
func (s *Server) handleRequest(req *wire.Request) *wire.Response {
	if req.Method == wire.MethodUnknown {
		return s.errorResponse(httperr.ErrNotImplemented.Status, httperr.ErrNotImplemented.Reason)
	}

	path, query, _ := s.cfg.Routes.Rewrite(req.Path)
	if query != "" {
		req.Query = query
	}

	for redirects := 0; ; redirects++ {
		resp, outcome, err := s.respond(req, path)
		if err != nil {
			var herr *httperr.Error
			if errors.As(err, &herr) {
				return s.errorResponse(herr.Status, herr.Reason)
			}
			return s.errorResponse(500, "Internal Server Error")
		}
		if outcome != nil && outcome.Redirect != "" {
			if redirects >= cgi.RedirectBudget {
				return s.errorResponse(500, "Internal Server Error")
			}
			path, query = route.SplitPathQuery(outcome.Redirect)
			if query != "" {
				req.Query = query
			}
			continue
		}
		return resp
	}
}

// respond authorizes path and dispatches to the matching responder.
func (s *Server) respond(req *wire.Request, path string) (*wire.Response, *cgi.Outcome, error) {
	realm := s.authGate.Guard(path)
	authHeader, _ := req.Headers.Get("Authorization")
	result, remoteUser := auth.Check(realm, authHeader)
	switch result {
	case auth.Challenge:
		resp := s.errorResponse(401, "Unauthorized")
		resp.Headers.Set("WWW-Authenticate", auth.ChallengeHeader(realm))
		return resp, nil, nil
	case auth.Unguarded, auth.Authorized:
	}
	authForwarded := realm != nil

	target, err := dispatch.Resolve(s.cfg.FileRoot, path, s.cfg.DirListing.Enabled)
	if err != nil {
		return nil, nil, err
	}

	switch target.Kind {
	case dispatch.KindFile:
		resp, err := static.Serve(target.FSPath, req.Method)
		return resp, nil, err
	case dispatch.KindDirectory:
		resp, err := listing.Serve(s.engine, s.cfg.DirListing, target.FSPath, path)
		return resp, nil, err
	case dispatch.KindCGI, dispatch.KindNPH:
		host, port := s.hostPort()
		outcome, err := cgi.Invoke(context.Background(), req, target, s.cfg.CGIExecutors, s.cfg.FileRoot, host, port, authForwarded, remoteUser)
		if err != nil {
			return nil, nil, err
		}
		return outcome.Response, outcome, nil
	default:
		return nil, nil, httperr.ErrNotFound
	}
}

func (s *Server) hostPort() (string, string) {
	host, port, err := net.SplitHostPort(s.cfg.Address)
	if err != nil {
		return s.cfg.Address, ""
	}
	return host, port
}

// errorResponse renders the error.html template with status/reason
// variables, falling back to a hard-coded minimal response if rendering
// fails.
func (s *Server) errorResponse(status int, reason string) *wire.Response {
	var buf bytes.Buffer
	err := s.engine.Render(&buf, "error.html", map[string]any{
		"status": status,
		"reason": reason,
	})
	if err != nil {
		resp := wire.NewResponse(status, []byte(wire.StatusText(status)+"\n"))
		resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")
		return resp
	}
	resp := wire.NewResponse(status, buf.Bytes())
	resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	return resp
}
