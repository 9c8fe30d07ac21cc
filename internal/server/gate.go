// Package server implements the accept loop and per-connection request
// pipeline.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lunarcoffee/lucent/internal/auth"
	"github.com/lunarcoffee/lucent/internal/config"
	"github.com/lunarcoffee/lucent/internal/template"
	"github.com/lunarcoffee/lucent/internal/wire"
)

// Server owns the listener and the immutable, request-scoped
// collaborators every connection's pipeline consults.
type Server struct {
	cfg      *config.Config
	engine   template.Engine
	authGate *auth.Gate

	listener net.Listener
	sem      chan struct{}
	connID   atomic.Int64
	wg       sync.WaitGroup
}

// New builds a Server from a loaded configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:      cfg,
		engine:   template.NewHTMLEngine(cfg.TemplateRoot),
		authGate: auth.NewGate(cfg.Realms),
		sem:      make(chan struct{}, cfg.MaxConnections),
	}
}

// ListenAndServe binds the configured address, accepts connections until
// ctx is cancelled, and waits for in-flight connections to drain before
// returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	if s.cfg.TLS != nil {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLS.CertPath, s.cfg.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return err
		}
		ln = tls.NewListener(ln, &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		})
	}
	s.listener = ln

	slog.Info("listening", "address", s.cfg.Address, "tls", s.cfg.TLS != nil)

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}

	s.drain(ctx)
	return nil
}

// drain waits for in-flight connections to finish, but no longer than
// ShutdownGrace past the shutdown signal: a connection still open after
// the grace period is abandoned rather than blocking process exit.
func (s *Server) drain(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.ShutdownGrace):
		slog.Warn("shutdown grace period elapsed with connections still open")
	}
}

// handleConn enforces the concurrent-connection cap and runs the
// per-connection request loop. A connection accepted over the cap gets
// an immediate 503 response, then the connection is closed.
func (s *Server) handleConn(netConn net.Conn) {
	defer s.wg.Done()

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	default:
		s.rejectOverCapacity(netConn)
		return
	}

	id := s.connID.Add(1)
	c := wire.NewConn(netStream{netConn})
	c.MaxBodyBytes = s.cfg.MaxBodyBytes

	defer netConn.Close()
	s.serveConnection(id, c)
}

func (s *Server) rejectOverCapacity(netConn net.Conn) {
	defer netConn.Close()
	c := wire.NewConn(netStream{netConn})
	req, err := c.ReadRequest()
	if err != nil {
		return
	}
	resp := wire.NewResponse(503, []byte("Service Unavailable\n"))
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	_ = c.WriteResponse(req, resp)
}
