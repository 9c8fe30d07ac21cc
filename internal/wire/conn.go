package wire

import (
	"bufio"
	"io"
	"time"
)

// Stream is the bidirectional byte pipe the codec operates on. Both a plain
// net.Conn and a TLS-wrapped connection satisfy it identically, so no codec
// logic ever branches on whether TLS is in use.
type Stream interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddrString() string
}

// Conn wraps a Stream with buffered I/O and the request/response framing
// this package implements.
type Conn struct {
	stream Stream
	br     *bufio.Reader
	bw     *bufio.Writer

	MaxBodyBytes   int64
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// NewConn wraps stream with default timeouts; callers may override the
// exported fields before the first ReadRequest.
func NewConn(stream Stream) *Conn {
	return &Conn{
		stream:         stream,
		br:             bufio.NewReader(stream),
		bw:             bufio.NewWriter(stream),
		MaxBodyBytes:   DefaultMaxBodyBytes,
		IdleTimeout:    DefaultIdleTimeout,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// ReadRequest reads one request, applying the idle timeout while waiting
// for the first byte and the request timeout thereafter. It distinguishes
// "nothing arrived" (ErrIdleTimeout, close silently) from "a partial
// request arrived then stalled" (ErrRequestTimeout, answer 408 if possible).
func (c *Conn) ReadRequest() (*Request, error) {
	if err := c.stream.SetReadDeadline(time.Now().Add(c.IdleTimeout)); err != nil {
		return nil, err
	}
	if _, err := c.br.Peek(1); err != nil {
		if isTimeout(err) {
			return nil, ErrIdleTimeout
		}
		return nil, err
	}
	if err := c.stream.SetReadDeadline(time.Now().Add(c.RequestTimeout)); err != nil {
		return nil, err
	}
	req, err := ReadRequest(c.br, c.stream.RemoteAddrString(), c.MaxBodyBytes)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrRequestTimeout
		}
		return nil, err
	}
	return req, nil
}

// WriteResponse writes resp, applying the write deadline implied by
// RequestTimeout's sibling on the write side.
func (c *Conn) WriteResponse(req *Request, resp *Response) error {
	if err := c.stream.SetWriteDeadline(time.Now().Add(2 * c.RequestTimeout)); err != nil {
		return err
	}
	if err := WriteResponse(c.bw, req, resp); err != nil {
		return err
	}
	return c.bw.Flush()
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	t, ok := err.(timeout)
	return ok && t.Timeout()
}
