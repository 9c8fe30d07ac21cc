package server

import "net"

// netStream adapts a net.Conn (including a *tls.Conn, which satisfies
// net.Conn) to wire.Stream. net.Conn alone lacks a RemoteAddrString
// method, which is why this thin wrapper exists rather than using
// net.Conn directly as the wire package's Stream.
type netStream struct {
	net.Conn
}

func (s netStream) RemoteAddrString() string {
	return s.Conn.RemoteAddr().String()
}
