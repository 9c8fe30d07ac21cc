package cgi

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lunarcoffee/lucent/internal/wire"
)

const (
	gatewayInterface = "CGI/1.1"
	serverProtocol   = "HTTP/1.1"
)

// Params are the dispatch-resolved facts buildEnv needs to build a CGI
// environment, independent of the request and response codec types.
type Params struct {
	ScriptAbsPath string
	ScriptName    string
	PathInfo      string
	FileRoot      string
	ServerName    string
	ServerPort    string
	AuthForwarded bool
	RemoteUser    string
}

// buildEnv constructs the RFC-3875 metavariable set plus the HTTP_*
// passthrough convention common to CGI gateways.
func buildEnv(req *wire.Request, p Params) []string {
	env := []string{
		"GATEWAY_INTERFACE=" + gatewayInterface,
		"SERVER_PROTOCOL=" + serverProtocol,
		"SERVER_SOFTWARE=" + wire.ServerName,
		"SERVER_NAME=" + p.ServerName,
		"SERVER_PORT=" + p.ServerPort,
		"REQUEST_METHOD=" + req.RawMethod,
		"PATH_INFO=" + p.PathInfo,
		"PATH_TRANSLATED=" + pathTranslated(p),
		"SCRIPT_NAME=" + p.ScriptName,
		"SCRIPT_FILENAME=" + p.ScriptAbsPath,
		"QUERY_STRING=" + req.Query,
		"REMOTE_ADDR=" + remoteHost(req.RemoteAddr),
		"REMOTE_HOST=" + remoteHost(req.RemoteAddr),
		"REMOTE_IDENT=",
	}
	if p.RemoteUser != "" {
		env = append(env, "AUTH_TYPE=Basic", "REMOTE_USER="+p.RemoteUser)
	}

	if ct, ok := req.Headers.Get("Content-Type"); ok {
		env = append(env, "CONTENT_TYPE="+ct)
	}
	if req.BodyLen > 0 {
		env = append(env, "CONTENT_LENGTH="+strconv.FormatInt(req.BodyLen, 10))
	}

	for _, h := range req.Headers.List() {
		if wire.IsHopByHop(h.Name) {
			continue
		}
		if strings.EqualFold(h.Name, "Authorization") && !p.AuthForwarded {
			continue
		}
		if strings.EqualFold(h.Name, "Content-Type") || strings.EqualFold(h.Name, "Content-Length") {
			continue
		}
		env = append(env, "HTTP_"+metaName(h.Name)+"="+h.Value)
	}

	return env
}

// metaName upper-snake-cases an HTTP field name: "-" becomes "_" and
// letters are upper-cased.
func metaName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, c := range name {
		if c == '-' {
			sb.WriteByte('_')
		} else {
			sb.WriteRune(toUpper(c))
		}
	}
	return sb.String()
}

func toUpper(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func remoteHost(remoteAddr string) string {
	if i := strings.LastIndexByte(remoteAddr, ':'); i >= 0 {
		return remoteAddr[:i]
	}
	return remoteAddr
}

func pathTranslated(p Params) string {
	if p.PathInfo == "" {
		return ""
	}
	return filepath.Join(p.FileRoot, filepath.FromSlash(p.PathInfo))
}
