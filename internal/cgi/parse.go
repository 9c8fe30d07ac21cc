package cgi

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/lunarcoffee/lucent/internal/httperr"
	"github.com/lunarcoffee/lucent/internal/wire"
)

// parseCGIOutput reads the script's response-header block from stdout,
// tolerating a bare LF line ending the way scripts that print() without
// a carriage return produce, and returns the status and headers, leaving
// r positioned at the body.
func parseCGIOutput(r *bufio.Reader) (status int, headers wire.Headers, err error) {
	status = 200
	headers = wire.Headers{}

	for {
		line, err := readCGILine(r)
		if err != nil {
			return 0, wire.Headers{}, httperr.Wrap(502, "Bad Gateway", err)
		}
		if line == "" {
			break
		}
		name, value, ok := splitHeaderLine(line)
		if !ok {
			return 0, wire.Headers{}, httperr.New(502, "Bad Gateway")
		}
		switch {
		case strings.EqualFold(name, "Status"):
			code, perr := parseStatusValue(value)
			if perr != nil {
				return 0, wire.Headers{}, httperr.Wrap(502, "Bad Gateway", perr)
			}
			status = code
		default:
			headers.Add(name, value)
		}
	}
	return status, headers, nil
}

// readCGILine reads one header line, accepting both CRLF and a bare LF
// terminator.
func readCGILine(r *bufio.Reader) (string, error) {
	raw, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(raw, "\r\n"), nil
}

func splitHeaderLine(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

func parseStatusValue(value string) (int, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, httperr.New(502, "Bad Gateway")
	}
	return strconv.Atoi(fields[0])
}

// parseNPHOutput reads a complete HTTP/1.x status line and header block
// the script is emitting verbatim.
func parseNPHOutput(r *bufio.Reader) (status int, reason string, headers wire.Headers, err error) {
	statusLine, err := readCGILine(r)
	if err != nil {
		return 0, "", wire.Headers{}, httperr.Wrap(502, "Bad Gateway", err)
	}
	parts := strings.SplitN(statusLine, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/1.") {
		return 0, "", wire.Headers{}, httperr.New(502, "Bad Gateway")
	}
	code, perr := strconv.Atoi(parts[1])
	if perr != nil {
		return 0, "", wire.Headers{}, httperr.Wrap(502, "Bad Gateway", perr)
	}
	if len(parts) == 3 {
		reason = parts[2]
	}

	headers = wire.Headers{}
	for {
		line, err := readCGILine(r)
		if err != nil {
			return 0, "", wire.Headers{}, httperr.Wrap(502, "Bad Gateway", err)
		}
		if line == "" {
			break
		}
		name, value, ok := splitHeaderLine(line)
		if !ok {
			return 0, "", wire.Headers{}, httperr.New(502, "Bad Gateway")
		}
		headers.Add(name, value)
	}
	return code, reason, headers, nil
}
