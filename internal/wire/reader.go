package wire

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// readLine reads a single CRLF- or lone-LF-terminated line (the terminator
// stripped), enforcing maxLen bytes including the terminator. A bare LF is
// accepted leniently, matching clients and CGI scripts that omit the CR.
func readLine(br *bufio.Reader, maxLen int) (string, error) {
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > maxLen {
			return "", newParseError(400, "line too long")
		}
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return "", err
	}
	line = line[:len(line)-1] // drop '\n'
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}

// readHeaders reads field lines up to a blank line, rejecting obsolete line
// folding (a continuation line starting with SP/HT).
func readHeaders(br *bufio.Reader, requireHost bool) (Headers, error) {
	var h Headers
	total := 0
	sawHost := false
	for {
		line, err := readLine(br, MaxHeaderLineLength)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				return h, pe
			}
			return h, err
		}
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			return h, errFoldedHeader
		}
		total += len(line) + 2
		if total > MaxHeaderTotalLength {
			return h, errHeadersTooLarge
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return h, err
		}
		if strings.EqualFold(name, "host") {
			sawHost = true
		}
		h.Add(name, value)
	}
	if requireHost && !sawHost {
		return h, newParseError(400, "missing Host header")
	}
	return h, nil
}

func parseHeaderLine(line string) (name, value string, err error) {
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return "", "", errBadHeader
	}
	name = line[:i]
	value = strings.Trim(line[i+1:], " \t")
	if !isValidToken(name) {
		return "", "", errBadHeader
	}
	return name, value, nil
}

func isValidToken(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c <= 0x20 || c == 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={} \t", c) {
			return false
		}
	}
	return true
}

// ReadRequest reads and fully parses one HTTP request from br. maxBodyBytes
// bounds an identity-encoded body (0 means DefaultMaxBodyBytes); chunked
// bodies are not pre-bounded here since they are drained lazily by the
// caller, who can stop early.
func ReadRequest(br *bufio.Reader, remoteAddr string, maxBodyBytes int64) (*Request, error) {
	line, err := readLine(br, MaxRequestLineLength)
	if err != nil {
		if err == io.EOF || isTimeout(err) {
			return nil, err
		}
		return nil, errBadRequestLine
	}
	if line == "" {
		// Tolerate a leading blank line some clients send before a request.
		line, err = readLine(br, MaxRequestLineLength)
		if err != nil {
			if isTimeout(err) {
				return nil, err
			}
			return nil, errBadRequestLine
		}
	}
	method, target, version, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	headers, err := readHeaders(br, version.AtLeast11())
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:     knownMethods[method],
		RawMethod:  method,
		Target:     target,
		Version:    version,
		Headers:    headers,
		RemoteAddr: remoteAddr,
	}
	req.Path, req.Query = splitTarget(target)

	body, bodyLen, err := framedBody(br, &headers, maxBodyBytes)
	if err != nil {
		return nil, err
	}
	req.Body = body
	req.BodyLen = bodyLen
	return req, nil
}

func splitTarget(target string) (path, query string) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

func parseRequestLine(line string) (method, target string, version Version, err error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", Version{}, errBadRequestLine
	}
	method, target, versionStr := parts[0], parts[1], parts[2]
	if method == "" || target == "" {
		return "", "", Version{}, errBadRequestLine
	}
	version, ok := parseVersion(versionStr)
	if !ok {
		return "", "", Version{}, errBadRequestLine
	}
	if version.Major != 1 {
		return "", "", Version{}, errUnsupportedVersion
	}
	return method, target, version, nil
}

func parseVersion(s string) (Version, bool) {
	if !strings.HasPrefix(s, "HTTP/") || len(s) != len("HTTP/1.1") {
		return Version{}, false
	}
	major, err1 := strconv.Atoi(s[5:6])
	minor, err2 := strconv.Atoi(s[7:8])
	if s[6] != '.' || err1 != nil || err2 != nil {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor}, true
}

// framedBody determines and opens the request body reader, checking
// chunked Transfer-Encoding first, then Content-Length, then defaulting
// to an empty body.
func framedBody(br *bufio.Reader, headers *Headers, maxBodyBytes int64) (io.Reader, int64, error) {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	teValues := headers.Values("Transfer-Encoding")
	hasChunked := false
	for _, te := range teValues {
		for _, coding := range strings.Split(te, ",") {
			coding = strings.TrimSpace(coding)
			if !strings.EqualFold(coding, "chunked") && coding != "" {
				return nil, 0, errUnsupportedTE
			}
			if strings.EqualFold(coding, "chunked") {
				hasChunked = true
			}
		}
	}

	lengths := headers.Values("Content-Length")
	if hasChunked {
		if len(lengths) > 0 {
			return nil, 0, errLenAndChunked
		}
		return newChunkedReader(br), -1, nil
	}

	if len(lengths) == 0 {
		return emptyReader{}, 0, nil
	}
	for _, l := range lengths[1:] {
		if l != lengths[0] {
			return nil, 0, errConflictingLen
		}
	}
	n, err := strconv.ParseInt(lengths[0], 10, 64)
	if err != nil || n < 0 {
		return nil, 0, errBadContentLen
	}
	if n > maxBodyBytes {
		return nil, 0, newParseError(400, "body exceeds configured maximum")
	}
	return io.LimitReader(br, n), n, nil
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }
