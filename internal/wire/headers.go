// Package wire implements the HTTP/1.1 wire codec: reading a request off a
// byte stream and writing a response back onto one, including chunked
// transfer encoding and the header representation shared by both.
package wire

import "strings"

// Header is a single (name, value) pair as it arrived on the wire. Name
// comparison elsewhere in this package is case-insensitive, but the
// original casing is preserved here for logging and for forwarding to CGI.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields. Arrival order is preserved;
// lookups are case-insensitive per RFC 7230 §3.2.
type Headers struct {
	list []Header
}

// Add appends a field without removing any existing field of the same name.
func (h *Headers) Add(name, value string) {
	h.list = append(h.list, Header{Name: name, Value: value})
}

// Set removes all existing fields with the given name and appends one field
// with the given value in their place, at the position of the first removed
// field (or at the end, if none existed).
func (h *Headers) Set(name, value string) {
	for i, f := range h.list {
		if strings.EqualFold(f.Name, name) {
			h.list[i] = Header{Name: name, Value: value}
			h.list = append(h.list[:i+1], removeFold(h.list[i+1:], name)...)
			return
		}
	}
	h.Add(name, value)
}

func removeFold(list []Header, name string) []Header {
	out := list[:0]
	for _, f := range list {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	return out
}

// Get returns the value of the first field matching name, case-insensitively.
func (h *Headers) Get(name string) (string, bool) {
	for _, f := range h.list {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns the values of every field matching name, in arrival order.
func (h *Headers) Values(name string) []string {
	var out []string
	for _, f := range h.list {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether any field matches name.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Del removes every field matching name.
func (h *Headers) Del(name string) {
	h.list = removeFold(h.list, name)
}

// List returns the underlying ordered field list. Callers must not mutate it.
func (h *Headers) List() []Header {
	return h.list
}

// Clone returns an independent copy of h.
func (h *Headers) Clone() Headers {
	out := Headers{list: make([]Header, len(h.list))}
	copy(out.list, h.list)
	return out
}

// hopByHop header names, excluded from CGI metavariable forwarding and never
// carried over a rewrite's replacement target.
var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

// IsHopByHop reports whether name is a hop-by-hop header per RFC 7230 §6.1.
func IsHopByHop(name string) bool {
	return hopByHop[strings.ToLower(name)]
}
