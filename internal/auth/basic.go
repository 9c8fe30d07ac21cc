// Package auth implements the HTTP Basic authentication gate: realm
// membership by the same matcher language the rewrite table uses,
// credential verification delegated to bcrypt as a black box.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lunarcoffee/lucent/internal/config"
)

// Gate holds the realms to check, in declaration order.
type Gate struct {
	Realms []*config.Realm
}

// NewGate builds a Gate from the loaded configuration's realm list.
func NewGate(realms []*config.Realm) *Gate {
	return &Gate{Realms: realms}
}

// Guard finds the realm that protects path: the first realm whose any
// matcher accepts the path guards the request. It returns nil if no
// realm matches, in which case the request proceeds unauthenticated.
func (g *Gate) Guard(path string) *config.Realm {
	for _, r := range g.Realms {
		if _, ok := r.Routes.AnyMatch(path); ok {
			return r
		}
	}
	return nil
}

// Result is the outcome of checking a request's Authorization header
// against a realm.
type Result int

const (
	// Unguarded means no realm protects the target; the caller should
	// proceed without consulting credentials at all.
	Unguarded Result = iota
	Authorized
	Challenge
)

// Check verifies headerValue (the raw Authorization header value, "" if
// absent) against realm. A nil realm always yields Unguarded. On
// Authorized, user is the verified username; it is empty otherwise.
func Check(realm *config.Realm, headerValue string) (result Result, user string) {
	if realm == nil {
		return Unguarded, ""
	}
	u, pass, ok := parseBasic(headerValue)
	if !ok {
		return Challenge, ""
	}
	for _, cred := range realm.Credentials {
		if !constantTimeEqual(cred.Username, u) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(pass)) == nil {
			return Authorized, u
		}
		return Challenge, ""
	}
	// Username not found: still perform a bcrypt comparison against a
	// fixed cost-equivalent hash so absence and a wrong password take
	// comparable time, then fail regardless of its (irrelevant) result.
	_ = bcrypt.CompareHashAndPassword([]byte(decoyHash), []byte(pass))
	return Challenge, ""
}

// decoyHash is a valid bcrypt hash of an unknown value, consulted only to
// keep the unknown-username path's timing close to the known-username
// path's.
const decoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		// Still run a comparison of equal length to avoid an early-exit
		// timing signal purely on length.
		subtle.ConstantTimeCompare([]byte(a), []byte(a))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// parseBasic decodes an "Authorization: Basic <base64>" value into its
// username and password. ok is false for anything else, including an
// absent header or a non-Basic scheme.
func parseBasic(headerValue string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(headerValue, prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(headerValue[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	i := strings.IndexByte(string(raw), ':')
	if i < 0 {
		return "", "", false
	}
	return string(raw[:i]), string(raw[i+1:]), true
}

// ChallengeHeader builds the WWW-Authenticate header value for realm.
func ChallengeHeader(realm *config.Realm) string {
	return fmt.Sprintf(`Basic realm="%s"`, realm.Name)
}
