package config

import (
	"fmt"
	"strings"
)

// bcryptPrefixes are the bcrypt hash-identifier prefixes this server
// accepts.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// parseCredentials parses "username:bcrypt-hash" entries, the format a
// realm's credentials list uses.
func parseCredentials(entries []string) ([]Credential, error) {
	creds := make([]Credential, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		i := strings.IndexByte(entry, ':')
		if i < 0 {
			return nil, fmt.Errorf("credential %q is not in \"username:hash\" form", entry)
		}
		user, hash := entry[:i], entry[i+1:]
		if user == "" {
			return nil, fmt.Errorf("credential %q has an empty username", entry)
		}
		if !hasBcryptPrefix(hash) {
			return nil, fmt.Errorf("credential for %q does not look like a bcrypt hash", user)
		}
		if seen[user] {
			return nil, fmt.Errorf("duplicate username %q in realm", user)
		}
		seen[user] = true
		creds = append(creds, Credential{Username: user, PasswordHash: hash})
	}
	return creds, nil
}

func hasBcryptPrefix(hash string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(hash, p) {
			return true
		}
	}
	return false
}
