// Package config loads and validates the declarative YAML configuration
// file, producing the immutable Configuration value the rest of the
// server is built around.
package config

import (
	"time"

	"github.com/lunarcoffee/lucent/internal/route"
)

// DirListingPolicy controls the directory-listing responder.
type DirListingPolicy struct {
	Enabled      bool
	AllViewable  bool
	ShowSymlinks bool
	ShowHidden   bool
}

// Credential is one (username, bcrypt hash) pair within a realm.
type Credential struct {
	Username     string
	PasswordHash string
}

// Realm is a named Basic-auth credential set plus the routes it guards.
type Realm struct {
	Name        string
	Credentials []Credential
	Routes      *route.MatcherList
}

// TLS holds the optional PEM certificate chain and private key paths.
type TLS struct {
	CertPath string
	KeyPath  string
}

// Config is the process-wide, immutable-after-load configuration.
type Config struct {
	Address      string
	FileRoot     string
	TemplateRoot string
	DirListing   DirListingPolicy
	Routes       *route.Table
	CGIExecutors map[string]string
	Realms       []*Realm
	TLS          *TLS

	MaxBodyBytes   int64
	MaxConnections int
	ShutdownGrace  time.Duration
}
