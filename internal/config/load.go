package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/lunarcoffee/lucent/internal/route"
)

// Load reads, parses, and validates the YAML configuration file at path,
// compiling every route matcher and replacer up front so a malformed rule
// fails server startup rather than a later request.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg, err := build(&raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func build(raw *rawConfig) (*Config, error) {
	if raw.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if raw.FileRoot == "" {
		return nil, fmt.Errorf("file_root is required")
	}
	if raw.TemplateRoot == "" {
		return nil, fmt.Errorf("template_root is required")
	}

	fileRoot, err := filepath.Abs(raw.FileRoot)
	if err != nil {
		return nil, fmt.Errorf("file_root: %w", err)
	}
	if fi, err := os.Stat(fileRoot); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("file_root %q does not exist or is not a directory", fileRoot)
	}

	templateRoot, err := filepath.Abs(raw.TemplateRoot)
	if err != nil {
		return nil, fmt.Errorf("template_root: %w", err)
	}
	if fi, err := os.Stat(templateRoot); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("template_root %q does not exist or is not a directory", templateRoot)
	}

	routes, err := buildRoutingTable(raw.RoutingTable)
	if err != nil {
		return nil, err
	}

	executors, err := buildCGIExecutors(raw.CGIExecutors)
	if err != nil {
		return nil, err
	}

	realms, err := buildRealms(raw.BasicAuth)
	if err != nil {
		return nil, err
	}

	tls, err := buildTLS(raw.TLS)
	if err != nil {
		return nil, err
	}

	maxBody := raw.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	maxConns := raw.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConnections
	}
	shutdownGrace := time.Duration(raw.ShutdownGrace) * time.Second
	if shutdownGrace <= 0 {
		shutdownGrace = defaultShutdownGrace
	}

	return &Config{
		Address:        raw.Address,
		FileRoot:       fileRoot,
		TemplateRoot:   templateRoot,
		DirListing:     DirListingPolicy(raw.DirListing),
		Routes:         routes,
		CGIExecutors:   executors,
		Realms:         realms,
		TLS:            tls,
		MaxBodyBytes:   maxBody,
		MaxConnections: maxConns,
		ShutdownGrace:  shutdownGrace,
	}, nil
}

const (
	defaultMaxBodyBytes   = 32 << 20
	defaultMaxConnections = 1024
	defaultShutdownGrace  = 10 * time.Second
)

func buildRoutingTable(items yaml.MapSlice) (*route.Table, error) {
	table := &route.Table{}
	for _, item := range items {
		matcherSpec, replacerSpec, ok := mapSliceString(item)
		if !ok {
			return nil, fmt.Errorf("routing_table: entry %v has a non-string key or value", item.Key)
		}
		rule, err := route.CompileRule(matcherSpec, replacerSpec)
		if err != nil {
			return nil, fmt.Errorf("routing_table: %w", err)
		}
		table.Rules = append(table.Rules, rule)
	}
	return table, nil
}

func buildCGIExecutors(items yaml.MapSlice) (map[string]string, error) {
	executors := make(map[string]string, len(items))
	for _, item := range items {
		ext, path, ok := mapSliceString(item)
		if !ok {
			return nil, fmt.Errorf("cgi_executors: entry %v has a non-string key or value", item.Key)
		}
		executors[ext] = path
	}
	return executors, nil
}

func buildRealms(items yaml.MapSlice) ([]*Realm, error) {
	realms := make([]*Realm, 0, len(items))
	for _, item := range items {
		name, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("basic_auth: realm name %v is not a string", item.Key)
		}
		raw, err := decodeRawRealm(item.Value)
		if err != nil {
			return nil, fmt.Errorf("basic_auth: realm %q: %w", name, err)
		}
		if len(raw.Credentials) == 0 {
			return nil, fmt.Errorf("basic_auth: realm %q has no credentials", name)
		}
		if len(raw.Routes) == 0 {
			return nil, fmt.Errorf("basic_auth: realm %q has no routes", name)
		}

		creds, err := parseCredentials(raw.Credentials)
		if err != nil {
			return nil, fmt.Errorf("basic_auth: realm %q: %w", name, err)
		}

		matchers := make([]*route.Matcher, 0, len(raw.Routes))
		for _, spec := range raw.Routes {
			m, err := route.CompileMatcher(spec)
			if err != nil {
				return nil, fmt.Errorf("basic_auth: realm %q: %w", name, err)
			}
			matchers = append(matchers, m)
		}

		realms = append(realms, &Realm{
			Name:        name,
			Credentials: creds,
			Routes:      &route.MatcherList{Matchers: matchers},
		})
	}
	return realms, nil
}

func buildTLS(raw *rawTLS) (*TLS, error) {
	if raw == nil {
		return nil, nil
	}
	if raw.CertPath == "" || raw.KeyPath == "" {
		return nil, fmt.Errorf("tls: both cert_path and key_path are required when tls is present")
	}
	certPath, err := filepath.Abs(raw.CertPath)
	if err != nil {
		return nil, fmt.Errorf("tls.cert_path: %w", err)
	}
	keyPath, err := filepath.Abs(raw.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("tls.key_path: %w", err)
	}
	if _, err := os.Stat(certPath); err != nil {
		return nil, fmt.Errorf("tls.cert_path %q: %w", certPath, err)
	}
	if _, err := os.Stat(keyPath); err != nil {
		return nil, fmt.Errorf("tls.key_path %q: %w", keyPath, err)
	}
	return &TLS{CertPath: certPath, KeyPath: keyPath}, nil
}
