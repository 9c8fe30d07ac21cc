package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// rawConfig mirrors the YAML configuration file's document shape.
// yaml.MapSlice is used wherever declaration order is
// load-bearing: the rewrite table must try rules in file order and realms
// are tried in declaration order by the auth gate. CGI extensions are
// order-independent; the loaded Config holds them in a map keyed by
// extension.
// Go's plain map[string]T loses that order on decode.
type rawConfig struct {
	Address      string         `yaml:"address"`
	FileRoot     string         `yaml:"file_root"`
	TemplateRoot string         `yaml:"template_root"`
	DirListing   rawDirListing  `yaml:"dir_listing"`
	RoutingTable yaml.MapSlice  `yaml:"routing_table"`
	CGIExecutors yaml.MapSlice  `yaml:"cgi_executors"`
	BasicAuth    yaml.MapSlice  `yaml:"basic_auth"`
	TLS          *rawTLS        `yaml:"tls"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	MaxConns      int           `yaml:"max_connections"`
	ShutdownGrace int           `yaml:"shutdown_grace_seconds"`
}

type rawDirListing struct {
	Enabled      bool `yaml:"enabled"`
	AllViewable  bool `yaml:"all_viewable"`
	ShowSymlinks bool `yaml:"show_symlinks"`
	ShowHidden   bool `yaml:"show_hidden"`
}

type rawTLS struct {
	CertPath string `yaml:"cert_path"`
	KeyPath  string `yaml:"key_path"`
}

// rawRealm is the shape of each basic_auth value. It is decoded from the
// map[interface{}]interface{} that yaml.v2 produces for a nested mapping
// (MapSlice's order-preservation only applies at the field it is declared
// on, not recursively) by re-marshalling that node and unmarshalling it
// into this concrete struct, sidestepping any doubt about the generic
// decode's shape for the two fixed keys a realm has.
type rawRealm struct {
	Credentials []string `yaml:"credentials"`
	Routes      []string `yaml:"routes"`
}

func decodeRawRealm(node interface{}) (rawRealm, error) {
	var r rawRealm
	b, err := yaml.Marshal(node)
	if err != nil {
		return r, fmt.Errorf("config: re-marshal realm node: %w", err)
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("config: decode realm: %w", err)
	}
	return r, nil
}

func mapSliceString(item yaml.MapItem) (key, value string, ok bool) {
	k, kok := item.Key.(string)
	v, vok := item.Value.(string)
	return k, v, kok && vok
}
