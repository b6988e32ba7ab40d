// Package config loads the YAML configuration record described in spec.md §6:
// cluster/node topology, custom field aliases, and seed-file locations. Loading
// is eager: env placeholders are substituted immediately after decode, in the
// fields Load lists.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v2"

	schemadef "github.com/schemadef/schemadef"
	"github.com/schemadef/schemadef/dslparser"
)

// NodeType distinguishes a write node from a read replica within a cluster.
type NodeType string

const (
	NodeWrite NodeType = "write"
	NodeRead  NodeType = "read"
)

// Node is one connection identity within a cluster, per spec.md §6
// "Configuration record".
type Node struct {
	Name       string   `yaml:"name"`
	Host       []string `yaml:"host"`
	Port       int      `yaml:"port"`
	User       string   `yaml:"user"`
	Pass       string   `yaml:"pass"`
	Type       NodeType `yaml:"type"`
	Pref       string   `yaml:"pref"`
	Path       []string `yaml:"path"`
	TenantKeys []string `yaml:"tenantKeys"`
	PoolMax    int      `yaml:"poolMax"`
}

// rawNode mirrors Node but accepts host as either a scalar or a sequence, and a
// single path string or a sequence, matching the teacher's YAML leniency for
// config shapes that commonly appear as either a string or a list.
type rawNode struct {
	Name       string      `yaml:"name"`
	Host       interface{} `yaml:"host"`
	Port       int         `yaml:"port"`
	User       string      `yaml:"user"`
	Pass       string      `yaml:"pass"`
	Type       NodeType    `yaml:"type"`
	Pref       string      `yaml:"pref"`
	Path       interface{} `yaml:"path"`
	TenantKeys []string    `yaml:"tenantKeys"`
	PoolMax    int         `yaml:"poolMax"`
}

func (n *Node) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw rawNode
	if err := unmarshal(&raw); err != nil {
		return err
	}
	n.Name = raw.Name
	n.Port = raw.Port
	n.User = raw.User
	n.Pass = raw.Pass
	n.Type = raw.Type
	n.Pref = raw.Pref
	n.TenantKeys = raw.TenantKeys
	n.PoolMax = raw.PoolMax
	n.Host = toStringSlice(raw.Host)
	n.Path = toStringSlice(raw.Path)
	return nil
}

func toStringSlice(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprintf("%v", e))
		}
		return out
	default:
		return nil
	}
}

// Cluster is an ordered list of nodes (spec.md §6: "mapping from cluster-id to
// either a single node or an ordered list of nodes").
type Cluster []Node

func (c *Cluster) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var list []Node
	if err := unmarshal(&list); err == nil {
		*c = list
		return nil
	}
	var single Node
	if err := unmarshal(&single); err != nil {
		return err
	}
	*c = Cluster{single}
	return nil
}

// Config is the decoded, placeholder-substituted configuration record, per
// spec.md §6.
type Config struct {
	Clusters     map[string]Cluster
	CustomFields map[string]dslparser.Alias
	SeedPath     string
	SeedSuffix   string
	DisplayMode  string
}

// rawAlias mirrors dslparser.Alias with YAML tags, since Alias's fields use
// Go-idiomatic names (DefaultRaw, HasDefault) that don't match the DSL's
// on-disk vocabulary (type/key/default/extra).
type rawAlias struct {
	Type    string      `yaml:"type"`
	Key     string      `yaml:"key"`
	Default interface{} `yaml:"default"`
	Extra   string      `yaml:"extra"`
}

// customFieldsYAML is an intermediate decode target so Config's CustomFields
// field can hold dslparser.Alias directly without dslparser depending on YAML.
type customFieldsYAML map[string]rawAlias

func decodeCustomFields(raw customFieldsYAML) map[string]dslparser.Alias {
	out := make(map[string]dslparser.Alias, len(raw))
	for name, r := range raw {
		a := dslparser.Alias{Type: r.Type, Key: r.Key, Extra: r.Extra}
		if r.Default != nil {
			a.HasDefault = true
			a.DefaultRaw = fmt.Sprintf("%v", r.Default)
		}
		out[name] = a
	}
	return out
}

type configYAML struct {
	Clusters     map[string]Cluster `yaml:"clusters"`
	CustomFields customFieldsYAML   `yaml:"customFields"`
	SeedPath     string              `yaml:"seedPath"`
	SeedSuffix   string              `yaml:"seedSuffix"`
	DisplayMode  string              `yaml:"displayMode"`
}

var placeholderPattern = regexp.MustCompile(`<ENV\.([A-Za-z_][A-Za-z0-9_]*)>`)

// substitutePlaceholders replaces every `<ENV.NAME>` token with the value of
// the environment variable NAME, per spec.md §6. A missing variable yields an
// empty string and is reported by calling warn with its name; surfacing the
// warning is up to the caller that supplied warn.
func substitutePlaceholders(s string, warn func(name string)) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		m := placeholderPattern.FindStringSubmatch(token)
		name := m[1]
		val, ok := os.LookupEnv(name)
		if !ok {
			warn(name)
			return ""
		}
		return val
	})
}

// Load reads and decodes the configuration file at path, substituting
// `<ENV.NAME>` placeholders in each node's name, user, pass and host entries
// and in seedPath and seedSuffix (spec.md §6). Other fields (pref, path, type,
// tenantKeys, displayMode, customFields) are kept as written. A missing
// environment variable is passed to warn (ignored when warn is nil) and
// resolved to "".
func Load(path string, warn func(missingVar string)) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &schemadef.Error{Kind: schemadef.ErrKindConfiguration, Context: path, Message: fmt.Sprintf("reading config: %v", err)}
	}

	var raw configYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &schemadef.Error{Kind: schemadef.ErrKindConfiguration, Context: path, Message: fmt.Sprintf("parsing config: %v", err)}
	}

	if warn == nil {
		warn = func(string) {}
	}

	for clusterID, nodes := range raw.Clusters {
		for i := range nodes {
			nodes[i].Name = substitutePlaceholders(nodes[i].Name, warn)
			nodes[i].User = substitutePlaceholders(nodes[i].User, warn)
			nodes[i].Pass = substitutePlaceholders(nodes[i].Pass, warn)
			for j, h := range nodes[i].Host {
				nodes[i].Host[j] = substitutePlaceholders(h, warn)
			}
		}
		raw.Clusters[clusterID] = nodes
	}
	raw.SeedPath = substitutePlaceholders(raw.SeedPath, warn)
	raw.SeedSuffix = substitutePlaceholders(raw.SeedSuffix, warn)

	return &Config{
		Clusters:     raw.Clusters,
		CustomFields: decodeCustomFields(raw.CustomFields),
		SeedPath:     raw.SeedPath,
		SeedSuffix:   raw.SeedSuffix,
		DisplayMode:  raw.DisplayMode,
	}, nil
}
