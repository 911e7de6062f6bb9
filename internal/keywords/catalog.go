// Package keywords holds the read-only catalog of seed topics the form offers
// as autocomplete suggestions and quick-pick buttons.
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk layout of a keyword list.
type catalogFile struct {
	Keywords []string `yaml:"keywords"`
	Featured []string `yaml:"featured"`
}

// Catalog is an immutable ordered keyword list. It is built once at startup
// and shared; there is no mutation API.
type Catalog struct {
	keywords []string
	lowered  []string
	featured []string
}

// New builds a catalog from keywords (in suggestion order) and the featured
// subset. Entries are trimmed; blank entries and duplicates are dropped.
func New(keywords, featured []string) (*Catalog, error) {
	c := &Catalog{}
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		c.keywords = append(c.keywords, kw)
		c.lowered = append(c.lowered, strings.ToLower(kw))
	}
	if len(c.keywords) == 0 {
		return nil, fmt.Errorf("keyword catalog is empty")
	}
	for _, kw := range featured {
		if kw = strings.TrimSpace(kw); kw != "" {
			c.featured = append(c.featured, kw)
		}
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded keyword catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file with `keywords` and `featured` lists.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}
	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse keyword catalog: %w", err)
	}
	return New(f.Keywords, f.Featured)
}

// Len returns the number of keywords.
func (c *Catalog) Len() int { return len(c.keywords) }

// All returns a copy of every keyword in catalog order.
func (c *Catalog) All() []string {
	return append([]string(nil), c.keywords...)
}

// Featured returns a copy of the quick-pick keywords.
func (c *Catalog) Featured() []string {
	return append([]string(nil), c.featured...)
}

// Match returns up to limit keywords whose lowercase form starts with the
// lowercase prefix, in catalog order. An empty prefix matches nothing.
func (c *Catalog) Match(prefix string, limit int) []string {
	if prefix == "" || limit <= 0 {
		return nil
	}
	needle := strings.ToLower(prefix)
	var out []string
	for i, kw := range c.lowered {
		if strings.HasPrefix(kw, needle) {
			out = append(out, c.keywords[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
