// Package endpoints manages the catalog of SPARQL endpoints the assistant
// knows about, loaded from a YAML file and optionally hot-reloaded on change.
package endpoints

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Endpoint describes one SPARQL endpoint the assistant can target.
type Endpoint struct {
	// Name is the short human label ("UniProt", "Rhea").
	Name string `yaml:"name"`

	// URL is the SPARQL protocol endpoint, used as the schema and
	// validation key.
	URL string `yaml:"url"`

	// Description tells the model what data lives here.
	Description string `yaml:"description"`

	// ExampleQueriesURL optionally points at a page of curated example
	// queries to ingest into the corpus.
	ExampleQueriesURL string `yaml:"example_queries_url,omitempty"`

	// DocsURLs optionally lists documentation pages to ingest into the
	// corpus.
	DocsURLs []string `yaml:"docs_urls,omitempty"`
}

// Catalog is a read-through snapshot of the configured endpoints. Lookups
// are safe for concurrent use; Replace swaps the whole snapshot atomically.
type Catalog struct {
	mu    sync.RWMutex
	list  []Endpoint
	byURL map[string]Endpoint
}

// catalogFile is the YAML document shape.
type catalogFile struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{}
	if err := c.Replace(file.Endpoints); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace swaps the catalog contents for a new endpoint list.
func (c *Catalog) Replace(list []Endpoint) error {
	byURL := make(map[string]Endpoint, len(list))
	for _, ep := range list {
		if ep.URL == "" {
			return fmt.Errorf("endpoint %q has no URL", ep.Name)
		}
		if _, dup := byURL[ep.URL]; dup {
			return fmt.Errorf("duplicate endpoint URL %s", ep.URL)
		}
		byURL[ep.URL] = ep
	}

	c.mu.Lock()
	c.list = append([]Endpoint(nil), list...)
	c.byURL = byURL
	c.mu.Unlock()
	return nil
}

// All returns the endpoints in catalog order.
func (c *Catalog) All() []Endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Endpoint(nil), c.list...)
}

// ByURL looks up an endpoint by its SPARQL URL.
func (c *Catalog) ByURL(url string) (Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ep, ok := c.byURL[url]
	return ep, ok
}

// URLs returns the endpoint URLs in sorted order.
func (c *Catalog) URLs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	urls := make([]string, 0, len(c.byURL))
	for url := range c.byURL {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Len returns the number of configured endpoints.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}
