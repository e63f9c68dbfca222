// Package corpus holds the retrieval corpus: endpoint documentation and
// curated example queries, loaded from disk or scraped from the web, and a
// lexical index for question-time retrieval.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one retrievable unit: a documentation page or a worked
// example query with its explanation.
type Document struct {
	// ID is a stable identifier derived from the source name and content.
	ID string

	// Title is the human-readable document title.
	Title string

	// Endpoint is the SPARQL endpoint this document describes, when known.
	Endpoint string

	// SourceURL is where the document was scraped from, when applicable.
	SourceURL string

	// Path is the on-disk location for file-loaded documents.
	Path string

	// Body is the markdown content without frontmatter.
	Body string
}

// frontmatter is the recognized YAML header of a corpus markdown file.
type frontmatter struct {
	Title     string `yaml:"title"`
	Endpoint  string `yaml:"endpoint"`
	SourceURL string `yaml:"source_url"`
}

// ParseMarkdown builds a Document from a markdown file, extracting the
// optional YAML frontmatter header.
func ParseMarkdown(path string, content []byte) (*Document, error) {
	doc := &Document{
		ID:   generateID(path, content),
		Path: path,
		Body: string(content),
	}

	str := string(content)
	if strings.HasPrefix(str, "---\n") || strings.HasPrefix(str, "---\r\n") {
		header, body, err := splitFrontmatter(str)
		if err == nil {
			// failed frontmatter keeps the whole content as body
			doc.Title = header.Title
			doc.Endpoint = header.Endpoint
			doc.SourceURL = header.SourceURL
			doc.Body = body
		}
	}

	if doc.Title == "" {
		doc.Title = firstHeading(doc.Body)
	}
	if doc.Title == "" {
		base := filepath.Base(path)
		doc.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return doc, nil
}

// splitFrontmatter parses the YAML header and returns it with the body.
func splitFrontmatter(content string) (frontmatter, string, error) {
	const delimiter = "---"

	start := len(delimiter)
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	closeIdx := strings.Index(content[start:], "\n"+delimiter)
	if closeIdx == -1 {
		closeIdx = strings.Index(content[start:], "\r\n"+delimiter)
	}
	if closeIdx == -1 {
		return frontmatter{}, content, fmt.Errorf("no closing frontmatter delimiter")
	}

	yamlContent := content[start : start+closeIdx]

	bodyStart := start + closeIdx + 1 + len(delimiter)
	for bodyStart < len(content) && (content[bodyStart] == '\n' || content[bodyStart] == '\r') {
		bodyStart++
	}
	body := ""
	if bodyStart < len(content) {
		body = content[bodyStart:]
	}

	var header frontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &header); err != nil {
		return frontmatter{}, content, fmt.Errorf("parse YAML frontmatter: %w", err)
	}
	return header, body, nil
}

// firstHeading returns the first H1 heading of a markdown body.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// generateID creates a stable document ID from the source name and a
// content hash.
func generateID(name string, content []byte) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = idSanitizer.ReplaceAllString(strings.ToLower(base), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "doc"
	}

	sum := sha256.Sum256(content)
	return base + "-" + hex.EncodeToString(sum[:4])
}
