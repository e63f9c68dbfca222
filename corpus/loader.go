package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Loader reads corpus documents from disk by glob pattern.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a corpus loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load expands the glob patterns (doublestar ** is supported) and parses
// every matching markdown file. Unreadable files are logged and skipped;
// only pattern errors abort the load.
func (l *Loader) Load(patterns []string) ([]*Document, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	sort.Strings(paths)

	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Failed to read corpus file",
				"path", path,
				"error", err)
			continue
		}

		doc, err := ParseMarkdown(path, content)
		if err != nil {
			l.logger.Warn("Failed to parse corpus file",
				"path", path,
				"error", err)
			continue
		}
		docs = append(docs, doc)
	}

	l.logger.Info("Corpus loaded",
		"patterns", len(patterns),
		"documents", len(docs))

	return docs, nil
}
