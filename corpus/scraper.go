package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// maxPageSize limits fetched pages to prevent memory exhaustion.
const maxPageSize = 20 * 1024 * 1024 // 20MB

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Scraper fetches documentation pages and converts them to markdown corpus
// documents. Readability extraction strips navigation chrome first; pages it
// cannot handle fall back to whole-page conversion.
type Scraper struct {
	httpClient *http.Client
	converter  *md.Converter
	logger     *slog.Logger
}

// NewScraper creates a documentation scraper.
func NewScraper(logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Scraper{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		converter:  converter,
		logger:     logger,
	}
}

// SetHTTPClient replaces the HTTP client, mainly for tests.
func (s *Scraper) SetHTTPClient(c *http.Client) {
	s.httpClient = c
}

// Scrape fetches one page and converts it to a corpus document attributed
// to the given endpoint.
func (s *Scraper) Scrape(ctx context.Context, pageURL, endpoint string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}

	title, content := s.extract(page, pageURL)

	markdown, err := s.converter.ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", pageURL, err)
	}
	markdown = cleanMarkdown(markdown)

	if title == "" {
		title = firstHeading(markdown)
	}

	doc := &Document{
		ID:        generateID(pageURL, []byte(markdown)),
		Title:     title,
		Endpoint:  endpoint,
		SourceURL: pageURL,
		Body:      markdown,
	}

	s.logger.Debug("Scraped documentation page",
		"url", pageURL,
		"endpoint", endpoint,
		"title", title,
		"bytes", len(markdown))

	return doc, nil
}

// ScrapeAll fetches several pages, skipping the ones that fail.
func (s *Scraper) ScrapeAll(ctx context.Context, pageURLs []string, endpoint string) []*Document {
	docs := make([]*Document, 0, len(pageURLs))
	for _, pageURL := range pageURLs {
		doc, err := s.Scrape(ctx, pageURL, endpoint)
		if err != nil {
			s.logger.Warn("Skipping documentation page",
				"url", pageURL,
				"error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// extract pulls the readable article out of a page. The returned content is
// HTML ready for markdown conversion.
func (s *Scraper) extract(page []byte, pageURL string) (title, content string) {
	parsedURL, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(page), parsedURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		return article.Title, article.Content
	}

	s.logger.Debug("Readability extraction failed, using whole page",
		"url", pageURL,
		"error", err)
	return extractHTMLTitle(page), string(page)
}

// extractHTMLTitle extracts the <title> of a page.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			walk(c)
		}
	}
	walk(doc)
	return title
}

// cleanMarkdown trims converted markdown.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
