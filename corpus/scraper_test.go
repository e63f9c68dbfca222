package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docPage = `<!DOCTYPE html>
<html>
<head><title>UniProt SPARQL examples</title></head>
<body>
<nav>Home | About | Contact</nav>
<article>
<h1>Example queries</h1>
<p>Select all reviewed proteins together with their organism. The query joins
the protein class to the taxonomy hierarchy through the organism property and
filters on the reviewed flag, which marks Swiss-Prot curated entries.</p>
<pre><code>SELECT ?protein WHERE { ?protein a up:Protein }</code></pre>
<p>More prose describing pagination, result limits and how to restrict the
selection to a single proteome when the full result set is too large.</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

func TestScraperScrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(docPage))
	}))
	defer server.Close()

	s := NewScraper(nil)
	doc, err := s.Scrape(context.Background(), server.URL, "https://sparql.uniprot.org/sparql")
	require.NoError(t, err)

	assert.Equal(t, "https://sparql.uniprot.org/sparql", doc.Endpoint)
	assert.Equal(t, server.URL, doc.SourceURL)
	assert.NotEmpty(t, doc.Title)
	assert.Contains(t, doc.Body, "reviewed proteins")
	assert.Contains(t, doc.Body, "SELECT ?protein WHERE { ?protein a up:Protein }")
}

func TestScraperScrapeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewScraper(nil)
	_, err := s.Scrape(context.Background(), server.URL, "https://sparql.uniprot.org/sparql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestScraperScrapeAllSkipsFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(docPage))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	s := NewScraper(nil)
	docs := s.ScrapeAll(context.Background(), []string{good.URL, bad.URL}, "https://sparql.uniprot.org/sparql")
	assert.Len(t, docs, 1)
}

func TestExtractHTMLTitle(t *testing.T) {
	title := extractHTMLTitle([]byte(`<html><head><title> Rhea docs </title></head><body></body></html>`))
	assert.Equal(t, "Rhea docs", title)

	assert.Empty(t, extractHTMLTitle([]byte(`<html><body>untitled</body></html>`)))
}
