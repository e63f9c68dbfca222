package schema

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const voidResultsJSON = `{
	"head": {"vars": ["subjectClass", "prop", "objectClass", "objectDatatype"]},
	"results": {"bindings": [
		{
			"subjectClass": {"type": "uri", "value": "http://purl.uniprot.org/core/Protein"},
			"prop": {"type": "uri", "value": "http://purl.uniprot.org/core/organism"},
			"objectClass": {"type": "uri", "value": "http://purl.uniprot.org/core/Taxon"}
		},
		{
			"subjectClass": {"type": "uri", "value": "http://purl.uniprot.org/core/Protein"},
			"prop": {"type": "uri", "value": "http://purl.uniprot.org/core/mnemonic"},
			"objectDatatype": {"type": "uri", "value": "http://www.w3.org/2001/XMLSchema#string"}
		},
		{
			"subjectClass": {"type": "uri", "value": "http://purl.uniprot.org/core/Protein"},
			"prop": {"type": "uri", "value": "http://purl.uniprot.org/core/annotation"}
		}
	]}
}`

func TestProviderFetchSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))

		require.NoError(t, r.ParseForm())
		query := r.Form.Get("query")
		assert.Contains(t, query, "void:propertyPartition")

		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(voidResultsJSON))
	}))
	defer server.Close()

	p := NewProvider()
	dict, err := p.FetchSchema(context.Background(), server.URL)
	require.NoError(t, err)

	protein := "http://purl.uniprot.org/core/Protein"
	require.Contains(t, dict, protein)
	assert.Equal(t, []string{"http://purl.uniprot.org/core/Taxon"},
		dict[protein]["http://purl.uniprot.org/core/organism"])
	assert.Equal(t, []string{"http://www.w3.org/2001/XMLSchema#string"},
		dict[protein]["http://purl.uniprot.org/core/mnemonic"])

	// predicate declared without range information still registers
	objects, ok := dict[protein]["http://purl.uniprot.org/core/annotation"]
	assert.True(t, ok)
	assert.Empty(t, objects)
}

func TestProviderFetchSchemaEmptyVoID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{"head": {"vars": []}, "results": {"bindings": []}}`))
	}))
	defer server.Close()

	p := NewProvider()
	dict, err := p.FetchSchema(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, dict, "no VoID description yields an empty, not nil-error, schema")
}

func TestProviderFetchSchemaEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "malformed query", http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewProvider()
	_, err := p.FetchSchema(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestProviderFetchPrefixes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Form.Get("query"), "sh:prefix")

		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{
			"results": {"bindings": [
				{"prefix": {"type": "literal", "value": "up"},
				 "namespace": {"type": "literal", "value": "http://purl.uniprot.org/core/"}},
				{"prefix": {"type": "literal", "value": "taxon"},
				 "namespace": {"type": "literal", "value": "http://purl.uniprot.org/taxonomy/"}}
			]}
		}`))
	}))
	defer server.Close()

	p := NewProvider()
	prefixes, err := p.FetchPrefixes(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, PrefixMap{
		"up":    "http://purl.uniprot.org/core/",
		"taxon": "http://purl.uniprot.org/taxonomy/",
	}, prefixes)
}

func TestProviderFetchSchemaMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	p := NewProvider()
	_, err := p.FetchSchema(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse SPARQL results"))
}
