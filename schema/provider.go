package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResultSize limits SPARQL result bodies to prevent memory exhaustion.
const maxResultSize = 50 * 1024 * 1024 // 50MB

// voidSchemaQuery reads the class/predicate partitions of a VoID description.
// Endpoints following the SIB/void-generator conventions expose one
// void:classPartition per class, with void:propertyPartition entries whose
// object ranges appear either as nested class partitions or as datatype
// partitions.
const voidSchemaQuery = `PREFIX void: <http://rdfs.org/ns/void#>
PREFIX void-ext: <http://ldf.fi/void-ext#>
SELECT DISTINCT ?subjectClass ?prop ?objectClass ?objectDatatype
WHERE {
  ?cp void:class ?subjectClass ;
      void:propertyPartition ?pp .
  ?pp void:property ?prop .
  OPTIONAL {
    ?pp void:classPartition [ void:class ?objectClass ] .
  }
  OPTIONAL {
    ?pp void-ext:datatypePartition [ void-ext:datatype ?objectDatatype ] .
  }
}`

// shaclPrefixQuery enumerates the prefix declarations an endpoint publishes
// as SHACL sh:PrefixDeclaration resources.
const shaclPrefixQuery = `PREFIX sh: <http://www.w3.org/ns/shacl#>
SELECT DISTINCT ?prefix ?namespace
WHERE {
  [] sh:namespace ?namespace ;
     sh:prefix ?prefix .
}`

// Provider fetches schema dictionaries and prefix maps from SPARQL endpoints
// over the standard protocol. Results are raw; callers cache them through a
// Cache.
type Provider struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a schema provider.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // VoID queries over large endpoints are slow
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// sparqlResults is the application/sparql-results+json envelope.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]sparqlTerm `json:"bindings"`
	} `json:"results"`
}

type sparqlTerm struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FetchSchema queries the endpoint's VoID description and folds it into a
// Dict. An endpoint without VoID partitions yields an empty Dict, not an
// error; validation downstream treats an empty schema as unknown and stays
// silent.
func (p *Provider) FetchSchema(ctx context.Context, endpoint string) (Dict, error) {
	results, err := p.query(ctx, endpoint, voidSchemaQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch VoID description from %s: %w", endpoint, err)
	}

	dict := make(Dict)
	for _, row := range results.Results.Bindings {
		subjectClass := row["subjectClass"].Value
		prop := row["prop"].Value
		if subjectClass == "" || prop == "" {
			continue
		}
		object := row["objectClass"].Value
		if object == "" {
			object = row["objectDatatype"].Value
		}
		dict.Add(subjectClass, prop, object)
	}

	p.logger.Debug("Fetched endpoint schema",
		"endpoint", endpoint,
		"classes", len(dict),
		"rows", len(results.Results.Bindings))

	return dict, nil
}

// FetchPrefixes queries the endpoint's SHACL prefix declarations.
func (p *Provider) FetchPrefixes(ctx context.Context, endpoint string) (PrefixMap, error) {
	results, err := p.query(ctx, endpoint, shaclPrefixQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch prefix declarations from %s: %w", endpoint, err)
	}

	prefixes := make(PrefixMap)
	for _, row := range results.Results.Bindings {
		label := row["prefix"].Value
		namespace := row["namespace"].Value
		if label == "" || namespace == "" {
			continue
		}
		prefixes[label] = namespace
	}

	p.logger.Debug("Fetched endpoint prefixes",
		"endpoint", endpoint,
		"prefixes", len(prefixes))

	return prefixes, nil
}

// query executes a SPARQL SELECT over the protocol's POST binding.
func (p *Provider) query(ctx context.Context, endpoint, sparqlQuery string) (*sparqlResults, error) {
	form := url.Values{"query": {sparqlQuery}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResultSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, snippet)
	}

	var results sparqlResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse SPARQL results: %w", err)
	}
	return &results, nil
}
