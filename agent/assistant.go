// Package agent implements the question-to-SPARQL loop: retrieve context,
// prompt the model, validate the generated queries against endpoint schemas
// and feed failures back for bounded regeneration.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/sparqlassist/corpus"
	"github.com/c360studio/sparqlassist/endpoints"
	"github.com/c360studio/sparqlassist/llm"
	"github.com/c360studio/sparqlassist/schema"
	"github.com/c360studio/sparqlassist/validation"
)

// Completer is the slice of the LLM client the assistant needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// SchemaSource supplies schema dictionaries and prefix maps per endpoint.
// schema.Cache implements it.
type SchemaSource interface {
	Snapshot(ctx context.Context, endpoints []string) schema.EndpointsDict
	Prefixes(ctx context.Context, endpoint string) (schema.PrefixMap, error)
}

// Config bounds the generation loop.
type Config struct {
	// MaxAttempts is how many times the model may regenerate after a
	// validation failure. 1 means no retry.
	MaxAttempts int `yaml:"max_attempts"`

	// RetrieveK is how many corpus documents enter the prompt.
	RetrieveK int `yaml:"retrieve_k"`

	// Temperature is passed through to the model. nil uses the provider
	// default.
	Temperature *float64 `yaml:"temperature"`
}

// DefaultConfig returns the default loop bounds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		RetrieveK:   5,
	}
}

// Answer is the outcome of one Ask.
type Answer struct {
	// Message is the final model response, with repaired queries
	// substituted where prefix repair fired.
	Message string

	// Validations holds the per-query validation outputs of the final
	// attempt.
	Validations []validation.QueryValidationOutput

	// Attempts is how many model calls were made.
	Attempts int
}

// Valid reports whether every validated query passed on the final attempt.
func (a *Answer) Valid() bool {
	for _, v := range a.Validations {
		if !v.Valid() {
			return false
		}
	}
	return true
}

// Assistant answers natural-language questions with validated SPARQL.
type Assistant struct {
	completer Completer
	index     *corpus.Index
	catalog   *endpoints.Catalog
	schemas   SchemaSource
	config    Config
	logger    *slog.Logger
}

// NewAssistant wires the assistant together.
func NewAssistant(completer Completer, index *corpus.Index, catalog *endpoints.Catalog,
	schemas SchemaSource, config Config, logger *slog.Logger) *Assistant {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.RetrieveK <= 0 {
		config.RetrieveK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		completer: completer,
		index:     index,
		catalog:   catalog,
		schemas:   schemas,
		config:    config,
		logger:    logger,
	}
}

// Ask runs the full loop for one question. A model error aborts; validation
// failures do not — after MaxAttempts the last answer is returned with its
// issues attached for the caller to render.
func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	hits := a.index.Search(question, a.config.RetrieveK)
	system, user := buildMessages(question, a.catalog.All(), hits)

	urls := a.catalog.URLs()
	dicts := a.schemas.Snapshot(ctx, urls)
	prefixes := mergedPrefixes(ctx, a.schemas, urls, a.logger)

	messages := []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	var answer *Answer
	for attempt := 1; attempt <= a.config.MaxAttempts; attempt++ {
		resp, err := a.completer.Complete(ctx, llm.Request{
			Messages:    messages,
			Temperature: a.config.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("model call failed on attempt %d: %w", attempt, err)
		}

		results := validation.ValidateMessage(resp.Content, prefixes, dicts)
		answer = &Answer{
			Message:     applyRepairs(resp.Content, results),
			Validations: results,
			Attempts:    attempt,
		}

		if answer.Valid() {
			a.logger.Debug("Answer validated",
				"attempt", attempt,
				"queries", len(results))
			return answer, nil
		}

		feedback := FormatFeedback(results)
		a.logger.Info("Validation failed, requesting regeneration",
			"attempt", attempt,
			"max_attempts", a.config.MaxAttempts,
			"queries", len(results))

		messages = append(messages,
			llm.Message{Role: "assistant", Content: resp.Content},
			llm.Message{Role: "user", Content: feedback},
		)
	}

	a.logger.Warn("Attempts exhausted, returning last answer with issues",
		"attempts", answer.Attempts)
	return answer, nil
}

// mergedPrefixes unions the prefix maps of all known endpoints. On a label
// collision the first endpoint wins; catalogs in practice agree on the
// shared bioinformatics prefixes.
func mergedPrefixes(ctx context.Context, source SchemaSource, urls []string, logger *slog.Logger) schema.PrefixMap {
	merged := make(schema.PrefixMap)
	for _, url := range urls {
		prefixes, err := source.Prefixes(ctx, url)
		if err != nil {
			logger.Warn("Prefixes unavailable for endpoint",
				"endpoint", url,
				"error", err)
			continue
		}
		for label, namespace := range prefixes {
			if _, ok := merged[label]; !ok {
				merged[label] = namespace
			}
		}
	}
	return merged
}

// applyRepairs substitutes prefix-repaired queries back into the message so
// the rendered answer carries runnable SPARQL.
func applyRepairs(message string, results []validation.QueryValidationOutput) string {
	for _, r := range results {
		if r.FixedQuery != "" && r.FixedQuery != r.OriginalQuery {
			message = strings.Replace(message, r.OriginalQuery, r.FixedQuery, 1)
		}
	}
	return message
}
