package commands

import (
	"context"
	"log/slog"

	"github.com/c360studio/sparqlassist/agent"
	"github.com/c360studio/sparqlassist/config"
	"github.com/c360studio/sparqlassist/corpus"
	"github.com/c360studio/sparqlassist/endpoints"
	"github.com/c360studio/sparqlassist/llm"
	"github.com/c360studio/sparqlassist/schema"
)

// stack holds the wired components most commands need.
type stack struct {
	config    *config.Config
	catalog   *endpoints.Catalog
	cache     *schema.Cache
	index     *corpus.Index
	assistant *agent.Assistant
	validator *agent.MessageValidator
}

// buildStack wires the assistant from configuration. The corpus index is
// only populated when withCorpus is set; schema-only commands skip it.
// cacheOpts extend the schema cache, e.g. with a JetStream bucket in serve
// mode.
func buildStack(ctx context.Context, cfg *config.Config, withCorpus bool,
	cacheOpts ...schema.CacheOption) (*stack, error) {
	logger := slog.Default()

	catalog, err := endpoints.Load(cfg.Endpoints.CatalogPath)
	if err != nil {
		return nil, err
	}

	opts := append([]schema.CacheOption{schema.WithMaxAge(cfg.Schema.MaxAge)}, cacheOpts...)
	cache := schema.NewCache(schema.NewProvider(), opts...)

	index := corpus.NewIndex()
	if withCorpus {
		docs, err := corpus.NewLoader(logger).Load(cfg.Corpus.Patterns)
		if err != nil {
			return nil, err
		}
		index.Add(docs...)

		if cfg.Corpus.ScrapeDocs {
			scraper := corpus.NewScraper(logger)
			for _, ep := range catalog.All() {
				urls := ep.DocsURLs
				if ep.ExampleQueriesURL != "" {
					urls = append(urls, ep.ExampleQueriesURL)
				}
				index.Add(scraper.ScrapeAll(ctx, urls, ep.URL)...)
			}
		}
	}

	client := llm.NewClient(cfg.Model, llm.WithLogger(logger))
	assistant := agent.NewAssistant(client, index, catalog, cache, cfg.Agent, logger)
	validator := agent.NewMessageValidator(catalog, cache, logger)

	return &stack{
		config:    cfg,
		catalog:   catalog,
		cache:     cache,
		index:     index,
		assistant: assistant,
		validator: validator,
	}, nil
}
