package agent

import (
	"context"
	"log/slog"

	"github.com/c360studio/sparqlassist/endpoints"
	"github.com/c360studio/sparqlassist/validation"
)

// MessageValidator validates the SPARQL blocks of arbitrary markdown against
// the current catalog's schemas. It backs the standalone validate surface;
// the ask loop does the same work inline.
type MessageValidator struct {
	catalog *endpoints.Catalog
	schemas SchemaSource
	logger  *slog.Logger
}

// NewMessageValidator wires a validator over the catalog and schema source.
func NewMessageValidator(catalog *endpoints.Catalog, schemas SchemaSource, logger *slog.Logger) *MessageValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageValidator{catalog: catalog, schemas: schemas, logger: logger}
}

// ValidateMessage extracts and validates every annotated query block.
func (v *MessageValidator) ValidateMessage(ctx context.Context, message string) []validation.QueryValidationOutput {
	urls := v.catalog.URLs()
	dicts := v.schemas.Snapshot(ctx, urls)
	prefixes := mergedPrefixes(ctx, v.schemas, urls, v.logger)

	return validation.ValidateMessage(message, prefixes, dicts)
}
