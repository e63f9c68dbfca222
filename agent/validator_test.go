package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageValidator(t *testing.T) {
	v := NewMessageValidator(testCatalog(t), testSchemaSource(), nil)

	results := v.ValidateMessage(context.Background(), invalidAnswer())
	require.Len(t, results, 1)
	assert.False(t, results[0].Valid())
	assert.NotEmpty(t, results[0].Errors)

	results = v.ValidateMessage(context.Background(), validAnswer())
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid())
}

func TestMessageValidatorSkipsUnannotatedBlocks(t *testing.T) {
	v := NewMessageValidator(testCatalog(t), testSchemaSource(), nil)

	msg := "```sparql\nSELECT ?s WHERE { ?s ?p ?o }\n```"
	assert.Empty(t, v.ValidateMessage(context.Background(), msg))
}
