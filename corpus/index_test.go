package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []*Document {
	return []*Document{
		{
			ID:    "uniprot-proteins",
			Title: "UniProt protein queries",
			Body: "Examples for listing proteins by organism, reviewed status " +
				"and enzyme classification in UniProt.",
		},
		{
			ID:    "rhea-reactions",
			Title: "Rhea reaction queries",
			Body: "Examples for biochemical reactions, their participants and " +
				"equation directions in Rhea.",
		},
		{
			ID:    "swisslipids-overview",
			Title: "SwissLipids overview",
			Body:  "Lipid structures, categories and their links to enzymes and proteins.",
		},
	}
}

func TestIndexSearchRanksRelevantFirst(t *testing.T) {
	ix := NewIndex()
	ix.Add(testDocs()...)

	hits := ix.Search("list proteins by organism", 3)
	require.NotEmpty(t, hits)
	assert.Equal(t, "uniprot-proteins", hits[0].Document.ID)
}

func TestIndexSearchNoOverlapReturnsNothing(t *testing.T) {
	ix := NewIndex()
	ix.Add(testDocs()...)

	assert.Empty(t, ix.Search("quantum chromodynamics", 3))
}

func TestIndexSearchRespectsK(t *testing.T) {
	ix := NewIndex()
	ix.Add(testDocs()...)

	hits := ix.Search("queries proteins reactions enzymes", 2)
	assert.Len(t, hits, 2)
}

func TestIndexSearchTitleMatchOutranksBodyMatch(t *testing.T) {
	ix := NewIndex()
	ix.Add(
		&Document{ID: "title-match", Title: "Glycosylation sites", Body: "Short page."},
		&Document{ID: "body-match", Title: "Miscellaneous", Body: "One mention of glycosylation among much other prose about many topics."},
	)

	hits := ix.Search("glycosylation", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "title-match", hits[0].Document.ID)
}

func TestIndexSearchDeterministicTieBreak(t *testing.T) {
	ix := NewIndex()
	ix.Add(
		&Document{ID: "b-doc", Title: "Taxonomy", Body: "taxon lineage"},
		&Document{ID: "a-doc", Title: "Taxonomy", Body: "taxon lineage"},
	)

	first := ix.Search("taxon lineage", 2)
	second := ix.Search("taxon lineage", 2)
	require.Len(t, first, 2)
	assert.Equal(t, first[0].Document.ID, second[0].Document.ID)
	assert.Equal(t, "a-doc", first[0].Document.ID)
}

func TestIndexEmpty(t *testing.T) {
	ix := NewIndex()
	assert.Nil(t, ix.Search("anything", 5))
	assert.Equal(t, 0, ix.Len())
}

func TestTokenize(t *testing.T) {
	terms := tokenize("Which proteins are linked to Rhea reaction 12345?")
	assert.Equal(t, []string{"proteins", "linked", "rhea", "reaction", "12345"}, terms)
}
